package controllers_test

import (
	"net/http"
	"testing"

	models "qraccess/models/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	admin, adminToken := env.createAdmin(t, "admin@example.com")
	userBody, userToken := env.registerUser(t, "Plain User", "plain@example.com", "Aa1aaaaa")
	userID := userBody["user"].(map[string]interface{})["id"].(string)

	t.Run("admin lists active users", func(t *testing.T) {
		w := env.do(t, "GET", "/users", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(2), body["count"])
	})

	t.Run("any authenticated user can list users", func(t *testing.T) {
		w := env.do(t, "GET", "/users", userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(2), body["count"])
	})

	t.Run("listing users requires authentication", func(t *testing.T) {
		w := env.do(t, "GET", "/users", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user reads own detail but not others", func(t *testing.T) {
		own := env.do(t, "GET", "/users/"+userID, userToken, nil)
		require.Equal(t, http.StatusOK, own.Code)
		assert.Equal(t, "plain@example.com", decodeBody(t, own)["email"])

		other := env.do(t, "GET", "/users/"+admin.ID, userToken, nil)
		assert.Equal(t, http.StatusForbidden, other.Code)
	})

	t.Run("admin updates a role", func(t *testing.T) {
		w := env.do(t, "PATCH", "/users/"+userID+"/role", adminToken, map[string]string{"role": "admin"})
		require.Equal(t, http.StatusOK, w.Code)

		var updated models.User
		require.NoError(t, env.db.Where("id = ?", userID).First(&updated).Error)
		assert.Equal(t, models.RoleAdmin, updated.Role)

		// put it back for the remaining subtests
		w = env.do(t, "PATCH", "/users/"+userID+"/role", adminToken, map[string]string{"role": "user"})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		w := env.do(t, "PATCH", "/users/"+userID+"/role", adminToken, map[string]string{"role": "root"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admin cannot delete their own account", func(t *testing.T) {
		w := env.do(t, "DELETE", "/users/"+admin.ID, adminToken, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You cannot delete your own account", decodeBody(t, w)["detail"])
	})

	t.Run("non-admin cannot delete anyone, including themselves", func(t *testing.T) {
		w := env.do(t, "DELETE", "/users/"+userID, userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin deactivates a user and verification stops", func(t *testing.T) {
		body, _ := env.registerUser(t, "Soon Disabled", "disabled2@example.com", "Aa1aaaaa")
		target := body["user"].(map[string]interface{})
		targetID := target["id"].(string)
		qrID := target["qr_id"].(string)

		w := env.do(t, "PATCH", "/users/"+targetID+"/deactivate", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		verify := env.do(t, "GET", "/verify/"+qrID, "", nil)
		assert.Equal(t, http.StatusNotFound, verify.Code)
	})

	t.Run("admin deletes a user and the QR artifact disappears", func(t *testing.T) {
		body, _ := env.registerUser(t, "Doomed", "doomed@example.com", "Aa1aaaaa")
		target := body["user"].(map[string]interface{})
		targetID := target["id"].(string)
		qrID := target["qr_id"].(string)
		require.NotEmpty(t, env.qr.Locate(qrID))

		w := env.do(t, "DELETE", "/users/"+targetID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Empty(t, env.qr.Locate(qrID))

		verify := env.do(t, "GET", "/verify/"+qrID, "", nil)
		assert.Equal(t, http.StatusNotFound, verify.Code)
	})
}

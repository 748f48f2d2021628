package controllers_test

import (
	"net/http"
	"testing"

	models "qraccess/models/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := env.registerUser(t, "Owner", "owner@example.com", "Aa1aaaaa")
	_, strangerToken := env.registerUser(t, "Stranger", "stranger@example.com", "Aa1aaaaa")
	_, adminToken := env.createAdmin(t, "admin@example.com")

	w := env.do(t, "POST", "/teams", ownerToken, map[string]string{"team_name": "Alpha Squad"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	team := decodeBody(t, w)
	teamID := team["team_id"].(string)
	assert.Regexp(t, `^TEAM-[A-F0-9]{8}$`, teamID)
	assert.Equal(t, "Alpha Squad", team["team_name"])

	t.Run("owner lists only their teams", func(t *testing.T) {
		env.do(t, "POST", "/teams", strangerToken, map[string]string{"team_name": "Beta Squad"})

		w := env.do(t, "GET", "/teams", ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decodeBody(t, w)["count"])

		all := env.do(t, "GET", "/teams", adminToken, nil)
		require.Equal(t, http.StatusOK, all.Code)
		assert.Equal(t, float64(2), decodeBody(t, all)["count"])
	})

	t.Run("stranger cannot read or rename the team", func(t *testing.T) {
		w := env.do(t, "GET", "/teams/"+teamID, strangerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.do(t, "PUT", "/teams/"+teamID, strangerToken, map[string]string{"team_name": "Hijacked"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner renames the team", func(t *testing.T) {
		w := env.do(t, "PUT", "/teams/"+teamID, ownerToken, map[string]string{"team_name": "Alpha Prime"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Alpha Prime", decodeBody(t, w)["team_name"])
	})

	t.Run("delete is a soft delete", func(t *testing.T) {
		w := env.do(t, "DELETE", "/teams/"+teamID, ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// Row survives with the active flag cleared
		var stored models.Team
		require.NoError(t, env.db.Where("team_id = ?", teamID).First(&stored).Error)
		assert.False(t, stored.IsActive)

		// And it no longer resolves through the API
		notFound := env.do(t, "GET", "/teams/"+teamID, ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, notFound.Code)
	})
}

func TestGameEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, userToken := env.registerUser(t, "Player", "player@example.com", "Aa1aaaaa")
	_, adminToken := env.createAdmin(t, "admin@example.com")

	t.Run("non-admin cannot create a game", func(t *testing.T) {
		w := env.do(t, "POST", "/admin/games", userToken, map[string]interface{}{
			"game_name": "Forbidden Game",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin creates and updates a game", func(t *testing.T) {
		w := env.do(t, "POST", "/admin/games", adminToken, map[string]interface{}{
			"game_name":        "Table Tennis",
			"game_description": "First to 21",
			"min_points":       0,
			"max_points":       21,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		game := decodeBody(t, w)
		gameID := game["game_id"].(string)
		assert.Regexp(t, `^GAME-[A-F0-9]{8}$`, gameID)

		upd := env.do(t, "PUT", "/admin/games/"+gameID, adminToken, map[string]interface{}{
			"max_points": 30,
		})
		require.Equal(t, http.StatusOK, upd.Code)
		assert.Equal(t, float64(30), decodeBody(t, upd)["max_points"])
	})

	t.Run("inverted scoring range is rejected", func(t *testing.T) {
		w := env.do(t, "POST", "/admin/games", adminToken, map[string]interface{}{
			"game_name":  "Broken Game",
			"min_points": 50,
			"max_points": 10,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate game name conflicts", func(t *testing.T) {
		w := env.do(t, "POST", "/admin/games", adminToken, map[string]interface{}{
			"game_name": "Table Tennis",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("renaming a game to an existing name conflicts", func(t *testing.T) {
		w := env.do(t, "POST", "/admin/games", adminToken, map[string]interface{}{
			"game_name": "Chess",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		gameID := decodeBody(t, w)["game_id"].(string)

		upd := env.do(t, "PUT", "/admin/games/"+gameID, adminToken, map[string]interface{}{
			"game_name": "Table Tennis",
		})
		assert.Equal(t, http.StatusConflict, upd.Code)

		// Resubmitting the current name is not a conflict
		same := env.do(t, "PUT", "/admin/games/"+gameID, adminToken, map[string]interface{}{
			"game_name": "Chess",
		})
		assert.Equal(t, http.StatusOK, same.Code)
	})

	t.Run("any authenticated user lists games", func(t *testing.T) {
		w := env.do(t, "GET", "/games", userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decodeBody(t, w)["count"])
	})
}

func TestResultEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, playerToken := env.registerUser(t, "Player", "player@example.com", "Aa1aaaaa")
	admin, adminToken := env.createAdmin(t, "admin@example.com")

	w := env.do(t, "POST", "/teams", playerToken, map[string]string{"team_name": "Scorers"})
	require.Equal(t, http.StatusCreated, w.Code)
	teamID := decodeBody(t, w)["team_id"].(string)

	w = env.do(t, "POST", "/admin/games", adminToken, map[string]interface{}{
		"game_name":  "Darts",
		"min_points": 10,
		"max_points": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	gameID := decodeBody(t, w)["game_id"].(string)

	newResult := func(points int) map[string]interface{} {
		return map[string]interface{}{
			"team_id":       teamID,
			"game_id":       gameID,
			"points_scored": points,
		}
	}

	t.Run("points exactly on the bounds are accepted", func(t *testing.T) {
		for _, points := range []int{10, 100} {
			w := env.do(t, "POST", "/results", playerToken, newResult(points))
			require.Equal(t, http.StatusCreated, w.Code, "points %d should be accepted", points)
			body := decodeBody(t, w)
			assert.Regexp(t, `^RESULT-[A-F0-9]{8}$`, body["result_id"])
			assert.Equal(t, false, body["verified_by_admin"])
		}
	})

	t.Run("points just outside the bounds are rejected", func(t *testing.T) {
		for _, points := range []int{9, 101} {
			w := env.do(t, "POST", "/results", playerToken, newResult(points))
			require.Equal(t, http.StatusBadRequest, w.Code, "points %d should be rejected", points)
			assert.Equal(t, "Points must be between 10 and 100", decodeBody(t, w)["error"])
		}
	})

	t.Run("cannot record results for somebody else's team", func(t *testing.T) {
		_, otherToken := env.registerUser(t, "Other", "other@example.com", "Aa1aaaaa")
		w := env.do(t, "POST", "/results", otherToken, newResult(50))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("player sees own results, admin endpoint sees all", func(t *testing.T) {
		own := env.do(t, "GET", "/results", playerToken, nil)
		require.Equal(t, http.StatusOK, own.Code)
		assert.Equal(t, float64(2), decodeBody(t, own)["count"])

		all := env.do(t, "GET", "/admin/results", adminToken, nil)
		require.Equal(t, http.StatusOK, all.Code)
		assert.Equal(t, float64(2), decodeBody(t, all)["count"])
	})

	t.Run("admin verifies a result with points adjustment", func(t *testing.T) {
		w := env.do(t, "POST", "/results", playerToken, newResult(42))
		require.Equal(t, http.StatusCreated, w.Code)
		resultID := decodeBody(t, w)["result_id"].(string)

		upd := env.do(t, "PUT", "/admin/results/"+resultID, adminToken, map[string]interface{}{
			"points_scored": 55,
			"verified":      true,
		})
		require.Equal(t, http.StatusOK, upd.Code)

		var stored models.GameResult
		require.NoError(t, env.db.Where("result_id = ?", resultID).First(&stored).Error)
		assert.Equal(t, 55, stored.PointsScored)
		assert.True(t, stored.VerifiedByAdmin)
		require.NotNil(t, stored.AdminUserID)
		assert.Equal(t, admin.ID, *stored.AdminUserID)
	})

	t.Run("admin adjustment outside the range is rejected", func(t *testing.T) {
		w := env.do(t, "POST", "/results", playerToken, newResult(42))
		require.Equal(t, http.StatusCreated, w.Code)
		resultID := decodeBody(t, w)["result_id"].(string)

		upd := env.do(t, "PUT", "/admin/results/"+resultID, adminToken, map[string]interface{}{
			"points_scored": 101,
		})
		assert.Equal(t, http.StatusBadRequest, upd.Code)
	})

	t.Run("non-admin cannot touch admin result endpoints", func(t *testing.T) {
		w := env.do(t, "GET", "/admin/results", playerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

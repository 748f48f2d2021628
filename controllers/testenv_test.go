package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"qraccess/middleware"
	models "qraccess/models/postgres"
	"qraccess/routes"
	"qraccess/services/qr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	qr     *qr.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.Game{},
		&models.GameResult{},
	))

	qrService := qr.NewService(db, t.TempDir(), "/media")

	r := gin.New()
	routes.SetupRoutes(r, db, nil, qrService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &testEnv{router: r, db: db, qr: qrService}
}

// do performs a JSON request against the test router.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// registerUser registers through the real endpoint and returns the response
// body and the access token.
func (e *testEnv) registerUser(t *testing.T, name, email, password string) (map[string]interface{}, string) {
	t.Helper()
	w := e.do(t, "POST", "/register", "", map[string]string{
		"name":             name,
		"email":            email,
		"password":         password,
		"password_confirm": password,
	})
	require.Equal(t, 201, w.Code, w.Body.String())
	body := decodeBody(t, w)
	tokens := body["tokens"].(map[string]interface{})
	return body, tokens["access"].(string)
}

// createAdmin inserts an admin directly into the store, the way seed tooling
// would, and returns the record with a valid access token.
func (e *testEnv) createAdmin(t *testing.T, email string) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Adminpass1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	qrID, err := e.qr.IssueID()
	require.NoError(t, err)

	admin := models.User{
		Email:        email,
		Name:         "Admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		QrID:         qrID,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(&admin).Error)

	access, _, err := middleware.GenerateTokens(admin.ID, admin.Email, admin.Role)
	require.NoError(t, err)
	return admin, access
}

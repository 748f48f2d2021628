package qr

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	models "qraccess/models/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return NewService(db, t.TempDir(), "/media")
}

func TestIssueID(t *testing.T) {
	svc := newTestService(t)
	pattern := regexp.MustCompile(`^QR-[A-Z0-9]{8}$`)

	t.Run("ids match the QR-XXXXXXXX format", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			id, err := svc.IssueID()
			require.NoError(t, err)
			assert.Regexp(t, pattern, id)
		}
	})

	t.Run("issued id round-trips through the store", func(t *testing.T) {
		id, err := svc.IssueID()
		require.NoError(t, err)

		user := models.User{
			Email:        "roundtrip@example.com",
			Name:         "Round Trip",
			PasswordHash: "x",
			Role:         models.RoleUser,
			QrID:         id,
			IsActive:     true,
		}
		require.NoError(t, svc.DB.Create(&user).Error)

		var found models.User
		require.NoError(t, svc.DB.Where("qr_id = ?", id).First(&found).Error)
		assert.Equal(t, user.ID, found.ID)
	})
}

func TestRenderAndLocate(t *testing.T) {
	svc := newTestService(t)

	t.Run("render produces a PNG artifact", func(t *testing.T) {
		rel, err := svc.Render("QR-TESTPNG1", "Some User")
		require.NoError(t, err)
		assert.Equal(t, "qr_codes/QR-TESTPNG1.png", rel)

		data, err := os.ReadFile(filepath.Join(svc.MediaRoot, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "\x89PNG"), "artifact should be a PNG")
	})

	t.Run("locate is idempotent", func(t *testing.T) {
		_, err := svc.Render("QR-TESTLOC1", "")
		require.NoError(t, err)

		first := svc.Locate("QR-TESTLOC1")
		second := svc.Locate("QR-TESTLOC1")
		assert.Equal(t, "/media/qr_codes/QR-TESTLOC1.png", first)
		assert.Equal(t, first, second)
	})

	t.Run("locate returns empty for unknown ids", func(t *testing.T) {
		assert.Empty(t, svc.Locate("QR-MISSING1"))
	})

	t.Run("locate prefers PNG over text", func(t *testing.T) {
		dir := filepath.Join(svc.MediaRoot, "qr_codes")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "QR-PREFER01.txt"), []byte("QR ID: QR-PREFER01\n"), 0o644))
		assert.Equal(t, "/media/qr_codes/QR-PREFER01.txt", svc.Locate("QR-PREFER01"))

		_, err := svc.Render("QR-PREFER01", "")
		require.NoError(t, err)
		assert.Equal(t, "/media/qr_codes/QR-PREFER01.png", svc.Locate("QR-PREFER01"))
	})
}

func TestEnsureImage(t *testing.T) {
	svc := newTestService(t)

	url := svc.EnsureImage("QR-ENSURE01", "Lazy User")
	require.NotEmpty(t, url)
	assert.Equal(t, "/media/qr_codes/QR-ENSURE01.png", url)

	// A second call hits the existing artifact
	assert.Equal(t, url, svc.EnsureImage("QR-ENSURE01", "Lazy User"))

	// After removal the artifact is lazily regenerated
	svc.Remove("QR-ENSURE01")
	assert.Empty(t, svc.Locate("QR-ENSURE01"))
	assert.Equal(t, url, svc.EnsureImage("QR-ENSURE01", "Lazy User"))
}

func TestRemove(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Render("QR-REMOVE01", "")
	require.NoError(t, err)
	require.NotEmpty(t, svc.Locate("QR-REMOVE01"))

	svc.Remove("QR-REMOVE01")
	assert.Empty(t, svc.Locate("QR-REMOVE01"))

	// Removing an id with no artifacts is not an error
	svc.Remove("QR-NEVERWAS")
}

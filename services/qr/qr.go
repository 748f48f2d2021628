package qr

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	models "qraccess/models/postgres"

	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

const (
	idAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength         = 8
	maxIssueAttempts = 10

	artifactDir = "qr_codes"
)

// Preference order when locating an existing artifact.
var artifactExtensions = []string{"png", "svg", "txt"}

// Service issues unique QR identifiers and manages their image artifacts
// under the media root. Identifier assignment must succeed for an account to
// exist; image rendering may degrade (PNG -> SVG -> plain text) without ever
// failing the enclosing request.
type Service struct {
	DB        *gorm.DB
	MediaRoot string
	MediaURL  string
}

// NewService creates a QR service writing artifacts below mediaRoot and
// returning URLs below mediaURL.
func NewService(db *gorm.DB, mediaRoot, mediaURL string) *Service {
	return &Service{DB: db, MediaRoot: mediaRoot, MediaURL: mediaURL}
}

// randomID generates a candidate identifier in the format QR-XXXXXXXX.
func randomID() string {
	b := make([]byte, idLength)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return "QR-" + string(b)
}

// IssueID generates a QR identifier that is unique across all users. On a
// collision it retries with a fresh random value; the attempt bound exists so
// a broken store cannot loop forever, not because collisions are expected.
func (s *Service) IssueID() (string, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		id := randomID()
		var count int64
		if err := s.DB.Model(&models.User{}).Where("qr_id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("qr id uniqueness check failed: %w", err)
		}
		if count == 0 {
			return id, nil
		}
		log.Printf("QR id collision on %s, retrying (attempt %d)", id, attempt+1)
	}
	return "", errors.New("could not issue a unique qr id after 10 attempts")
}

// Render encodes "{qrID}|{name}" into a scannable artifact and writes it
// under MediaRoot/qr_codes. It tries PNG first, falls back to SVG built from
// the same QR bitmap, and as a last resort writes a plain-text file that
// still contains the identifier. Returns the artifact path relative to the
// media root.
func (s *Service) Render(qrID, name string) (string, error) {
	payload := qrID
	if name != "" {
		payload = qrID + "|" + name
	}

	dir := filepath.Join(s.MediaRoot, artifactDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating qr media directory: %w", err)
	}

	// PNG
	if png, err := qrcode.Encode(payload, qrcode.Low, 256); err == nil {
		rel := artifactDir + "/" + qrID + ".png"
		if werr := os.WriteFile(filepath.Join(dir, qrID+".png"), png, 0o644); werr == nil {
			return rel, nil
		} else {
			log.Printf("PNG generation failed for %s: %v, trying SVG fallback", qrID, werr)
		}
	} else {
		log.Printf("PNG generation failed for %s: %v, trying SVG fallback", qrID, err)
	}

	// SVG built from the QR bitmap
	if code, err := qrcode.New(payload, qrcode.Low); err == nil {
		rel := artifactDir + "/" + qrID + ".svg"
		svg := bitmapToSVG(code.Bitmap())
		if werr := os.WriteFile(filepath.Join(dir, qrID+".svg"), []byte(svg), 0o644); werr == nil {
			return rel, nil
		} else {
			log.Printf("SVG generation failed for %s: %v, falling back to text", qrID, werr)
		}
	} else {
		log.Printf("SVG generation failed for %s: %v, falling back to text", qrID, err)
	}

	// Plain-text artifact. Verification only depends on the identifier being
	// resolvable in the store, so this is enough for a scanner operator to
	// type the id in by hand.
	rel := artifactDir + "/" + qrID + ".txt"
	text := "QR ID: " + payload + "\n"
	if err := os.WriteFile(filepath.Join(dir, qrID+".txt"), []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("error writing text qr artifact: %w", err)
	}
	return rel, nil
}

// Locate returns the access URL of an existing artifact for the given QR id,
// probing PNG, then SVG, then text. Returns "" when no artifact exists;
// callers regenerate lazily via EnsureImage.
func (s *Service) Locate(qrID string) string {
	for _, ext := range artifactExtensions {
		rel := artifactDir + "/" + qrID + "." + ext
		if _, err := os.Stat(filepath.Join(s.MediaRoot, artifactDir, qrID+"."+ext)); err == nil {
			return strings.TrimRight(s.MediaURL, "/") + "/" + rel
		}
	}
	return ""
}

// EnsureImage is the single locate-or-render contract: it returns the URL of
// an existing artifact, rendering one first if none exists. Returns "" only
// when every rendering fallback failed; callers treat that as a missing
// optional field, never as a request failure.
func (s *Service) EnsureImage(qrID, name string) string {
	if url := s.Locate(qrID); url != "" {
		return url
	}
	if _, err := s.Render(qrID, name); err != nil {
		log.Printf("Error generating QR artifact for %s: %v", qrID, err)
		return ""
	}
	return s.Locate(qrID)
}

// Remove deletes the artifacts for a QR id. Best effort: a missing file is
// not an error.
func (s *Service) Remove(qrID string) {
	for _, ext := range artifactExtensions {
		path := filepath.Join(s.MediaRoot, artifactDir, qrID+"."+ext)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Error deleting QR artifact %s: %v", path, err)
		}
	}
}

// bitmapToSVG renders a QR module bitmap as one SVG rect per dark module.
func bitmapToSVG(bitmap [][]bool) string {
	size := len(bitmap)
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, size, size)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="1" fill="#000000"/>`, x, y)
			}
		}
	}
	b.WriteString(`</svg>`)
	return b.String()
}

package utils

import "fmt"

// FormatVerificationKey builds the cache key for a QR verification lookup.
// Key format: "qr:verify:{qrID}"
func FormatVerificationKey(qrID string) string {
	return fmt.Sprintf("qr:verify:%s", qrID)
}

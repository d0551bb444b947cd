package storage

import (
	"context"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object describes one stored file: the original name, the public URL used
// in API payloads, and the key needed to delete the file later.
type Object struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Key  string `json:"key"`
}

// Store is the attachment store boundary. Upload places a multipart file
// under a generated key below prefix and returns its public URL and key.
// Delete is idempotent: removing a missing key returns nil. Neither call
// retries; failures propagate to the caller, which decides whether the
// surrounding operation aborts.
type Store interface {
	Upload(ctx context.Context, file *multipart.FileHeader, prefix string) (Object, error)
	Delete(ctx context.Context, key string) error
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// MakeKey builds a collision-resistant storage key under prefix by
// combining a timestamp, a short random fragment, and the sanitized
// original filename.
func MakeKey(prefix, filename string) string {
	name := SanitizeFilename(filename)
	stamp := time.Now().Format("20060102150405")
	frag := uuid.New().String()[:8]
	return strings.TrimSuffix(prefix, "/") + "/" + stamp + "-" + frag + "-" + name
}

// SanitizeFilename strips path components and replaces characters unsafe
// for path-like storage keys.
func SanitizeFilename(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	cleaned := unsafeKeyChars.ReplaceAllString(filename, "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

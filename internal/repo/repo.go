// Package repo holds what the audio stores share.
package repo

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("audio not found")

// ServedURL is where /api/audio/:key serves a stored clip.
func ServedURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/api/audio/" + key
}

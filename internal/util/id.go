package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a provider-style document id, optionally namespaced
// with a short prefix ("story", "sub", ...).
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

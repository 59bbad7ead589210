package actor

import (
	"strings"

	"github.com/google/uuid"
)

// NewID generates a fresh 32-character hex identifier with no dashes, used
// for both pipeline ids and correlation ids per spec §6.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

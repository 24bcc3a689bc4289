package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID prefixes per entity kind. Prefixed UUIDv7 ids are unique, carry their
// type in the value, and sort by creation time.
const (
	IDPrefixUser         = "usr"
	IDPrefixJob          = "job"
	IDPrefixMessage      = "msg"
	IDPrefixNotification = "ntf"
)

// NewID returns a new type-prefixed, time-ordered identifier.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does; fall back to a
		// timestamp id rather than propagating an error for id minting.
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return prefix + "_" + id.String()
}

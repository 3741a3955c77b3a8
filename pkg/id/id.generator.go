package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a prefixed, lexicographically sortable entity ID,
// e.g. don_01J8ZQ4X9W2M3N4P5Q6R7S8T9V.
func GenerateUUID(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return prefix + "_" + id.String()
}

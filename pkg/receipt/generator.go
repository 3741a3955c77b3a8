package receipt

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	prefix  = "RCP-"
	codeLen = 8
)

// Generator produces tax-receipt numbers.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// ForDonation derives a stable receipt number from a donation ID, so
// re-issuing a receipt never mints a second number. The entity prefix
// (don_) is stripped before taking the code portion.
func (g *Generator) ForDonation(donationID string) string {
	body := donationID
	if i := strings.IndexByte(body, '_'); i >= 0 {
		body = body[i+1:]
	}
	if len(body) > codeLen {
		body = body[:codeLen]
	}
	return prefix + strings.ToUpper(body)
}

// Generate mints a fresh receipt number when no donation ID is available.
func (g *Generator) Generate() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return prefix + id.String()[:codeLen]
}

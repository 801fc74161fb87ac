// Package txid generates transfer identifiers and end-to-end identifiers.
//
// Both identifiers share the same shape: a single-letter tag, the fixed
// issuer code, the instant at minute precision and a random alphanumeric
// suffix. The random suffix gives enough birthday space that collisions do
// not occur in practice; the store's uniqueness constraint is the backstop.
package txid

import (
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	issuerCode = "45756448"

	// Minute-precision timestamp, e.g. 202609011530.
	timeLayout = "200601021504"

	suffixLen = 11
	maxLen    = 35
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Generator produces transaction identifiers.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateTxid returns a fresh transfer identifier for the current instant.
func (g *Generator) GenerateTxid() string {
	return build("T", time.Now().UTC())
}

// GenerateEndToEndID returns a fresh end-to-end identifier for the given
// instant. Assigning it is what marks a transaction as processed.
func (g *Generator) GenerateEndToEndID(at time.Time) string {
	return build("E", at.UTC())
}

func build(tag string, at time.Time) string {
	id := tag + issuerCode + at.Format(timeLayout) + randomSuffix()
	if len(id) > maxLen {
		id = id[:maxLen]
	}
	return id
}

// randomSuffix derives an alphanumeric suffix from fresh 128-bit random
// values. Base64 output is filtered down to [a-zA-Z0-9]; in the rare case
// the filtered text comes up short another value is drawn.
func randomSuffix() string {
	var sb strings.Builder
	for sb.Len() < suffixLen {
		u := uuid.New()
		enc := base64.StdEncoding.EncodeToString(u[:])
		sb.WriteString(nonAlphanumeric.ReplaceAllString(enc, ""))
	}
	return sb.String()[:suffixLen]
}

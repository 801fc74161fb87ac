package txid

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

var txidFormat = regexp.MustCompile(`^[A-Za-z0-9]{26,35}$`)

func TestGenerateTxidFormat(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 100; i++ {
		id := g.GenerateTxid()
		if !txidFormat.MatchString(id) {
			t.Fatalf("txid %q does not match the required format", id)
		}
		if !strings.HasPrefix(id, "T"+issuerCode) {
			t.Fatalf("txid %q missing issuer prefix", id)
		}
	}
}

func TestGenerateTxidEmbedsInstant(t *testing.T) {
	g := NewGenerator()

	before := time.Now().UTC().Format(timeLayout)
	id := g.GenerateTxid()
	after := time.Now().UTC().Format(timeLayout)

	stamp := id[len("T"+issuerCode) : len("T"+issuerCode)+len(timeLayout)]
	if stamp != before && stamp != after {
		t.Fatalf("txid timestamp %q not within call window [%s, %s]", stamp, before, after)
	}
}

func TestGenerateEndToEndID(t *testing.T) {
	g := NewGenerator()

	at := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
	id := g.GenerateEndToEndID(at)

	want := "E" + issuerCode + "202603140926"
	if !strings.HasPrefix(id, want) {
		t.Fatalf("e2e id %q missing prefix %q", id, want)
	}
	if !txidFormat.MatchString(id) {
		t.Fatalf("e2e id %q does not match the required format", id)
	}
}

func TestGenerateTxidUnique(t *testing.T) {
	g := NewGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 10000; i++ {
		id := g.GenerateTxid()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate txid generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestRandomSuffixAlphanumeric(t *testing.T) {
	for i := 0; i < 100; i++ {
		s := randomSuffix()
		if len(s) != suffixLen {
			t.Fatalf("suffix %q has length %d, want %d", s, len(s), suffixLen)
		}
		if nonAlphanumeric.MatchString(s) {
			t.Fatalf("suffix %q contains non-alphanumeric characters", s)
		}
	}
}

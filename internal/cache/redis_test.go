package cache

import (
	"testing"
	"time"
)

func TestEntryRoundTrip(t *testing.T) {
	payload := `{"transaction":{"txid":"T45756448202601010000RANDOMSUFFIX"}}`
	deadline := time.Now().Add(time.Hour)

	raw, err := wrapEntry(payload, deadline)
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}

	got, expired := unwrapEntry(raw, time.Now())
	if expired {
		t.Fatalf("entry reported expired before its deadline")
	}
	if got != payload {
		t.Fatalf("payload round trip mismatch: got %s", got)
	}
}

func TestEntryExpiresAtAbsoluteDeadline(t *testing.T) {
	raw, err := wrapEntry(`{"a":1}`, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("wrap failed: %v", err)
	}

	_, expired := unwrapEntry(raw, time.Now())
	if !expired {
		t.Fatalf("entry past its absolute deadline was not reported expired")
	}
}

func TestUnwrapPassesThroughBarePayloads(t *testing.T) {
	for _, raw := range []string{
		`{"txid":"T45756448202601010000RANDOMSUFFIX"}`,
		`[{"transaction":null}]`,
		`not json at all`,
	} {
		got, expired := unwrapEntry([]byte(raw), time.Now())
		if expired {
			t.Fatalf("bare payload %q reported expired", raw)
		}
		if got != raw {
			t.Fatalf("bare payload %q altered to %q", raw, got)
		}
	}
}

package amqp

import (
	"testing"
	"time"
)

func TestDatasetReloadMessageRoundTrip(t *testing.T) {
	mod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := NewDatasetReloadMessage("/data/university-donations.csv", mod, 1234)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DatasetReloadMessageFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != msg.Path || !got.ModTime.Equal(mod) || got.RowsKept != 1234 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestDatasetReloadMessageFromJSONInvalid(t *testing.T) {
	if _, err := DatasetReloadMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer

	closer, err := Setup(context.Background(), Config{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer()

	log.WithField("country", "US").Info("hello")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json log line, got %q", buf.String())
	}
	if line["msg"] != "hello" || line["country"] != "US" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestSetup_RejectsBadLevel(t *testing.T) {
	if _, err := Setup(context.Background(), Config{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestPayload_StringifiesErrors(t *testing.T) {
	e := log.NewEntry(log.StandardLogger()).WithError(errors.New("boom"))
	e.Message = "failed"

	p := payload(e)
	if p["error"] != "boom" || p["message"] != "failed" {
		t.Fatalf("unexpected payload %v", p)
	}
}

package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"id": "p1"}, "req-1")

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if !env.Success || env.Error != nil || env.RequestID != "req-1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestFailOmitsEmptyDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, 404, "not_found", "period not found", "req-2")

	if rec.Code != 404 {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	var errObj map[string]json.RawMessage
	if err := json.Unmarshal(raw["error"], &errObj); err != nil {
		t.Fatalf("invalid error object: %v", err)
	}
	if _, present := errObj["details"]; present {
		t.Fatal("nil details must be omitted from the wire")
	}
	if string(errObj["code"]) != `"not_found"` {
		t.Fatalf("unexpected code %s", errObj["code"])
	}
}

func TestFailDetailedCarriesContext(t *testing.T) {
	rec := httptest.NewRecorder()
	FailDetailed(rec, 403, "forbidden", "insufficient permissions",
		map[string]string{"required": "nomina.reopen"}, "req-3")

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Success || env.Error == nil {
		t.Fatalf("unexpected envelope %+v", env)
	}
	details, ok := env.Error.Details.(map[string]any)
	if !ok || details["required"] != "nomina.reopen" {
		t.Fatalf("expected required permission in details, got %+v", env.Error.Details)
	}
}

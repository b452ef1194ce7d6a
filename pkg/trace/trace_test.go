package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/zen-systems/cascade/pkg/adapter"
)

func TestRecorderWritesRecord(t *testing.T) {
	dir := t.TempDir()
	recorder, err := NewRecorder(dir)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	record := DispatchRecord{
		PromptHash:  HashString("hello"),
		PromptBytes: 5,
		Tiers:       []string{"a", "b"},
		Winner:      "b",
		Reports: []adapter.CallReport{
			{Tier: "a", Adapter: "mock", Model: "model-a", Class: "overloaded"},
			{Tier: "b", Adapter: "mock", Model: "model-b"},
		},
	}
	if err := recorder.Write(record); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 record file, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var got DispatchRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if got.ID == "" {
		t.Fatalf("expected an assigned ID")
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("expected an assigned timestamp")
	}
	if got.Winner != "b" || len(got.Reports) != 2 {
		t.Fatalf("unexpected record content: %+v", got)
	}
	if got.PromptHash != HashString("hello") {
		t.Fatalf("prompt hash mismatch")
	}
}

func TestRecorderPreservesExplicitID(t *testing.T) {
	dir := t.TempDir()
	recorder, err := NewRecorder(dir)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	if err := recorder.Write(DispatchRecord{ID: "fixed-id"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "fixed-id.json")); err != nil {
		t.Fatalf("expected record at fixed path: %v", err)
	}
}

func TestNewRecorderRequiresDir(t *testing.T) {
	if _, err := NewRecorder(""); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}

func TestNewRecorderCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "traces")
	recorder, err := NewRecorder(dir)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if recorder.Dir() != dir {
		t.Fatalf("unexpected dir %q", recorder.Dir())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected directory created: %v", err)
	}
}

func TestHashStringDeterministic(t *testing.T) {
	if HashString("a") != HashString("a") {
		t.Fatalf("hash should be deterministic")
	}
	if HashString("a") == HashString("b") {
		t.Fatalf("distinct inputs should hash differently")
	}
	if len(HashString("a")) != 64 {
		t.Fatalf("expected hex sha256 length 64, got %d", len(HashString("a")))
	}
}

// Package trace persists per-dispatch records for offline inspection.
// Recording is observability only; dispatch behavior never depends on it.
package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zen-systems/cascade/pkg/adapter"
)

// DispatchRecord captures one dispatch: the tiers attempted, each
// attempt's outcome, and the winner if any.
type DispatchRecord struct {
	ID             string               `json:"id"`
	Timestamp      time.Time            `json:"timestamp"`
	PromptHash     string               `json:"prompt_hash"`
	PromptBytes    int                  `json:"prompt_bytes"`
	Tiers          []string             `json:"tiers"`
	Reports        []adapter.CallReport `json:"reports,omitempty"`
	Winner         string               `json:"winner,omitempty"`
	Error          string               `json:"error,omitempty"`
	DurationMillis int64                `json:"duration_ms"`
}

// Recorder writes dispatch records to a directory, one JSON file each.
type Recorder struct {
	dir string
}

// NewRecorder creates a recorder rooted at dir.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, fmt.Errorf("trace directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Recorder{dir: dir}, nil
}

// Dir returns the recorder's directory.
func (r *Recorder) Dir() string {
	return r.dir
}

// Write persists a record, assigning an ID if it has none.
func (r *Recorder) Write(record DispatchRecord) error {
	if record.ID == "" {
		record.ID = newRecordID()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.dir, record.ID+".json")
	return os.WriteFile(path, data, 0644)
}

// HashString returns the hex sha256 of a value, used to reference prompts
// without persisting them.
func HashString(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

func newRecordID() string {
	now := time.Now().UTC()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d", now.UnixNano())))
	return fmt.Sprintf("%s-%s", now.Format("20060102T150405Z"), hex.EncodeToString(sum[:4]))
}

// Package auditlog appends newline-delimited JSON events describing a
// scan's lifecycle: each analyzer's start/finish/error and the final
// verdict. It is purely observational — nothing here feeds the risk
// score or gates any operation.
package auditlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

type Logger struct {
	path string
	mu   sync.Mutex
}

// Event is one line of the audit log. Phase is one of "analyzer" or
// "scan"; Status is "start", "ok", or "error".
type Event struct {
	Timestamp string            `json:"timestamp"`
	Operation string            `json:"operation"`
	Phase     string            `json:"phase"`
	Status    string            `json:"status"`
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func New(path string) *Logger {
	return &Logger{path: path}
}

// Log appends ev to the log file, stamping its timestamp. A nil Logger or
// one constructed with an empty path is a silent no-op, so callers can
// pass an unconfigured logger through every code path unconditionally.
func (l *Logger) Log(ev Event) error {
	if l == nil || l.path == "" {
		return nil
	}
	ev.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	blob, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(blob, '\n')); err != nil {
		return err
	}
	return nil
}

// AnalyzerStart logs an analyzer beginning work against a target.
func (l *Logger) AnalyzerStart(name, target string) {
	l.Log(Event{Operation: "scan", Phase: "analyzer", Status: "start", Fields: map[string]string{"analyzer": name, "target": target}})
}

// AnalyzerFinish logs an analyzer's completion, successful or not.
func (l *Logger) AnalyzerFinish(name string, findingCount int, elapsedMs int64, err error) {
	ev := Event{
		Operation: "scan",
		Phase:     "analyzer",
		Status:    "ok",
		Fields: map[string]string{
			"analyzer":  name,
			"findings":  strconv.Itoa(findingCount),
			"elapsedMs": strconv.FormatInt(elapsedMs, 10),
		},
	}
	if err != nil {
		ev.Status = "error"
		ev.Message = err.Error()
	}
	l.Log(ev)
}

// ScanComplete logs the final verdict for a target.
func (l *Logger) ScanComplete(target string, score int, level string) {
	l.Log(Event{
		Operation: "scan",
		Phase:     "scan",
		Status:    "ok",
		Fields: map[string]string{
			"target": target,
			"score":  strconv.Itoa(score),
			"level":  level,
		},
	})
}

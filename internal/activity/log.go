// Package activity keeps an append-only jsonl log of plan mutations
// and monitor cycles. Logging is best-effort everywhere: a failed
// write never fails the operation that triggered it.
package activity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFileName   = "activity.jsonl"
	logFileMode   = 0o600
	maxLogEntries = 10000 // truncate oldest entries when log exceeds this size
)

// Entry is a single activity log line.
type Entry struct {
	Time    time.Time      `json:"time"`
	RunID   string         `json:"run_id,omitempty"`
	Event   string         `json:"event"`
	Details map[string]any `json:"details,omitempty"`
}

// Append writes one entry to the activity log in planDir.
// If the log exceeds maxLogEntries, the oldest entries are truncated.
func Append(planDir string, entry Entry) error {
	path := filepath.Join(planDir, logFileName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path from trusted plan dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}

	// Truncate if needed (best-effort; errors are non-fatal).
	_ = truncateLogIfNeeded(path)

	return nil
}

// Record appends an entry stamped with the current time, discarding
// any error.
func Record(planDir, runID, event string, details map[string]any) {
	_ = Append(planDir, Entry{
		Time:    time.Now(),
		RunID:   runID,
		Event:   event,
		Details: details,
	})
}

// truncateLogIfNeeded reads the log file and, if it exceeds
// maxLogEntries, rewrites it keeping only the most recent entries.
func truncateLogIfNeeded(path string) error {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return err
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	_ = f.Close()

	if err := scanner.Err(); err != nil {
		return err
	}

	if len(lines) <= maxLogEntries {
		return nil
	}

	// Keep only the last maxLogEntries lines.
	lines = lines[len(lines)-maxLogEntries:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(buf.String()), logFileMode)
}

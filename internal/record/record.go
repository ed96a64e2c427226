// Package record implements the append-only CSV logs: the per-user inference
// log and the signup audit trail. Files are created with a header row on
// first append and only ever appended to afterwards; existing rows are never
// rewritten or reordered.
package record

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotAuthenticated is returned when a record is attempted without a
// logged-in user identity.
var ErrNotAuthenticated = errors.New("user not logged in")

// csvLog serializes appends to one CSV file within the process.
type csvLog struct {
	mu     sync.Mutex
	path   string
	header []string
}

func (l *csvLog) append(row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	_, statErr := os.Stat(l.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(l.header); err != nil {
			return err
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

package record

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lungsight/apiserver/types"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRecorderAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "inference.csv")
	r := NewRecorder(path)
	r.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}

	results := map[string]types.ConditionScore{
		"Pneumonia":    {Probability: 0.92, Label: "Y"},
		"Cardiomegaly": {Probability: 0.11, Label: "N"},
	}
	require.NoError(t, r.Record(results, "uuid-1"))
	require.NoError(t, r.Record(results, "uuid-2"))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Len(t, header, len(types.Conditions)+2)
	require.Equal(t, types.Conditions, header[:len(types.Conditions)])
	require.Equal(t, []string{"uuid", "timestamp"}, header[len(types.Conditions):])

	last := rows[2]
	for i, cond := range types.Conditions {
		switch cond {
		case "Pneumonia":
			require.Equal(t, "0.92", last[i])
		case "Cardiomegaly":
			require.Equal(t, "0.11", last[i])
		default:
			// Conditions absent from the result map default to zero.
			require.Equal(t, "0", last[i])
		}
	}
	require.Equal(t, "uuid-2", last[len(types.Conditions)])
	require.Equal(t, "2026-03-14T09:26:53", last[len(types.Conditions)+1])
}

func TestRecorderHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inference.csv")

	r := NewRecorder(path)
	require.NoError(t, r.Record(nil, "uuid-1"))

	// A fresh Recorder over an existing file must not rewrite the header.
	r2 := NewRecorder(path)
	require.NoError(t, r2.Record(nil, "uuid-2"))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, "uuid", rows[0][len(types.Conditions)])
	require.Equal(t, "uuid-1", rows[1][len(types.Conditions)])
	require.Equal(t, "uuid-2", rows[2][len(types.Conditions)])
}

func TestRecorderRequiresUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inference.csv")
	r := NewRecorder(path)

	err := r.Record(map[string]types.ConditionScore{"Pneumonia": {Probability: 0.9}}, "")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	// Nothing may be written, not even the header.
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestAuditLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	a := NewAuditLog(path)

	require.NoError(t, a.Append(types.User{
		FullName: "Alice Smith",
		Gender:   "F",
		Age:      34,
		Username: "alice",
		UUID:     "uuid-alice",
	}))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"full_name", "gender", "age", "username", "user_uuid"}, rows[0])
	require.Equal(t, []string{"Alice Smith", "F", "34", "alice", "uuid-alice"}, rows[1])
}

package record

import (
	"strconv"
	"time"

	"github.com/lungsight/apiserver/types"
)

// timestampLayout is ISO-8601 in local time, matching the historical log
// format consumers already parse.
const timestampLayout = "2006-01-02T15:04:05"

// Recorder appends classification results to the inference log, one row per
// classification event, keyed by the user's external identifier.
type Recorder struct {
	log *csvLog
	now func() time.Time
}

func NewRecorder(path string) *Recorder {
	header := make([]string, 0, len(types.Conditions)+2)
	header = append(header, types.Conditions...)
	header = append(header, "uuid", "timestamp")
	return &Recorder{
		log: &csvLog{path: path, header: header},
		now: time.Now,
	}
}

// Record appends one row for the given results. Conditions absent from
// results default to 0.0. Fails with ErrNotAuthenticated when userUUID is
// empty, appending nothing.
func (r *Recorder) Record(results map[string]types.ConditionScore, userUUID string) error {
	if userUUID == "" {
		return ErrNotAuthenticated
	}

	row := make([]string, 0, len(types.Conditions)+2)
	for _, cond := range types.Conditions {
		prob := 0.0
		if score, ok := results[cond]; ok {
			prob = score.Probability
		}
		row = append(row, strconv.FormatFloat(prob, 'g', -1, 64))
	}
	row = append(row, userUUID, r.now().Format(timestampLayout))

	return r.log.append(row)
}

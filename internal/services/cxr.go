package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lungsight/apiserver/internal/logger"
	"github.com/lungsight/apiserver/internal/mq"
	"github.com/lungsight/apiserver/types"
)

// Model is the classifier handle consumed by the CXR use-cases. Satisfied by
// *vision.Classifier; tests substitute a stub.
type Model interface {
	Load() error
	Classify(imageRef string, threshold float64) (types.ClassificationResult, error)
}

// InferenceRecorder appends classification results to the append-only log.
type InferenceRecorder interface {
	Record(results map[string]types.ConditionScore, userUUID string) error
}

// CXRService encapsulates the classification pipeline: model loading,
// inference and result recording.
type CXRService struct {
	model    Model
	recorder InferenceRecorder
	events   *mq.MQ
	channel  string
	log      *logger.Logger
}

// NewCXRService constructs the service. events may be nil when no broker is
// configured.
func NewCXRService(model Model, recorder InferenceRecorder, events *mq.MQ, channel string, log *logger.Logger) *CXRService {
	return &CXRService{
		model:    model,
		recorder: recorder,
		events:   events,
		channel:  channel,
		log:      log.With("service", "CXRService"),
	}
}

// Load loads (or reloads) the model into the process-wide handle.
func (s *CXRService) Load() error {
	return s.model.Load()
}

// Classify runs one inference over the referenced image.
func (s *CXRService) Classify(imageRef string, threshold float64) (types.ClassificationResult, error) {
	return s.model.Classify(imageRef, threshold)
}

// inferenceRecordedEvent is the broker payload emitted after each append.
type inferenceRecordedEvent struct {
	UUID       string             `json:"uuid"`
	Conditions map[string]float64 `json:"conditions"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// Record appends the results to the inference log keyed by the logged-in
// user's identifier, then emits a broker event on a best-effort basis. Fails
// with record.ErrNotAuthenticated when userUUID is empty.
func (s *CXRService) Record(ctx context.Context, results map[string]types.ConditionScore, userUUID string) error {
	if err := s.recorder.Record(results, userUUID); err != nil {
		return err
	}

	if s.events == nil {
		return nil
	}

	event := inferenceRecordedEvent{
		UUID:       userUUID,
		Conditions: make(map[string]float64, len(results)),
		RecordedAt: time.Now(),
	}
	for condition, score := range results {
		event.Conditions[condition] = score.Probability
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("marshal inference event failed", "error", err)
		return nil
	}
	if _, err := s.events.Publish(ctx, s.channel, data, map[string]string{"uuid": userUUID}); err != nil {
		// The log row is already durable; a lost event is not a failure.
		s.log.Warn("publish inference event failed", "channel", s.channel, "error", err)
	}
	return nil
}

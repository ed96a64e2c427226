package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/lungsight/apiserver/internal/logger"
	"github.com/lungsight/apiserver/internal/report"
	"github.com/lungsight/apiserver/internal/storage"
	"github.com/lungsight/apiserver/types"
)

const reportContentType = "application/pdf"

// ArtifactIndex tracks saved report versions.
type ArtifactIndex interface {
	NextVersion(ctx context.Context, filename string, sizeBytes int64) (types.ReportArtifact, error)
	GetLatest(ctx context.Context, filename string) (types.ReportArtifact, error)
}

// ReportService renders report documents and persists them to the artifact
// store, one immutable object per save.
type ReportService struct {
	storage *storage.Storage
	index   ArtifactIndex
	log     *logger.Logger
}

func NewReportService(storage *storage.Storage, index ArtifactIndex, log *logger.Logger) *ReportService {
	return &ReportService{
		storage: storage,
		index:   index,
		log:     log.With("service", "ReportService"),
	}
}

// Generate renders the report and saves it as a new artifact version.
func (s *ReportService) Generate(ctx context.Context, req types.ReportRequest) (types.ReportArtifact, error) {
	data, filename, err := report.Render(req)
	if err != nil {
		return types.ReportArtifact{}, err
	}

	artifact, err := s.index.NextVersion(ctx, filename, int64(len(data)))
	if err != nil {
		return types.ReportArtifact{}, err
	}

	key := objectKey(filename, artifact.Version)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), reportContentType); err != nil {
		return types.ReportArtifact{}, err
	}

	s.log.Info("report saved", "filename", filename, "version", artifact.Version, "bytes", len(data))
	return artifact, nil
}

// Fetch opens the latest saved version of the named report.
func (s *ReportService) Fetch(ctx context.Context, filename string) (io.ReadCloser, types.ReportArtifact, error) {
	artifact, err := s.index.GetLatest(ctx, filename)
	if err != nil {
		return nil, types.ReportArtifact{}, err
	}

	r, err := s.storage.Get(ctx, objectKey(filename, artifact.Version))
	if err != nil {
		return nil, types.ReportArtifact{}, err
	}
	return r, artifact, nil
}

func objectKey(filename string, version int) string {
	return fmt.Sprintf("reports/v%d/%s", version, filename)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lungsight/apiserver/types"
)

// ArtifactRepository indexes saved report versions. The artifact bytes
// themselves live in object storage; this table only tracks filenames and
// version counters.
type ArtifactRepository struct {
	db *sql.DB
}

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// NextVersion records a new save of filename and returns its version number,
// starting at 1 for the first save.
func (r *ArtifactRepository) NextVersion(ctx context.Context, filename string, sizeBytes int64) (types.ReportArtifact, error) {
	artifact := types.ReportArtifact{
		Filename:  filename,
		SizeBytes: sizeBytes,
		CreatedAt: time.Now(),
	}

	const maxQuery = `
		SELECT COALESCE(MAX(version), 0)
		FROM report_artifacts
		WHERE filename = $1`
	var current int
	if err := r.db.QueryRowContext(ctx, maxQuery, filename).Scan(&current); err != nil {
		return types.ReportArtifact{}, err
	}
	artifact.Version = current + 1

	const insertQuery = `
		INSERT INTO report_artifacts (filename, version, size_bytes, created_at)
		VALUES ($1, $2, $3, $4)`
	result, err := r.db.ExecContext(
		ctx,
		insertQuery,
		artifact.Filename,
		artifact.Version,
		artifact.SizeBytes,
		artifact.CreatedAt,
	)
	if err != nil {
		return types.ReportArtifact{}, err
	}
	if id, err := result.LastInsertId(); err == nil {
		artifact.ID = int(id)
	}
	return artifact, nil
}

// GetLatest returns the most recent version recorded for filename.
func (r *ArtifactRepository) GetLatest(ctx context.Context, filename string) (types.ReportArtifact, error) {
	const query = `
		SELECT id, filename, version, size_bytes, created_at
		FROM report_artifacts
		WHERE filename = $1
		ORDER BY version DESC
		LIMIT 1`
	var artifact types.ReportArtifact
	err := r.db.QueryRowContext(ctx, query, filename).Scan(
		&artifact.ID,
		&artifact.Filename,
		&artifact.Version,
		&artifact.SizeBytes,
		&artifact.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ReportArtifact{}, ErrNotFound
		}
		return types.ReportArtifact{}, err
	}
	return artifact, nil
}

package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/klauspost/compress/zstd"

	"ripple/internal/errors"
	"ripple/internal/propagate"
	"ripple/internal/report"
)

// Summary is one row of analysis history.
type Summary struct {
	AnalysisID   string
	SourceRepo   string
	SourceCommit string
	CreatedAt    time.Time
	RepoCount    int
	MaxRisk      string
}

// SaveReport persists a finished report. The payload is JSON compressed
// with zstd; summary columns stay queryable.
func (db *DB) SaveReport(r *report.ImpactReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "cannot encode report", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "cannot create compressor", err)
	}
	compressed := enc.EncodeAll(payload, nil)
	enc.Close()

	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO analyses
		 (analysis_id, source_repo, source_commit, created_at, repo_count, max_risk, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.AnalysisID,
		r.SourceRepository,
		r.SourceCommit,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		len(r.Scores),
		string(maxRisk(r)),
		compressed,
	)
	if err != nil {
		return errors.Wrap(errors.StoreFailure, "cannot save report", err)
	}

	db.logger.Debug("report saved", map[string]interface{}{
		"analysisId": r.AnalysisID,
		"repos":      len(r.Scores),
	})
	return nil
}

// GetReport loads a report by analysis id.
func (db *DB) GetReport(analysisID string) (*report.ImpactReport, error) {
	var compressed []byte
	err := db.conn.QueryRow(
		`SELECT payload FROM analyses WHERE analysis_id = ?`, analysisID,
	).Scan(&compressed)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.StoreFailure, "analysis %q not found", analysisID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "cannot load report", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "cannot create decompressor", err)
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "cannot decompress report", err)
	}

	var r report.ImpactReport
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "cannot decode report", err)
	}
	return &r, nil
}

// ListReports returns history summaries, newest first, up to limit
// (0 means no limit).
func (db *DB) ListReports(limit int) ([]Summary, error) {
	query := `SELECT analysis_id, source_repo, source_commit, created_at, repo_count, max_risk
	          FROM analyses ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.StoreFailure, "cannot list reports", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var created string
		if err := rows.Scan(&s.AnalysisID, &s.SourceRepo, &s.SourceCommit, &created, &s.RepoCount, &s.MaxRisk); err != nil {
			return nil, errors.Wrap(errors.StoreFailure, "cannot scan report row", err)
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, s)
	}
	return out, rows.Err()
}

// maxRisk returns the highest risk level across a report's scores.
func maxRisk(r *report.ImpactReport) propagate.RiskLevel {
	order := map[propagate.RiskLevel]int{
		propagate.RiskLow:      0,
		propagate.RiskMedium:   1,
		propagate.RiskHigh:     2,
		propagate.RiskCritical: 3,
	}
	max := propagate.RiskLow
	for _, s := range r.Scores {
		if order[s.Risk] > order[max] {
			max = s.Risk
		}
	}
	return max
}

// Package journal persists routing decisions in SQLite so that route quality
// can be inspected after the fact.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/rag-gateway/internal/router"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS route_decisions (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id        TEXT NOT NULL,
	complexity        TEXT NOT NULL,
	domain            TEXT NOT NULL,
	intent            TEXT NOT NULL,
	recommended_route TEXT NOT NULL,
	final_route       TEXT NOT NULL,
	confidence        REAL NOT NULL,
	escalated         INTEGER NOT NULL,
	local_ms          INTEGER NOT NULL,
	cloud_ms          INTEGER NOT NULL,
	created_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_route_decisions_final_route
	ON route_decisions(final_route);
`
// #endregion schema

// #region journal-struct
// Journal is a SQLite-backed decision sink.
type Journal struct {
	db *sql.DB
}
// #endregion journal-struct

// #region constructor
// Open opens a SQLite database at path and runs migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

// NewJournalWithDB wraps an existing database handle. The caller owns the
// handle and must have run the schema.
func NewJournalWithDB(db *sql.DB) *Journal {
	return &Journal{db: db}
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}
// #endregion close

// #region record
// RecordDecision appends one routing outcome.
func (j *Journal) RecordDecision(rec router.DecisionRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	escalated := 0
	if rec.Escalated {
		escalated = 1
	}
	_, err := j.db.Exec(
		`INSERT INTO route_decisions
		 (request_id, complexity, domain, intent, recommended_route, final_route,
		  confidence, escalated, local_ms, cloud_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, string(rec.Complexity), string(rec.Domain), string(rec.Intent),
		string(rec.RecommendedRoute), string(rec.FinalRoute),
		rec.Confidence, escalated, rec.LocalMs, rec.CloudMs,
		created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}
// #endregion record

// #region stats
// RouteStats aggregates journaled outcomes for one final route.
type RouteStats struct {
	Route         router.Route `json:"route"`
	Requests      int64        `json:"requests"`
	Escalations   int64        `json:"escalations"`
	AvgConfidence float64      `json:"avgConfidence"`
	AvgLocalMs    float64      `json:"avgLocalMs"`
	AvgCloudMs    float64      `json:"avgCloudMs"`
}

// Stats returns per-route aggregates over all journaled decisions.
func (j *Journal) Stats() ([]RouteStats, error) {
	rows, err := j.db.Query(
		`SELECT final_route, COUNT(*), SUM(escalated),
		        AVG(confidence), AVG(local_ms), AVG(cloud_ms)
		 FROM route_decisions
		 GROUP BY final_route
		 ORDER BY final_route`,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []RouteStats
	for rows.Next() {
		var s RouteStats
		var route string
		if err := rows.Scan(&route, &s.Requests, &s.Escalations,
			&s.AvgConfidence, &s.AvgLocalMs, &s.AvgCloudMs); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		s.Route = router.Route(route)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
// #endregion stats

// #region recent
// Recent returns the most recent decisions, newest first.
func (j *Journal) Recent(limit int) ([]router.DecisionRecord, error) {
	rows, err := j.db.Query(
		`SELECT request_id, complexity, domain, intent, recommended_route,
		        final_route, confidence, escalated, local_ms, cloud_ms, created_at
		 FROM route_decisions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []router.DecisionRecord
	for rows.Next() {
		var rec router.DecisionRecord
		var complexity, domain, intent, recommended, final, createdStr string
		var escalated int
		if err := rows.Scan(&rec.RequestID, &complexity, &domain, &intent,
			&recommended, &final, &rec.Confidence, &escalated,
			&rec.LocalMs, &rec.CloudMs, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Complexity = router.Complexity(complexity)
		rec.Domain = router.Domain(domain)
		rec.Intent = router.Intent(intent)
		rec.RecommendedRoute = router.Route(recommended)
		rec.FinalRoute = router.Route(final)
		rec.Escalated = escalated != 0
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion recent

package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/pitch.report/internal/intensity"
	"github.com/banshee-data/pitch.report/internal/possession"
)

// ErrRunNotFound is returned when a run id has no row in analysis_runs.
var ErrRunNotFound = errors.New("analysis run not found")

// Run is one persisted analysis of a tracking feed.
type Run struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	FrameCount int64     `json:"frame_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRunID returns a fresh prefixed run identifier.
func NewRunID() string {
	return "run_" + uuid.NewString()
}

// CreateRun inserts a new analysis run row.
func (db *DB) CreateRun(runID, source string, frameCount int) error {
	_, err := db.Exec(
		"INSERT INTO analysis_runs (run_id, source, frame_count) VALUES (?, ?, ?)",
		runID, source, frameCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

// GetRun fetches a single run by id.
func (db *DB) GetRun(runID string) (*Run, error) {
	var r Run
	err := db.QueryRow(
		"SELECT run_id, source, frame_count, created_at FROM analysis_runs WHERE run_id = ?",
		runID,
	).Scan(&r.RunID, &r.Source, &r.FrameCount, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	return &r, nil
}

// ListRuns returns all runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.Query(
		"SELECT run_id, source, frame_count, created_at FROM analysis_runs ORDER BY created_at DESC, run_id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Source, &r.FrameCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SavePlayerMetrics stores per-player metric rows and their sprint
// intervals for a run in one transaction.
func (db *DB) SavePlayerMetrics(runID string, metrics []intensity.PlayerMetrics) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range metrics {
		distJSON, err := json.Marshal(m.Zones.DistanceByZone)
		if err != nil {
			return fmt.Errorf("failed to encode distance_by_zone: %w", err)
		}
		timeJSON, err := json.Marshal(m.Zones.TimeByZone)
		if err != nil {
			return fmt.Errorf("failed to encode time_by_zone: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO player_metrics (
				run_id, player_id, name, jersey_no, team_id, team_name, position,
				total_distance, in_play_distance, max_speed_kmh, avg_speed_kmh,
				max_acceleration, max_deceleration, high_intensity_distance,
				sprint_count, avg_sprint_distance, avg_sprint_duration,
				highest_sprint_speed_kmh, distance_by_zone, time_by_zone
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, m.PlayerID, m.Name, m.JerseyNo, m.TeamID, m.TeamName, m.Position,
			m.TotalDistance, m.InPlayDistance, m.MaxSpeedKmh, m.AvgSpeedKmh,
			m.MaxAcceleration, m.MaxDeceleration, m.HighIntensityDistance,
			m.SprintCount, m.AvgSprintDistance, m.AvgSprintDuration,
			m.HighestSprintSpeedKmh, string(distJSON), string(timeJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert metrics for player %d: %w", m.PlayerID, err)
		}

		for _, s := range m.Sprints {
			_, err = tx.Exec(`
				INSERT INTO sprints (run_id, player_id, period_id, start_timestamp, duration, distance, peak_speed_kmh)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				runID, m.PlayerID, s.PeriodID, s.StartTimestamp, s.Duration, s.Distance, s.PeakSpeedKmh,
			)
			if err != nil {
				return fmt.Errorf("failed to insert sprint for player %d: %w", m.PlayerID, err)
			}
		}
	}

	return tx.Commit()
}

// SavePossessionShares stores the per-player possession summary for a run.
func (db *DB) SavePossessionShares(runID string, shares []possession.PlayerShare) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range shares {
		_, err := tx.Exec(
			"INSERT INTO possession_shares (run_id, player_id, frames, share) VALUES (?, ?, ?, ?)",
			runID, s.PlayerID, s.Frames, s.Share,
		)
		if err != nil {
			return fmt.Errorf("failed to insert possession share for player %d: %w", s.PlayerID, err)
		}
	}

	return tx.Commit()
}

// PlayerMetricsForRun loads the metric rows for a run in team sheet order.
// Sprint intervals are reattached from the sprints table.
func (db *DB) PlayerMetricsForRun(runID string) ([]intensity.PlayerMetrics, error) {
	rows, err := db.Query(`
		SELECT player_id, name, jersey_no, team_id, team_name, position,
			total_distance, in_play_distance, max_speed_kmh, avg_speed_kmh,
			max_acceleration, max_deceleration, high_intensity_distance,
			sprint_count, avg_sprint_distance, avg_sprint_duration,
			highest_sprint_speed_kmh, distance_by_zone, time_by_zone
		FROM player_metrics WHERE run_id = ?
		ORDER BY team_id, jersey_no, player_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player metrics: %w", err)
	}
	defer rows.Close()

	var metrics []intensity.PlayerMetrics
	for rows.Next() {
		var m intensity.PlayerMetrics
		var distJSON, timeJSON string
		err := rows.Scan(
			&m.PlayerID, &m.Name, &m.JerseyNo, &m.TeamID, &m.TeamName, &m.Position,
			&m.TotalDistance, &m.InPlayDistance, &m.MaxSpeedKmh, &m.AvgSpeedKmh,
			&m.MaxAcceleration, &m.MaxDeceleration, &m.HighIntensityDistance,
			&m.SprintCount, &m.AvgSprintDistance, &m.AvgSprintDuration,
			&m.HighestSprintSpeedKmh, &distJSON, &timeJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player metrics row: %w", err)
		}
		if err := json.Unmarshal([]byte(distJSON), &m.Zones.DistanceByZone); err != nil {
			return nil, fmt.Errorf("failed to decode distance_by_zone: %w", err)
		}
		if err := json.Unmarshal([]byte(timeJSON), &m.Zones.TimeByZone); err != nil {
			return nil, fmt.Errorf("failed to decode time_by_zone: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sprints, err := db.SprintsForRun(runID)
	if err != nil {
		return nil, err
	}
	for i := range metrics {
		metrics[i].Sprints = sprints[metrics[i].PlayerID]
	}

	return metrics, nil
}

// SprintsForRun loads sprint intervals for a run keyed by player id.
func (db *DB) SprintsForRun(runID string) (map[int64][]intensity.SprintInterval, error) {
	rows, err := db.Query(`
		SELECT player_id, period_id, start_timestamp, duration, distance, peak_speed_kmh
		FROM sprints WHERE run_id = ?
		ORDER BY player_id, period_id, start_timestamp`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sprints: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]intensity.SprintInterval)
	for rows.Next() {
		var playerID int64
		var s intensity.SprintInterval
		if err := rows.Scan(&playerID, &s.PeriodID, &s.StartTimestamp, &s.Duration, &s.Distance, &s.PeakSpeedKmh); err != nil {
			return nil, fmt.Errorf("failed to scan sprint row: %w", err)
		}
		out[playerID] = append(out[playerID], s)
	}
	return out, rows.Err()
}

// PossessionForRun loads the possession summary for a run, highest share first.
func (db *DB) PossessionForRun(runID string) ([]possession.PlayerShare, error) {
	rows, err := db.Query(`
		SELECT player_id, frames, share FROM possession_shares
		WHERE run_id = ? ORDER BY frames DESC, player_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query possession shares: %w", err)
	}
	defer rows.Close()

	var shares []possession.PlayerShare
	for rows.Next() {
		var s possession.PlayerShare
		if err := rows.Scan(&s.PlayerID, &s.Frames, &s.Share); err != nil {
			return nil, fmt.Errorf("failed to scan possession share row: %w", err)
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Session summarizes one pipeline run.
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	Frames    int        `json:"frames"`
}

// Reading is one sector's value within a recorded frame. Distance is nil
// when the sector held no obstacle.
type Reading struct {
	Sector   string
	Distance *float64
}

// Command is one emitted belt command within a recorded frame.
type Command struct {
	Motor     int
	Intensity int
}

// FrameRecord captures everything recorded for a single frame.
type FrameRecord struct {
	Seq           int64
	ObstacleCount int
	Readings      []Reading
	Commands      []Command
}

// BeginSession inserts a new session row and returns its id.
func (s *Store) BeginSession() (string, error) {
	id := uuid.NewString()
	if _, err := s.db.Exec(`INSERT INTO sessions (id) VALUES (?)`, id); err != nil {
		return "", err
	}
	return id, nil
}

// EndSession stamps the session's stop time.
func (s *Store) EndSession(id string) error {
	_, err := s.db.Exec(`UPDATE sessions SET stopped_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// RecordFrame writes one frame with its readings and commands in a single
// transaction.
func (s *Store) RecordFrame(sessionID string, rec FrameRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO frames (session_id, seq, obstacle_count) VALUES (?, ?, ?)`,
		sessionID, rec.Seq, rec.ObstacleCount,
	)
	if err != nil {
		return err
	}
	frameID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, r := range rec.Readings {
		if _, err := tx.Exec(
			`INSERT INTO sector_readings (frame_id, sector, distance) VALUES (?, ?, ?)`,
			frameID, r.Sector, r.Distance,
		); err != nil {
			return err
		}
	}
	for _, c := range rec.Commands {
		if _, err := tx.Exec(
			`INSERT INTO belt_commands (frame_id, motor, intensity) VALUES (?, ?, ?)`,
			frameID, c.Motor, c.Intensity,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Sessions lists recorded sessions, most recent first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.started_at, s.stopped_at, COUNT(f.id)
		FROM sessions s
		LEFT JOIN frames f ON f.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var stopped sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &stopped, &sess.Frames); err != nil {
			return nil, err
		}
		if stopped.Valid {
			t := stopped.Time
			sess.StoppedAt = &t
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// FrameReadings returns the recorded readings for one frame sequence number
// within a session.
func (s *Store) FrameReadings(sessionID string, seq int64) ([]Reading, error) {
	rows, err := s.db.Query(`
		SELECT r.sector, r.distance
		FROM sector_readings r
		JOIN frames f ON f.id = r.frame_id
		WHERE f.session_id = ? AND f.seq = ?
		ORDER BY r.sector`, sessionID, seq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var r Reading
		var dist sql.NullFloat64
		if err := rows.Scan(&r.Sector, &dist); err != nil {
			return nil, err
		}
		if dist.Valid {
			v := dist.Float64
			r.Distance = &v
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

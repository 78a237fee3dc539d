package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per pipeline run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			stopped_at DATETIME
		)`,

		// Frames table - one row per processed frame
		`CREATE TABLE IF NOT EXISTS frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			obstacle_count INTEGER NOT NULL,
			captured_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sector readings table - closest distance per sector per frame,
		// NULL distance means the sector was empty
		`CREATE TABLE IF NOT EXISTS sector_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			frame_id INTEGER NOT NULL REFERENCES frames(id) ON DELETE CASCADE,
			sector TEXT NOT NULL,
			distance REAL
		)`,

		// Belt commands table - commands actually emitted for a frame
		`CREATE TABLE IF NOT EXISTS belt_commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			frame_id INTEGER NOT NULL REFERENCES frames(id) ON DELETE CASCADE,
			motor INTEGER NOT NULL,
			intensity INTEGER NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_frames_session_id ON frames(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sector_readings_frame_id ON sector_readings(frame_id)`,
		`CREATE INDEX IF NOT EXISTS idx_belt_commands_frame_id ON belt_commands(frame_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

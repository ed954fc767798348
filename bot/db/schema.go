package db

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the necessary database tables if they don't exist
func InitSchema(db *sql.DB) error {
	log.Info("Initializing grievance database schema...")

	grievancesTableSQL := `
	CREATE TABLE IF NOT EXISTS grievances(
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		username VARCHAR(255),
		grievance TEXT NOT NULL,
		issue VARCHAR(255) NOT NULL,
		location VARCHAR(255),
		photo LONGBLOB,
		additional_data TEXT,
		ai_reply TEXT,
		sentiment_score FLOAT,
		keyword_score FLOAT,
		frequency_score FLOAT,
		priority_score FLOAT,
		status VARCHAR(50) DEFAULT 'Pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX user_id_index (user_id),
		INDEX priority_index (priority_score)
	)`

	if _, err := db.Exec(grievancesTableSQL); err != nil {
		return fmt.Errorf("failed to create grievances table: %w", err)
	}
	log.Info("grievances table created/verified")

	// notified_to_dept was added after the first deployments, so older
	// tables need the column bolted on.
	rows, err := db.Query(`SHOW COLUMNS FROM grievances LIKE 'notified_to_dept'`)
	if err != nil {
		return fmt.Errorf("failed to inspect grievances columns: %w", err)
	}
	hasColumn := rows.Next()
	if err := rows.Close(); err != nil {
		return fmt.Errorf("failed to close column inspection: %w", err)
	}

	if !hasColumn {
		if _, err := db.Exec(`ALTER TABLE grievances ADD COLUMN notified_to_dept BOOLEAN DEFAULT FALSE`); err != nil {
			return fmt.Errorf("failed to add notified_to_dept column: %w", err)
		}
		log.Info("notified_to_dept column added")
	}

	log.Info("Grievance database schema initialization completed")
	return nil
}

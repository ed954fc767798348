// Package db persists grievances in MySQL and serves the dashboard's
// read queries.
package db

import (
	"database/sql"
	"fmt"

	"grievbot/common"

	sq "github.com/Masterminds/squirrel"
	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Grievance is one filed report. Photo is only populated by GetByID;
// list queries carry HasPhoto instead to keep blobs out of result sets.
type Grievance struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	Username       string  `json:"username"`
	Grievance      string  `json:"grievance"`
	Issue          string  `json:"issue"`
	Location       string  `json:"location"`
	Photo          []byte  `json:"-"`
	HasPhoto       bool    `json:"has_photo"`
	AdditionalData string  `json:"additional_data"`
	AIReply        string  `json:"ai_reply"`
	SentimentScore float64 `json:"sentiment_score"`
	KeywordScore   float64 `json:"keyword_score"`
	FrequencyScore float64 `json:"frequency_score"`
	PriorityScore  float64 `json:"priority_score"`
	Status         string  `json:"status"`
	NotifiedToDept bool    `json:"notified_to_dept"`
	CreatedAt      string  `json:"created_at"`
}

// Filter narrows ListAll. Zero values mean "any".
type Filter struct {
	Issue    string
	Status   string
	Location string
	Limit    uint64
}

// SummaryStats aggregates the dashboard's headline numbers.
type SummaryStats struct {
	Total       int64   `json:"total"`
	Pending     int64   `json:"pending"`
	Completed   int64   `json:"completed"`
	Notified    int64   `json:"notified"`
	AvgPriority float64 `json:"avg_priority"`
}

// IssueCount is one row of the per-category breakdown.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int64  `json:"count"`
}

// SaveGrievance inserts a completed report and returns its id.
func SaveGrievance(db *sql.DB, g *Grievance) (int64, error) {
	result, err := db.Exec(`INSERT INTO grievances
		(user_id, username, grievance, issue, location, photo, additional_data, ai_reply,
		 sentiment_score, keyword_score, frequency_score, priority_score, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Username, g.Grievance, g.Issue, g.Location, g.Photo, g.AdditionalData, g.AIReply,
		g.SentimentScore, g.KeywordScore, g.FrequencyScore, g.PriorityScore, StatusPending)
	common.LogResult("saveGrievance", result, err, true)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		log.Errorf("Failed to read id of saved grievance: %v", err)
		return 0, err
	}
	return id, nil
}

// GetByID fetches one grievance including its photo blob.
func GetByID(db *sql.DB, id int64) (*Grievance, error) {
	row := db.QueryRow(`SELECT id, user_id, username, grievance, issue, location, photo,
		additional_data, ai_reply, sentiment_score, keyword_score, frequency_score,
		priority_score, status, notified_to_dept, created_at
		FROM grievances WHERE id = ?`, id)

	var g Grievance
	var username, location, additionalData, aiReply, createdAt sql.NullString
	var photo []byte
	err := row.Scan(&g.ID, &g.UserID, &username, &g.Grievance, &g.Issue, &location, &photo,
		&additionalData, &aiReply, &g.SentimentScore, &g.KeywordScore, &g.FrequencyScore,
		&g.PriorityScore, &g.Status, &g.NotifiedToDept, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grievance %d not found", id)
	}
	if err != nil {
		log.Errorf("Error fetching grievance %d: %v", id, err)
		return nil, err
	}

	g.Username = username.String
	g.Location = location.String
	g.AdditionalData = additionalData.String
	g.AIReply = aiReply.String
	g.CreatedAt = createdAt.String
	g.Photo = photo
	g.HasPhoto = len(photo) > 0
	return &g, nil
}

const listColumns = `id, user_id, username, grievance, issue, location, photo IS NOT NULL,
	additional_data, ai_reply, sentiment_score, keyword_score, frequency_score,
	priority_score, status, notified_to_dept, created_at`

func scanGrievances(rows *sql.Rows) ([]Grievance, error) {
	defer rows.Close()

	list := []Grievance{}
	for rows.Next() {
		var g Grievance
		var username, location, additionalData, aiReply, createdAt sql.NullString
		if err := rows.Scan(&g.ID, &g.UserID, &username, &g.Grievance, &g.Issue, &location,
			&g.HasPhoto, &additionalData, &aiReply, &g.SentimentScore, &g.KeywordScore,
			&g.FrequencyScore, &g.PriorityScore, &g.Status, &g.NotifiedToDept, &createdAt); err != nil {
			log.Errorf("Error scanning grievance row: %v", err)
			return nil, err
		}
		g.Username = username.String
		g.Location = location.String
		g.AdditionalData = additionalData.String
		g.AIReply = aiReply.String
		g.CreatedAt = createdAt.String
		list = append(list, g)
	}
	return list, rows.Err()
}

// ListByUser returns a user's reports, newest first.
func ListByUser(db *sql.DB, userID int64, limit uint64) ([]Grievance, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM grievances
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT %d`, listColumns, limit), userID)
	if err != nil {
		log.Errorf("Error listing grievances for user %d: %v", userID, err)
		return nil, err
	}
	return scanGrievances(rows)
}

// ListAll returns grievances matching the filter, highest priority first.
func ListAll(db *sql.DB, f Filter) ([]Grievance, error) {
	q := sq.Select(listColumns).
		From("grievances").
		OrderBy("priority_score DESC", "created_at DESC")
	if f.Issue != "" {
		q = q.Where(sq.Eq{"issue": f.Issue})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.Location != "" {
		q = q.Where(sq.Like{"location": "%" + f.Location + "%"})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grievance query: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Errorf("Error listing grievances: %v", err)
		return nil, err
	}
	return scanGrievances(rows)
}

// TopByPriority returns the highest-scored pending grievances.
func TopByPriority(db *sql.DB, limit uint64) ([]Grievance, error) {
	return ListAll(db, Filter{Status: StatusPending, Limit: limit})
}

// ListSince returns all grievances filed within the last N days, for the
// periodic report export.
func ListSince(db *sql.DB, days int) ([]Grievance, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM grievances
		WHERE created_at >= NOW() - INTERVAL ? DAY
		ORDER BY priority_score DESC, created_at DESC`, listColumns), days)
	if err != nil {
		log.Errorf("Error listing grievances since %d days: %v", days, err)
		return nil, err
	}
	return scanGrievances(rows)
}

// UpdateStatus flips a grievance between Pending and Completed.
func UpdateStatus(db *sql.DB, id int64, status string) error {
	if status != StatusPending && status != StatusCompleted {
		return fmt.Errorf("invalid status %q", status)
	}
	result, err := db.Exec(`UPDATE grievances SET status = ? WHERE id = ?`, status, id)
	common.LogResult("updateStatus", result, err, true)
	return err
}

// MarkNotified records that the responsible department was notified.
func MarkNotified(db *sql.DB, id int64) error {
	result, err := db.Exec(`UPDATE grievances SET notified_to_dept = TRUE WHERE id = ?`, id)
	common.LogResult("markNotified", result, err, true)
	return err
}

// Summary computes the dashboard headline stats in one query.
func Summary(db *sql.DB) (*SummaryStats, error) {
	row := db.QueryRow(`SELECT COUNT(*),
		COALESCE(SUM(status = 'Pending'), 0),
		COALESCE(SUM(status = 'Completed'), 0),
		COALESCE(SUM(notified_to_dept), 0),
		COALESCE(AVG(priority_score), 0)
		FROM grievances`)

	var s SummaryStats
	if err := row.Scan(&s.Total, &s.Pending, &s.Completed, &s.Notified, &s.AvgPriority); err != nil {
		log.Errorf("Error computing grievance summary: %v", err)
		return nil, err
	}
	return &s, nil
}

// CountsByIssue breaks the backlog down per category, busiest first.
func CountsByIssue(db *sql.DB) ([]IssueCount, error) {
	rows, err := db.Query(`SELECT issue, COUNT(*) AS cnt FROM grievances
		GROUP BY issue ORDER BY cnt DESC, issue ASC`)
	if err != nil {
		log.Errorf("Error counting grievances by issue: %v", err)
		return nil, err
	}
	defer rows.Close()

	counts := []IssueCount{}
	for rows.Next() {
		var c IssueCount
		if err := rows.Scan(&c.Issue, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

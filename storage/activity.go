package storage

import (
	"fmt"
	"time"
)

// Activity is one popover event: a summon, a dismissal, a dictionary
// switch or a shortcut change.
type Activity struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Channel   string    `json:"channel"`
	Shortcut  string    `json:"shortcut,omitempty"`
}

// DailyActivity represents activity counts for a single day
type DailyActivity struct {
	Date       string `json:"date"`
	Total      int    `json:"total"`
	Summons    int    `json:"summons"`
	Dismissals int    `json:"dismissals"`
}

// TopicCount counts events per topic and channel.
type TopicCount struct {
	Topic   string `json:"topic"`
	Channel string `json:"channel"`
	Count   int    `json:"count"`
}

// SaveActivity records an event
func (db *DB) SaveActivity(a *Activity) error {
	result, err := db.conn.Exec(
		"INSERT INTO activity (topic, channel, shortcut) VALUES (?, ?, ?)",
		a.Topic, a.Channel, a.Shortcut,
	)
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	a.ID = id
	return nil
}

// GetActivity retrieves events with pagination, newest first
func (db *DB) GetActivity(limit, offset int) ([]Activity, error) {
	query := `
		SELECT id, timestamp, topic, channel, shortcut
		FROM activity
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var events []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.Topic, &a.Channel, &a.Shortcut); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		events = append(events, a)
	}

	return events, rows.Err()
}

// GetDailyActivity retrieves activity grouped by date for the last N days
func (db *DB) GetDailyActivity(days int) ([]DailyActivity, error) {
	query := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total,
			SUM(CASE WHEN topic = 'summon' THEN 1 ELSE 0 END) as summons,
			SUM(CASE WHEN topic = 'dismiss' THEN 1 ELSE 0 END) as dismissals
		FROM activity
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily activity: %w", err)
	}
	defer rows.Close()

	var stats []DailyActivity
	for rows.Next() {
		var s DailyActivity
		if err := rows.Scan(&s.Date, &s.Total, &s.Summons, &s.Dismissals); err != nil {
			return nil, fmt.Errorf("failed to scan daily activity: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetTopicCounts counts events per topic and channel for the last N days
func (db *DB) GetTopicCounts(days int) ([]TopicCount, error) {
	query := `
		SELECT topic, channel, COUNT(*) as count
		FROM activity
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY topic, channel
		ORDER BY count DESC, topic, channel
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic counts: %w", err)
	}
	defer rows.Close()

	var counts []TopicCount
	for rows.Next() {
		var c TopicCount
		if err := rows.Scan(&c.Topic, &c.Channel, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan topic counts: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// GetActivityCount returns the total number of recorded events
func (db *DB) GetActivityCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM activity").Scan(&count)
	return count, err
}

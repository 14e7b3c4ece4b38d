// Package store persists journalist records in SQLite, keyed by outlet.
// Topics and keywords live in child tables with cascade delete rather than
// being packed into delimited strings, so values containing the delimiter
// can never corrupt a read.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/newstrack/newstrack/journalist"
)

// Store manages the journalists database.
type Store struct {
	db *sql.DB
}

// OutletInfo summarizes one outlet's stored data.
type OutletInfo struct {
	Outlet      string    `json:"outlet"`
	Count       int       `json:"count"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Stats holds whole-database counters.
type Stats struct {
	TotalJournalists int `json:"totalJournalists"`
	TotalOutlets     int `json:"totalOutlets"`
	TotalTopics      int `json:"totalTopics"`
	TotalKeywords    int `json:"totalKeywords"`
}

// New opens (or creates) the database at the given path. Use ":memory:"
// for an ephemeral store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Cascade deletes on the child tables depend on this pragma.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS journalists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		outlet TEXT NOT NULL,
		name TEXT NOT NULL,
		profile_url TEXT,
		section TEXT,
		beat TEXT,
		article_count INTEGER DEFAULT 0,
		count_source TEXT NOT NULL DEFAULT 'estimated',
		latest_article TEXT,
		date TEXT,
		contact TEXT,
		email TEXT,
		twitter TEXT,
		contact_source TEXT,
		source TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		UNIQUE(outlet, name)
	);

	CREATE TABLE IF NOT EXISTS topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		journalist_id INTEGER NOT NULL,
		topic TEXT NOT NULL,
		FOREIGN KEY(journalist_id) REFERENCES journalists(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		journalist_id INTEGER NOT NULL,
		keyword TEXT NOT NULL,
		FOREIGN KEY(journalist_id) REFERENCES journalists(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_journalists_outlet ON journalists(outlet);
	CREATE INDEX IF NOT EXISTS idx_journalists_name ON journalists(name);
	CREATE INDEX IF NOT EXISTS idx_topics_journalist ON topics(journalist_id);
	CREATE INDEX IF NOT EXISTS idx_keywords_journalist ON keywords(journalist_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored records for an outlet in a single transaction:
// readers never observe the outlet half-cleared.
func (s *Store) Save(outlet string, records []journalist.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM journalists WHERE outlet = ?", outlet); err != nil {
		return fmt.Errorf("failed to clear outlet %s: %w", outlet, err)
	}

	insertJournalist, err := tx.Prepare(`
		INSERT INTO journalists
		(outlet, name, profile_url, section, beat, article_count, count_source,
		 latest_article, date, contact, email, twitter, contact_source, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insertJournalist.Close()

	insertTopic, err := tx.Prepare("INSERT INTO topics (journalist_id, topic) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare topic insert: %w", err)
	}
	defer insertTopic.Close()

	insertKeyword, err := tx.Prepare("INSERT INTO keywords (journalist_id, keyword) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare keyword insert: %w", err)
	}
	defer insertKeyword.Close()

	for _, rec := range records {
		result, err := insertJournalist.Exec(
			outlet, rec.Name, nullable(rec.ProfileURL), rec.Section, rec.Beat,
			rec.ArticleCount, string(rec.CountSource), rec.LatestArticle,
			rec.Date, nullable(rec.Contact), nullable(rec.Email),
			nullable(rec.Twitter), nullable(string(rec.ContactSource)), rec.Source,
		)
		if err != nil {
			return fmt.Errorf("failed to insert journalist %q: %w", rec.Name, err)
		}

		journalistID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get insert id: %w", err)
		}

		for _, topic := range rec.Topics {
			if topic == "" {
				continue
			}
			if _, err := insertTopic.Exec(journalistID, topic); err != nil {
				return fmt.Errorf("failed to insert topic %q: %w", topic, err)
			}
		}
		for _, keyword := range rec.Keywords {
			if keyword == "" {
				continue
			}
			if _, err := insertKeyword.Exec(journalistID, keyword); err != nil {
				return fmt.Errorf("failed to insert keyword %q: %w", keyword, err)
			}
		}
	}

	return tx.Commit()
}

// GetByOutlet returns the stored records for an outlet, ordered by article
// count descending. IDs are renumbered positionally to match the batch
// contract.
func (s *Store) GetByOutlet(outlet string) ([]journalist.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, name, profile_url, section, beat, article_count,
		       count_source, latest_article, date, contact, email, twitter,
		       contact_source, source
		FROM journalists
		WHERE outlet = ?
		ORDER BY article_count DESC, id ASC
	`, outlet)
	if err != nil {
		return nil, fmt.Errorf("failed to query journalists: %w", err)
	}
	defer rows.Close()

	var records []journalist.Record
	var rowIDs []int64
	for rows.Next() {
		var rec journalist.Record
		var rowID int64
		var profileURL, contact, email, twitter, contactSource sql.NullString
		var countSource string

		err := rows.Scan(&rowID, &rec.Name, &profileURL, &rec.Section,
			&rec.Beat, &rec.ArticleCount, &countSource, &rec.LatestArticle,
			&rec.Date, &contact, &email, &twitter, &contactSource, &rec.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journalist: %w", err)
		}

		rec.ProfileURL = profileURL.String
		rec.Contact = contact.String
		rec.Email = email.String
		rec.Twitter = twitter.String
		rec.CountSource = journalist.Provenance(countSource)
		if contactSource.Valid {
			rec.ContactSource = journalist.Provenance(contactSource.String)
		}
		rec.ID = len(records) + 1

		records = append(records, rec)
		rowIDs = append(rowIDs, rowID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journalists: %w", err)
	}

	for i, rowID := range rowIDs {
		topics, err := s.childValues("topics", "topic", rowID)
		if err != nil {
			return nil, err
		}
		keywords, err := s.childValues("keywords", "keyword", rowID)
		if err != nil {
			return nil, err
		}
		records[i].Topics = topics
		records[i].Keywords = keywords
	}

	return records, nil
}

// childValues reads one journalist's topic or keyword set.
func (s *Store) childValues(table, column string, journalistID int64) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE journalist_id = ? ORDER BY id", column, table)
	rows, err := s.db.Query(query, journalistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ListOutlets returns every stored outlet with its record count and most
// recent update time, newest first.
func (s *Store) ListOutlets() ([]OutletInfo, error) {
	rows, err := s.db.Query(`
		SELECT outlet, COUNT(*) as count, MAX(created_at) as last_updated
		FROM journalists
		GROUP BY outlet
		ORDER BY last_updated DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outlets: %w", err)
	}
	defer rows.Close()

	var outlets []OutletInfo
	for rows.Next() {
		var info OutletInfo
		var lastUpdated string
		if err := rows.Scan(&info.Outlet, &info.Count, &lastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan outlet: %w", err)
		}
		info.LastUpdated, _ = time.Parse("2006-01-02 15:04:05", lastUpdated)
		outlets = append(outlets, info)
	}
	return outlets, rows.Err()
}

// DeleteByOutlet removes all records for an outlet. Returns the number of
// journalists deleted; child rows cascade.
func (s *Store) DeleteByOutlet(outlet string) (int, error) {
	result, err := s.db.Exec("DELETE FROM journalists WHERE outlet = ?", outlet)
	if err != nil {
		return 0, fmt.Errorf("failed to delete outlet %s: %w", outlet, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

// ClearAll wipes the entire database.
func (s *Store) ClearAll() error {
	if _, err := s.db.Exec("DELETE FROM journalists"); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	return nil
}

// GetStats returns whole-database counters.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM journalists", &stats.TotalJournalists},
		{"SELECT COUNT(DISTINCT outlet) FROM journalists", &stats.TotalOutlets},
		{"SELECT COUNT(*) FROM topics", &stats.TotalTopics},
		{"SELECT COUNT(*) FROM keywords", &stats.TotalKeywords},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("failed to gather stats: %w", err)
		}
	}
	return stats, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Sample is one labelled landmark capture kept for calibration.
type Sample struct {
	ID        int64           `json:"id"`
	Label     string          `json:"label"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// SampleRepository provides CRUD operations for calibration samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create inserts the samples in a single transaction and sets their IDs.
func (r *SampleRepository) Create(samples []*Sample) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO calibration_samples (label, data, created_at) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, s := range samples {
		res, err := stmt.Exec(s.Label, string(s.Data), now)
		if err != nil {
			return err
		}
		if s.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		s.CreatedAt = now
	}

	return tx.Commit()
}

// List returns every sample, oldest first.
func (r *SampleRepository) List() ([]*Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, label, data, created_at
		 FROM calibration_samples
		 ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		s := &Sample{}
		var data string
		if err := rows.Scan(&s.ID, &s.Label, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Data = json.RawMessage(data)
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// Delete removes one sample.
func (r *SampleRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM calibration_samples WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every sample and returns how many were removed.
func (r *SampleRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM calibration_samples`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

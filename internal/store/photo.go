package store

import (
	"database/sql"
	"errors"
	"time"
)

// Photo is one photo panel source. Either URL or Data is set.
type Photo struct {
	Seq         int64     `json:"seq"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// PhotoRepository provides append and read access to photos.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns the photo repository for this store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// Create appends a photo and sets its Seq and CreatedAt.
func (r *PhotoRepository) Create(p *Photo) error {
	p.CreatedAt = time.Now()

	res, err := r.db.Exec(
		`INSERT INTO photos (id, name, url, content_type, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.URL, p.ContentType, p.Data, p.CreatedAt,
	)
	if err != nil {
		return err
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.Seq = seq
	return nil
}

// GetByID retrieves a photo including its data.
func (r *PhotoRepository) GetByID(id string) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(
		`SELECT seq, id, name, url, content_type, data, created_at
		 FROM photos WHERE id = ?`,
		id,
	).Scan(&p.Seq, &p.ID, &p.Name, &p.URL, &p.ContentType, &p.Data, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns every photo in insertion order, without data.
func (r *PhotoRepository) List() ([]*Photo, error) {
	rows, err := r.db.Query(
		`SELECT seq, id, name, url, content_type, created_at
		 FROM photos ORDER BY seq`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p := &Photo{}
		if err := rows.Scan(&p.Seq, &p.ID, &p.Name, &p.URL, &p.ContentType, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

// Count returns the number of photos.
func (r *PhotoRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&n)
	return n, err
}

package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/sneakerbase/internal/model"
)

var (
	ErrRatingNotFound = errors.New("rating not found")
)

type RatingRepository interface {
	Create(rating *model.Rating) error
	ByID(id string) (*model.Rating, error)
	BySneaker(sneakerID string) ([]*model.Rating, error)
	ByAuthor(authorID string) ([]*model.Rating, error)
	Stats(sneakerIDs []string) (map[string]model.RatingStats, error)
	Delete(id string) error
}

type ratingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *model.Rating) error {
	query := `INSERT INTO ratings (id, sneaker_id, author_id, comment, rating_design, rating_comfort, rating_quality, rating_value, sizing, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		rating.ID,
		rating.SneakerID,
		rating.AuthorID,
		rating.Comment,
		rating.RatingDesign,
		rating.RatingComfort,
		rating.RatingQuality,
		rating.RatingValue,
		rating.Sizing,
		rating.CreatedAt.UTC(),
	)

	return err
}

func (r *ratingRepository) ByID(id string) (*model.Rating, error) {
	rating := &model.Rating{}
	query := `SELECT * FROM ratings WHERE id = $1`

	err := r.db.Get(rating, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrRatingNotFound
	}

	return rating, err
}

func (r *ratingRepository) BySneaker(sneakerID string) ([]*model.Rating, error) {
	ratings := []*model.Rating{}
	query := `SELECT * FROM ratings WHERE sneaker_id = $1 ORDER BY created_at DESC, id DESC`

	err := r.db.Select(&ratings, query, sneakerID)
	if err != nil {
		return nil, err
	}

	return ratings, nil
}

func (r *ratingRepository) ByAuthor(authorID string) ([]*model.Rating, error) {
	ratings := []*model.Rating{}
	query := `SELECT * FROM ratings WHERE author_id = $1 ORDER BY created_at DESC, id DESC`

	err := r.db.Select(&ratings, query, authorID)
	if err != nil {
		return nil, err
	}

	return ratings, nil
}

// Stats aggregates ratings per sneaker at read time. Sneakers without
// ratings are absent from the result.
func (r *ratingRepository) Stats(sneakerIDs []string) (map[string]model.RatingStats, error) {
	stats := make(map[string]model.RatingStats, len(sneakerIDs))
	if len(sneakerIDs) == 0 {
		return stats, nil
	}

	query, args, err := sqlx.In(`SELECT sneaker_id,
	          CAST(AVG((rating_design + rating_comfort + rating_quality + rating_value) / 4.0) AS DOUBLE PRECISION) AS avg_rating,
	          COUNT(*) AS ratings_count
	          FROM ratings WHERE sneaker_id IN (?) GROUP BY sneaker_id`, sneakerIDs)
	if err != nil {
		return nil, err
	}

	var rows []model.RatingStats
	err = r.db.Select(&rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats[row.SneakerID] = row
	}

	return stats, nil
}

func (r *ratingRepository) Delete(id string) error {
	query := `DELETE FROM ratings WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRatingNotFound
	}

	return nil
}

package model

import (
	"time"
)

const (
	MinScore  = 1
	MaxScore  = 5
	MinSizing = -2
	MaxSizing = 2
)

type Rating struct {
	ID            string    `db:"id" json:"id"`
	SneakerID     string    `db:"sneaker_id" json:"sneakerId"`
	AuthorID      string    `db:"author_id" json:"authorId"`
	Comment       string    `db:"comment" json:"comment"`
	RatingDesign  int       `db:"rating_design" json:"ratingDesign"`
	RatingComfort int       `db:"rating_comfort" json:"ratingComfort"`
	RatingQuality int       `db:"rating_quality" json:"ratingQuality"`
	RatingValue   int       `db:"rating_value" json:"ratingValue"`
	Sizing        int       `db:"sizing" json:"sizing"` // Negative runs small, positive runs large
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Score is the mean of the four quality dimensions. Sizing is not part of it.
func (r *Rating) Score() float64 {
	return float64(r.RatingDesign+r.RatingComfort+r.RatingQuality+r.RatingValue) / 4
}

type RatingStats struct {
	SneakerID    string  `db:"sneaker_id" json:"-"`
	AvgRating    float64 `db:"avg_rating" json:"avgRating"`
	RatingsCount int     `db:"ratings_count" json:"ratingsCount"`
}

// Summarize averages the per-rating scores. No ratings yields zero stats.
func Summarize(ratings []*Rating) RatingStats {
	if len(ratings) == 0 {
		return RatingStats{}
	}

	var sum float64
	for _, r := range ratings {
		sum += r.Score()
	}

	return RatingStats{
		SneakerID:    ratings[0].SneakerID,
		AvgRating:    sum / float64(len(ratings)),
		RatingsCount: len(ratings),
	}
}

package model

import (
	"time"
)

// UnknownBrand is shown for sneakers listed without a brand.
const UnknownBrand = "Unbekannt"

type Sneaker struct {
	ID             string    `db:"id" json:"id"`
	OwnerSubject   string    `db:"owner_subject" json:"ownerSubject"`
	Name           string    `db:"name" json:"name"`
	Brand          string    `db:"brand" json:"brand"`
	Description    string    `db:"description" json:"description"`
	ImageStorageID string    `db:"image_storage_id" json:"imageStorageId"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// SneakerListing is a sneaker as presented in catalog listings.
type SneakerListing struct {
	Sneaker
	RatingStats

	// Computed fields (not in database)
	ImageURL string `json:"imageUrl"`
}

// DisplayBrand applies the catalog fallback for a missing brand.
func (s *Sneaker) DisplayBrand() string {
	if s.Brand == "" {
		return UnknownBrand
	}
	return s.Brand
}

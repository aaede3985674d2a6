package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/sneakerbase/internal/model"
)

var (
	ErrSneakerNotFound = errors.New("sneaker not found")
	ErrImageInUse      = errors.New("image is already used by another sneaker")
)

type SneakerRepository interface {
	Create(sneaker *model.Sneaker) error
	ByID(id string) (*model.Sneaker, error)
	All() ([]*model.Sneaker, error)
	ByOwner(ownerSubject string) ([]*model.Sneaker, error)
	ImageInUse(storageID string) (bool, error)
}

type sneakerRepository struct {
	db *sqlx.DB
}

func NewSneakerRepository(db *sqlx.DB) SneakerRepository {
	return &sneakerRepository{db: db}
}

func (r *sneakerRepository) Create(sneaker *model.Sneaker) error {
	query := `INSERT INTO sneakers (id, owner_subject, name, brand, description, image_storage_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		sneaker.ID,
		sneaker.OwnerSubject,
		sneaker.Name,
		sneaker.Brand,
		sneaker.Description,
		sneaker.ImageStorageID,
		sneaker.CreatedAt.UTC(),
	)
	if err != nil && isUniqueViolation(err) {
		return ErrImageInUse
	}

	return err
}

func (r *sneakerRepository) ByID(id string) (*model.Sneaker, error) {
	sneaker := &model.Sneaker{}
	query := `SELECT * FROM sneakers WHERE id = $1`

	err := r.db.Get(sneaker, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrSneakerNotFound
	}

	return sneaker, err
}

func (r *sneakerRepository) All() ([]*model.Sneaker, error) {
	sneakers := []*model.Sneaker{}
	query := `SELECT * FROM sneakers ORDER BY created_at DESC, id DESC`

	err := r.db.Select(&sneakers, query)
	if err != nil {
		return nil, err
	}

	return sneakers, nil
}

func (r *sneakerRepository) ByOwner(ownerSubject string) ([]*model.Sneaker, error) {
	sneakers := []*model.Sneaker{}
	query := `SELECT * FROM sneakers WHERE owner_subject = $1 ORDER BY created_at DESC, id DESC`

	err := r.db.Select(&sneakers, query, ownerSubject)
	if err != nil {
		return nil, err
	}

	return sneakers, nil
}

// ImageInUse reports whether a sneaker already references storageID.
func (r *sneakerRepository) ImageInUse(storageID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sneakers WHERE image_storage_id = $1`

	err := r.db.Get(&count, query, storageID)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/sneakerbase/internal/events"
	"github.com/templui/sneakerbase/internal/model"
	"github.com/templui/sneakerbase/internal/repository"
	"github.com/templui/sneakerbase/internal/storage"
	"github.com/templui/sneakerbase/internal/validation"
)

var ErrImageUploadFailed = errors.New("image upload failed")

type CreateSneakerInput struct {
	Name           string `json:"name"`
	Brand          string `json:"brand"`
	Description    string `json:"description"`
	ImageStorageID string `json:"imageStorageId"`
}

type SneakerService struct {
	sneakerRepo    repository.SneakerRepository
	ratingRepo     repository.RatingRepository
	storage        storage.Storage
	events         events.Publisher
	imageURLExpiry time.Duration
	constraints    validation.FileConstraints
}

func NewSneakerService(sneakerRepo repository.SneakerRepository, ratingRepo repository.RatingRepository, storage storage.Storage, publisher events.Publisher, imageURLExpiry time.Duration, maxImageBytes int64) *SneakerService {
	return &SneakerService{
		sneakerRepo:    sneakerRepo,
		ratingRepo:     ratingRepo,
		storage:        storage,
		events:         publisher,
		imageURLExpiry: imageURLExpiry,
		constraints:    validation.ImageConstraints.WithMaxSize(maxImageBytes),
	}
}

// Create registers a sneaker owned by subject. The image reference must
// resolve in storage, otherwise nothing is persisted.
func (s *SneakerService) Create(ctx context.Context, subject string, input CreateSneakerInput) (string, error) {
	if subject == "" {
		return "", ErrUnauthenticated
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Brand = strings.TrimSpace(input.Brand)
	input.Description = strings.TrimSpace(input.Description)
	input.ImageStorageID = strings.TrimSpace(input.ImageStorageID)

	err := validation.Struct(validation.SneakerInput{
		Name:           input.Name,
		Brand:          input.Brand,
		Description:    input.Description,
		ImageStorageID: input.ImageStorageID,
	})
	if err != nil {
		return "", err
	}

	_, err = s.resolveImage(ctx, input.ImageStorageID)
	if err != nil {
		slog.Warn("sneaker image did not resolve", "error", err, "storage_id", input.ImageStorageID, "subject", subject)
		return "", err
	}

	sneaker := &model.Sneaker{
		ID:             newID(),
		OwnerSubject:   subject,
		Name:           input.Name,
		Brand:          input.Brand,
		Description:    input.Description,
		ImageStorageID: input.ImageStorageID,
		CreatedAt:      time.Now().UTC(),
	}

	err = s.sneakerRepo.Create(sneaker)
	if errors.Is(err, repository.ErrImageInUse) {
		slog.Warn("sneaker image already attached", "storage_id", sneaker.ImageStorageID, "subject", subject)
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("failed to create sneaker: %w", err)
	}

	s.events.Publish(events.Event{Type: events.SneakerCreated, ID: sneaker.ID, SneakerID: sneaker.ID, At: sneaker.CreatedAt})

	slog.Info("sneaker created", "sneaker_id", sneaker.ID, "subject", subject)
	return sneaker.ID, nil
}

// ListAll returns every sneaker, newest first, with rating stats.
func (s *SneakerService) ListAll(ctx context.Context) ([]*model.SneakerListing, error) {
	sneakers, err := s.sneakerRepo.All()
	if err != nil {
		return nil, fmt.Errorf("failed to list sneakers: %w", err)
	}

	return s.annotate(ctx, sneakers)
}

// ListMine returns the caller's sneakers. Unauthenticated callers get an empty list.
func (s *SneakerService) ListMine(ctx context.Context, subject string) ([]*model.SneakerListing, error) {
	if subject == "" {
		return []*model.SneakerListing{}, nil
	}

	sneakers, err := s.sneakerRepo.ByOwner(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list sneakers: %w", err)
	}

	return s.annotate(ctx, sneakers)
}

// ByID returns one sneaker with stats computed from its ratings.
func (s *SneakerService) ByID(ctx context.Context, id string) (*model.SneakerListing, error) {
	sneaker, err := s.sneakerRepo.ByID(id)
	if err != nil {
		return nil, err
	}

	ratings, err := s.ratingRepo.BySneaker(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}

	listing := &model.SneakerListing{Sneaker: *sneaker, RatingStats: model.Summarize(ratings)}
	listing.RatingStats.SneakerID = sneaker.ID
	listing.Brand = sneaker.DisplayBrand()
	listing.ImageURL = s.imageURL(ctx, sneaker.ImageStorageID)

	return listing, nil
}

func (s *SneakerService) annotate(ctx context.Context, sneakers []*model.Sneaker) ([]*model.SneakerListing, error) {
	ids := make([]string, 0, len(sneakers))
	for _, sneaker := range sneakers {
		ids = append(ids, sneaker.ID)
	}

	stats, err := s.ratingRepo.Stats(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	listings := make([]*model.SneakerListing, 0, len(sneakers))
	for _, sneaker := range sneakers {
		listing := &model.SneakerListing{Sneaker: *sneaker, RatingStats: stats[sneaker.ID]}
		listing.RatingStats.SneakerID = sneaker.ID
		listing.Brand = sneaker.DisplayBrand()
		listing.ImageURL = s.imageURL(ctx, sneaker.ImageStorageID)
		listings = append(listings, listing)
	}

	return listings, nil
}

// resolveImage turns a storage reference into a download URL. Objects
// written straight to the bucket are held to the same size and type
// limits as relayed ones, going by what the bucket recorded.
func (s *SneakerService) resolveImage(ctx context.Context, storageID string) (string, error) {
	if !strings.HasPrefix(storageID, UploadKeyPrefix) {
		return "", ErrImageUploadFailed
	}

	info, err := s.storage.Stat(ctx, storageID)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return "", ErrImageUploadFailed
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
	}

	if info.Size > s.constraints.MaxSize {
		return "", fmt.Errorf("%w: image is %d bytes", ErrImageUploadFailed, info.Size)
	}
	if !s.constraints.AllowedMimeTypes[contentTypeBase(info.ContentType)] {
		return "", fmt.Errorf("%w: unsupported content type %q", ErrImageUploadFailed, info.ContentType)
	}

	taken, err := s.sneakerRepo.ImageInUse(storageID)
	if err != nil {
		return "", fmt.Errorf("failed to check image: %w", err)
	}
	if taken {
		return "", repository.ErrImageInUse
	}

	url, err := s.storage.PresignedGetURL(ctx, storageID, s.imageURLExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
	}

	return url, nil
}

// newID returns a time-ordered id, so rows created in the same instant
// still list newest first.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func contentTypeBase(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

func (s *SneakerService) imageURL(ctx context.Context, storageID string) string {
	url, err := s.storage.PresignedGetURL(ctx, storageID, s.imageURLExpiry)
	if err != nil {
		slog.Warn("failed to presign image url", "error", err, "storage_id", storageID)
		return ""
	}
	return url
}

package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/templui/sneakerbase/internal/events"
	"github.com/templui/sneakerbase/internal/model"
	"github.com/templui/sneakerbase/internal/repository"
	"github.com/templui/sneakerbase/internal/validation"
)

var ErrForbidden = errors.New("not authorized to delete this rating")

type AddRatingInput struct {
	Comment       string `json:"comment"`
	RatingDesign  int    `json:"ratingDesign"`
	RatingComfort int    `json:"ratingComfort"`
	RatingQuality int    `json:"ratingQuality"`
	RatingValue   int    `json:"ratingValue"`
	Sizing        int    `json:"sizing"`
}

type RatingService struct {
	ratingRepo  repository.RatingRepository
	sneakerRepo repository.SneakerRepository
	userRepo    repository.UserRepository
	events      events.Publisher
}

func NewRatingService(ratingRepo repository.RatingRepository, sneakerRepo repository.SneakerRepository, userRepo repository.UserRepository, publisher events.Publisher) *RatingService {
	return &RatingService{
		ratingRepo:  ratingRepo,
		sneakerRepo: sneakerRepo,
		userRepo:    userRepo,
		events:      publisher,
	}
}

// CanModify reports whether actor may change or remove rating.
func CanModify(actor *model.User, rating *model.Rating) bool {
	return actor != nil && rating != nil && actor.ID != "" && actor.ID == rating.AuthorID
}

func (s *RatingService) Add(subject, sneakerID string, input AddRatingInput) (string, error) {
	if subject == "" {
		return "", ErrUnauthenticated
	}

	author, err := s.userRepo.BySubject(subject)
	if err != nil {
		return "", err
	}

	_, err = s.sneakerRepo.ByID(sneakerID)
	if err != nil {
		return "", err
	}

	input.Comment = strings.TrimSpace(input.Comment)
	err = validation.Struct(validation.RatingInput{
		Comment:       input.Comment,
		RatingDesign:  input.RatingDesign,
		RatingComfort: input.RatingComfort,
		RatingQuality: input.RatingQuality,
		RatingValue:   input.RatingValue,
		Sizing:        input.Sizing,
	})
	if err != nil {
		return "", err
	}

	rating := &model.Rating{
		ID:            newID(),
		SneakerID:     sneakerID,
		AuthorID:      author.ID,
		Comment:       input.Comment,
		RatingDesign:  input.RatingDesign,
		RatingComfort: input.RatingComfort,
		RatingQuality: input.RatingQuality,
		RatingValue:   input.RatingValue,
		Sizing:        input.Sizing,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.ratingRepo.Create(rating)
	if err != nil {
		return "", fmt.Errorf("failed to create rating: %w", err)
	}

	s.events.Publish(events.Event{Type: events.RatingAdded, ID: rating.ID, SneakerID: sneakerID, At: rating.CreatedAt})

	slog.Info("rating added", "rating_id", rating.ID, "sneaker_id", sneakerID, "user_id", author.ID)
	return rating.ID, nil
}

func (s *RatingService) ListForSneaker(sneakerID string) ([]*model.Rating, error) {
	ratings, err := s.ratingRepo.BySneaker(sneakerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

// ListMine returns the caller's ratings. Callers without identity or record get an empty list.
func (s *RatingService) ListMine(subject string) ([]*model.Rating, error) {
	if subject == "" {
		return []*model.Rating{}, nil
	}

	author, err := s.userRepo.BySubject(subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		return []*model.Rating{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ratings, err := s.ratingRepo.ByAuthor(author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

func (s *RatingService) Delete(subject, ratingID string) error {
	if subject == "" {
		return ErrUnauthenticated
	}

	actor, err := s.userRepo.BySubject(subject)
	if err != nil {
		return err
	}

	rating, err := s.ratingRepo.ByID(ratingID)
	if err != nil {
		return err
	}

	if !CanModify(actor, rating) {
		slog.Warn("rating delete denied", "rating_id", ratingID, "user_id", actor.ID)
		return ErrForbidden
	}

	err = s.ratingRepo.Delete(ratingID)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	s.events.Publish(events.Event{Type: events.RatingDeleted, ID: ratingID, SneakerID: rating.SneakerID})

	slog.Info("rating deleted", "rating_id", ratingID, "user_id", actor.ID)
	return nil
}

package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/sneakerbase/internal/events"
	"github.com/templui/sneakerbase/internal/model"
	"github.com/templui/sneakerbase/internal/repository"
	"github.com/templui/sneakerbase/internal/validation"
)

type UserService struct {
	userRepository repository.UserRepository
	events         events.Publisher
}

func NewUserService(userRepository repository.UserRepository, publisher events.Publisher) *UserService {
	return &UserService{
		userRepository: userRepository,
		events:         publisher,
	}
}

// EnsureUser returns the user record for subject, creating an empty one on first sight.
func (s *UserService) EnsureUser(subject string) (*model.User, error) {
	if subject == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepository.BySubject(subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := time.Now().UTC()
	user = &model.User{
		ID:        uuid.New().String(),
		Subject:   subject,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.userRepository.Create(user)
	if errors.Is(err, repository.ErrDuplicateSubject) {
		// Lost a race with a concurrent first request
		return s.userRepository.BySubject(subject)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "user_id", user.ID, "subject", subject)
	return user, nil
}

// CurrentUser resolves subject to its record. Unknown or empty subjects yield nil without error.
func (s *UserService) CurrentUser(subject string) (*model.User, error) {
	if subject == "" {
		return nil, nil
	}

	user, err := s.userRepository.BySubject(subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateProfile stores the email and a display name built from the name parts.
// Without name parts the stored name is kept.
func (s *UserService) UpdateProfile(subject, email string, firstName, lastName *string) (*model.User, error) {
	if subject == "" {
		return nil, &validation.Error{Field: "subject", Message: "subject is required"}
	}

	input := validation.ProfileInput{Email: strings.TrimSpace(email), FirstName: deref(firstName), LastName: deref(lastName)}
	err := validation.Struct(input)
	if err != nil {
		return nil, err
	}

	name := DisplayName(firstName, lastName)
	now := time.Now().UTC()

	user, err := s.userRepository.BySubject(subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &model.User{
			ID:        uuid.New().String(),
			Subject:   subject,
			Email:     input.Email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if name != "" {
			user.Name = &name
		}

		err = s.userRepository.Create(user)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		s.events.Publish(events.Event{Type: events.UserUpdated, ID: user.ID, At: now})

		slog.Info("user created from profile", "user_id", user.ID, "subject", subject)
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Email = input.Email
	if name != "" {
		user.Name = &name
	}
	user.UpdatedAt = now

	err = s.userRepository.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.events.Publish(events.Event{Type: events.UserUpdated, ID: user.ID, At: now})

	slog.Info("user profile updated", "user_id", user.ID)
	return user, nil
}

// DisplayName joins the non-empty name parts with a space.
func DisplayName(firstName, lastName *string) string {
	var parts []string
	for _, p := range []*string{firstName, lastName} {
		if v := strings.TrimSpace(deref(p)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

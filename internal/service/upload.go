package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/sneakerbase/internal/storage"
	"github.com/templui/sneakerbase/internal/validation"
)

// UploadKeyPrefix namespaces sneaker images in the bucket.
const UploadKeyPrefix = "sneakers/"

var (
	ErrInvalidUploadSlot = errors.New("upload slot is invalid or expired")
	ErrUploadSlotUsed    = errors.New("upload slot was already used")
	ErrStorage           = errors.New("storage unavailable")
)

// UploadSlot is a destination for one image. Relay slots accept a single
// upload. Direct slots are presigned bucket URLs and accept writes until
// they expire; the image is checked when a sneaker references it.
type UploadSlot struct {
	URL       string    `json:"uploadUrl"`
	Method    string    `json:"method"`
	StorageID string    `json:"storageId,omitempty"` // Known up front for direct uploads only
	ExpiresAt time.Time `json:"expiresAt"`
}

type UploadService struct {
	storage     storage.Storage
	secret      []byte
	appURL      string
	direct      bool
	slotExpiry  time.Duration
	constraints validation.FileConstraints
}

func NewUploadService(storage storage.Storage, secret, appURL string, direct bool, slotExpiry time.Duration, maxBytes int64) *UploadService {
	return &UploadService{
		storage:     storage,
		secret:      []byte(secret),
		appURL:      strings.TrimSuffix(appURL, "/"),
		direct:      direct,
		slotExpiry:  slotExpiry,
		constraints: validation.ImageConstraints.WithMaxSize(maxBytes),
	}
}

// MaxBytes is the largest accepted upload.
func (s *UploadService) MaxBytes() int64 {
	return s.constraints.MaxSize
}

// RequestSlot hands out an upload destination. No state is kept: relay
// slots are signed tokens and direct slots are presigned bucket URLs.
func (s *UploadService) RequestSlot(ctx context.Context) (*UploadSlot, error) {
	key := UploadKeyPrefix + uuid.New().String()
	expiresAt := time.Now().UTC().Add(s.slotExpiry)

	if s.direct {
		url, err := s.storage.PresignedPutURL(ctx, key, s.slotExpiry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}

		slog.Debug("direct upload slot issued", "storage_id", key)
		return &UploadSlot{URL: url, Method: http.MethodPut, StorageID: key, ExpiresAt: expiresAt}, nil
	}

	token, err := s.signSlot(key, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload slot: %w", err)
	}

	slog.Debug("relay upload slot issued", "storage_id", key)
	return &UploadSlot{
		URL:       s.appURL + "/api/uploads/" + token,
		Method:    http.MethodPost,
		ExpiresAt: expiresAt,
	}, nil
}

// Receive stores the image bytes sent to a relay slot and returns the storage reference.
func (s *UploadService) Receive(ctx context.Context, token string, body io.Reader) (string, error) {
	key, err := s.verifySlot(token)
	if err != nil {
		return "", err
	}

	// Saves are conditional, this only spares reading the body of a replay
	_, err = s.storage.Stat(ctx, key)
	if err == nil {
		return "", ErrUploadSlotUsed
	}
	if !errors.Is(err, storage.ErrObjectNotFound) {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// One byte over the limit is enough to reject
	data, err := io.ReadAll(io.LimitReader(body, s.constraints.MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	contentType, err := validation.ValidateContent(data, s.constraints)
	if err != nil {
		return "", err
	}

	err = s.storage.Save(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if errors.Is(err, storage.ErrObjectExists) {
		slog.Warn("upload slot raced", "storage_id", key)
		return "", ErrUploadSlotUsed
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	slog.Info("image uploaded", "storage_id", key, "size", len(data), "content_type", contentType)
	return key, nil
}

func (s *UploadService) signSlot(key string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"typ": "upload",
		"key": key,
		"exp": expiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *UploadService) verifySlot(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidUploadSlot
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid || claims["typ"] != "upload" {
		return "", ErrInvalidUploadSlot
	}

	key, _ := claims["key"].(string)
	if !strings.HasPrefix(key, UploadKeyPrefix) {
		return "", ErrInvalidUploadSlot
	}

	return key, nil
}

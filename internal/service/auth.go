package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const SessionCookieName = "auth_token"

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrInvalidSession  = errors.New("invalid session token")
)

// AuthService issues and verifies the session cookie set after an OIDC sign-in.
// The session carries only the identity provider subject.
type AuthService struct {
	jwtSecret    string
	serviceToken string
	isProduction bool
	jwtExpiry    time.Duration
}

func NewAuthService(jwtSecret, serviceToken string, isProduction bool, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		jwtSecret:    jwtSecret,
		serviceToken: serviceToken,
		isProduction: isProduction,
		jwtExpiry:    jwtExpiry,
	}
}

// GenerateState creates a random token for the OAuth state parameter.
func (s *AuthService) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(subject string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtExpiry)

	claims := jwt.MapClaims{
		"sub": subject,
		"typ": "session",
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// VerifyJWT returns the subject of a valid session token.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid || claims["typ"] != "session" {
		return "", ErrInvalidSession
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidSession
	}

	return subject, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ValidServiceToken reports whether token matches the configured service token.
// An unset service token disables service-to-service calls.
func (s *AuthService) ValidServiceToken(token string) bool {
	if s.serviceToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.serviceToken), []byte(token)) == 1
}

package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var (
	ErrMissingIDToken = errors.New("token response has no id_token")
	ErrMissingSubject = errors.New("token has no subject")
)

// Claims is the subset of the ID token / UserInfo payload the app uses.
type Claims struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Session is the result of a completed authorization code exchange.
type Session struct {
	Claims Claims
	Token  *oauth2.Token
}

// Provider signs users in through an OpenID Connect issuer and verifies
// the ID tokens API clients present as bearer tokens.
type Provider struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config
}

type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// New runs OIDC discovery against the issuer.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc issuer %q: %w", cfg.IssuerURL, err)
	}

	return &Provider{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// AuthCodeURL is the consent screen URL carrying the CSRF state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens and verifies the ID token.
func (p *Provider) Exchange(ctx context.Context, code string) (*Session, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrMissingIDToken
	}

	claims, err := p.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	return &Session{Claims: *claims, Token: token}, nil
}

// Verify checks signature, issuer, audience and expiry of a raw ID token.
func (p *Provider) Verify(ctx context.Context, rawIDToken string) (*Claims, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}

	var claims Claims
	err = idToken.Claims(&claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id token claims: %w", err)
	}

	if claims.Subject == "" {
		claims.Subject = idToken.Subject
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return &claims, nil
}

// Profile fetches the richer profile from the UserInfo endpoint.
func (p *Provider) Profile(ctx context.Context, token *oauth2.Token) (*Claims, error) {
	info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	var claims Claims
	err = info.Claims(&claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse userinfo claims: %w", err)
	}

	claims.Subject = info.Subject
	if claims.Email == "" {
		claims.Email = info.Email
	}

	return &claims, nil
}

// Merge fills empty fields of c from other.
func (c Claims) Merge(other *Claims) Claims {
	if other == nil {
		return c
	}
	if c.Email == "" {
		c.Email = other.Email
	}
	if c.GivenName == "" {
		c.GivenName = other.GivenName
	}
	if c.FamilyName == "" {
		c.FamilyName = other.FamilyName
	}
	return c
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collabtrack/server/internal/config"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// IdentityProvider is the external login the session is built on.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ExternalIdentity, error)
}

type OIDCProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewOIDCProvider(ctx context.Context, cfg config.OIDCConfig) (*OIDCProvider, error) {
	if !cfg.Enabled() {
		return nil, errors.New("oidc is not configured")
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	return &OIDCProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes(cfg.Scopes),
			Endpoint:     provider.Endpoint(),
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func scopes(raw string) []string {
	out := []string{oidc.ScopeOpenID}
	for _, scope := range strings.Split(raw, ",") {
		scope = strings.TrimSpace(scope)
		if scope != "" && scope != oidc.ScopeOpenID {
			out = append(out, scope)
		}
	}
	return out
}

func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Warn("oidc_exchange_failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, errors.New("failed to exchange code for token")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("token response did not include an id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id_token claims: %w", err)
	}

	return identityFromClaims(idToken.Subject, claims)
}

type idTokenClaims struct {
	Email             string `json:"email"`
	EmailVerified     any    `json:"email_verified"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
}

// identityFromClaims rejects an email the provider explicitly reports as
// unverified, since the gate matches accounts by email.
func identityFromClaims(subject string, claims idTokenClaims) (*ExternalIdentity, error) {
	if emailUnverified(claims.EmailVerified) {
		logger.Warn("oidc_email_unverified", map[string]interface{}{
			"identity_id": subject,
		})
		return nil, errors.New("the identity provider has not verified this email address")
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}

	return &ExternalIdentity{
		ID:    subject,
		Email: claims.Email,
		Name:  name,
	}, nil
}

// Some providers send email_verified as a string.
func emailUnverified(claim any) bool {
	switch v := claim.(type) {
	case bool:
		return !v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "false")
	default:
		return false
	}
}

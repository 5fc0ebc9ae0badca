// Package oidc signs users in against an external OpenID Connect provider with the
// resource owner password grant and trusts the verified ID token subject as the user handle.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"codbank/internal/identity"
	"codbank/internal/shared/logger"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Provider delegates credential checks to an OIDC issuer.
type Provider struct {
	oauth    *oauth2.Config
	verifier *gooidc.IDTokenVerifier
	logger   logger.Logger
}

// NewProvider discovers the issuer and builds a provider for it.
func NewProvider(ctx context.Context, cfg *identity.Config, log logger.Logger) (*Provider, error) {
	discovered, err := gooidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	endpoint := discovered.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		Endpoint:     endpoint,
		Scopes:       cfg.OIDCScopes,
	}
	verifier := discovered.Verifier(&gooidc.Config{ClientID: cfg.OIDCClientID})

	return NewProviderWithVerifier(oauthConfig, verifier, log), nil
}

// NewProviderWithVerifier builds a provider from an explicit token endpoint and verifier.
func NewProviderWithVerifier(oauthConfig *oauth2.Config, verifier *gooidc.IDTokenVerifier, log logger.Logger) *Provider {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Provider{
		oauth:    oauthConfig,
		verifier: verifier,
		logger:   log.WithComponent("identity_oidc"),
	}
}

// SignIn exchanges the credentials for tokens and verifies the returned ID token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.UserHandle, error) {
	email = identity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, identity.ErrInvalidCredentials
	}

	token, err := p.oauth.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		if isRejectedGrant(err) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("no ID token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("ID token verification failed: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}
	if claims.Email == "" {
		claims.Email = email
	}

	return &identity.UserHandle{UID: idToken.Subject, Email: identity.NormalizeEmail(claims.Email)}, nil
}

// SignUp is not offered; accounts are created at the issuer.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.UserHandle, error) {
	return nil, identity.ErrUnsupported
}

// SignOut is a no-op; the issuer's own session is not touched.
func (p *Provider) SignOut(ctx context.Context, uid string) error {
	return nil
}

func isRejectedGrant(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return false
	}
	if retrieveErr.ErrorCode == "invalid_grant" {
		return true
	}
	if retrieveErr.Response == nil {
		return false
	}
	return retrieveErr.Response.StatusCode == http.StatusBadRequest || retrieveErr.Response.StatusCode == http.StatusUnauthorized
}

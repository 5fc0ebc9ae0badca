package oidc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codbank/internal/identity"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testIssuer   = "https://id.codbank.test"
	testClientID = "codbank"
)

type tokenServer struct {
	key      *rsa.PrivateKey
	password string
	subject  string
	noIDTok  bool
}

func (s *tokenServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "password" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	if r.PostForm.Get("password") != s.password {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}

	resp := map[string]interface{}{
		"access_token": "access",
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	if !s.noIDTok {
		idToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"iss":   testIssuer,
			"aud":   testClientID,
			"sub":   s.subject,
			"email": r.PostForm.Get("username"),
			"iat":   time.Now().Unix(),
			"exp":   time.Now().Add(time.Hour).Unix(),
		}).SignedString(s.key)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp["id_token"] = idToken
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestProvider(t *testing.T, ts *tokenServer) *Provider {
	t.Helper()
	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	keySet := &gooidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&ts.key.PublicKey}}
	verifier := gooidc.NewVerifier(testIssuer, keySet, &gooidc.Config{ClientID: testClientID})

	return NewProviderWithVerifier(&oauth2.Config{
		ClientID: testClientID,
		Endpoint: oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams},
		Scopes:   []string{gooidc.ScopeOpenID, "email"},
	}, verifier, nil)
}

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestProvider_SignIn(t *testing.T) {
	provider := newTestProvider(t, &tokenServer{key: newKey(t), password: "secret1", subject: "oidc-uid-1"})

	handle, err := provider.SignIn(context.Background(), "Alex@CodBank.io", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "oidc-uid-1", handle.UID)
	assert.Equal(t, "alex@codbank.io", handle.Email)
}

func TestProvider_SignIn_WrongPassword(t *testing.T) {
	provider := newTestProvider(t, &tokenServer{key: newKey(t), password: "secret1", subject: "oidc-uid-1"})

	_, err := provider.SignIn(context.Background(), "alex@codbank.io", "nope")

	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestProvider_SignIn_UntrustedSigner(t *testing.T) {
	ts := &tokenServer{key: newKey(t), password: "secret1", subject: "oidc-uid-1"}
	provider := newTestProvider(t, ts)
	ts.key = newKey(t)

	_, err := provider.SignIn(context.Background(), "alex@codbank.io", "secret1")

	assert.ErrorContains(t, err, "ID token verification failed")
}

func TestProvider_SignIn_MissingIDToken(t *testing.T) {
	provider := newTestProvider(t, &tokenServer{key: newKey(t), password: "secret1", noIDTok: true})

	_, err := provider.SignIn(context.Background(), "alex@codbank.io", "secret1")

	assert.ErrorContains(t, err, "no ID token")
}

func TestProvider_SignUpUnsupported(t *testing.T) {
	provider := newTestProvider(t, &tokenServer{key: newKey(t)})

	_, err := provider.SignUp(context.Background(), "alex@codbank.io", "secret1")
	assert.ErrorIs(t, err, identity.ErrUnsupported)
	assert.NoError(t, provider.SignOut(context.Background(), "oidc-uid-1"))
}

package oauth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *GoogleServiceImpl {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewGoogleService("client", "secret", "http://localhost/callback", nil).(*GoogleServiceImpl)
	svc.userInfoURL = srv.URL
	return svc
}

func TestVerifyUser(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"g-1","email":"Ana@Acme.io","verified_email":true,"name":"Ana"}`))
	})

	info, err := svc.VerifyUser(context.Background(), &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
	require.NoError(t, err)
	assert.Equal(t, "g-1", info.GoogleID)
	assert.Equal(t, "ana@acme.io", info.Email)
	assert.True(t, info.VerifiedEmail)
}

func TestVerifyUser_Errors(t *testing.T) {
	t.Run("non 200", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
		})
		_, err := svc.VerifyUser(context.Background(), &oauth2.Token{AccessToken: "tok"})
		assert.ErrorContains(t, err, "401")
	})

	t.Run("missing email", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"g-1"}`))
		})
		_, err := svc.VerifyUser(context.Background(), &oauth2.Token{AccessToken: "tok"})
		assert.Error(t, err)
	})
}

func TestGenerateState(t *testing.T) {
	svc := NewGoogleService("client", "secret", "http://localhost/callback", nil)

	a := svc.GenerateState("curl/8")
	b := svc.GenerateState("curl/8")
	assert.NotEqual(t, a, b)

	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), ".curl/8"))

	assert.Contains(t, svc.RedirectURL(a), "state="+a)
}

func TestVerifyToken_NotConfigured(t *testing.T) {
	svc := NewGoogleService("", "", "", nil)
	_, err := svc.VerifyToken(context.Background(), "code")
	assert.Error(t, err)
}

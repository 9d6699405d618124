package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT(t *testing.T) *JWT {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	j, err := NewJWTFromPEM(
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
		pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub}),
		time.Hour,
	)
	require.NoError(t, err)
	return j
}

func TestCookiesRoundTrip(t *testing.T) {
	c := NewCookiesFor(testJWT(t), "localhost", false, http.SameSiteLaxMode)

	rec := httptest.NewRecorder()
	require.NoError(t, c.Issue(rec, c.NewPlayerClaims(7, "ann")))

	issued := rec.Result().Cookies()
	require.Len(t, issued, 2)
	assert.False(t, issued[0].HttpOnly)
	assert.True(t, issued[1].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range issued {
		req.AddCookie(ck)
	}
	claims, err := c.ParsePlayerClaims(req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.PlayerID)
	assert.Equal(t, "ann", claims.Username)
}

func TestCookiesRejectForeignSignature(t *testing.T) {
	mine := NewCookiesFor(testJWT(t), "localhost", false, http.SameSiteLaxMode)
	theirs := NewCookiesFor(testJWT(t), "localhost", false, http.SameSiteLaxMode)

	rec := httptest.NewRecorder()
	require.NoError(t, theirs.Issue(rec, theirs.NewPlayerClaims(1, "eve")))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	_, err := mine.ParsePlayerClaims(req)
	assert.Error(t, err)

	_, err = mine.ParsePlayerClaims(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, http.ErrNoCookie)
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite("lax"))
	assert.Equal(t, http.SameSiteNoneMode, parseSameSite("None"))
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("whatever"))
}

package jwtx_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	testNow    = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
)

func newCodec(t *testing.T) *jwtx.HS256Codec {
	t.Helper()
	c, err := jwtx.NewHS256Codec(testSecret, "tokenauth", 5*time.Minute)
	require.NoError(t, err)
	return c
}

func TestNewHS256Codec_WeakSecret(t *testing.T) {
	_, err := jwtx.NewHS256Codec([]byte("short"), "tokenauth", time.Minute)
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestHS256_RoundTrip(t *testing.T) {
	c := newCodec(t)

	token, exp, err := c.Issue("01J0USER", testNow)
	require.NoError(t, err)
	require.Equal(t, testNow.Add(5*time.Minute), exp)
	require.Equal(t, "HS256", c.Alg())

	claims, err := c.Verify(token, testNow.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, "01J0USER", claims.Subject)
	require.Equal(t, "tokenauth", claims.Issuer)
	require.Equal(t, testNow, claims.IssuedAt.Time.UTC())
}

func TestHS256_Expiry(t *testing.T) {
	c := newCodec(t)
	token, exp, err := c.Issue("01J0USER", testNow)
	require.NoError(t, err)

	_, err = c.Verify(token, exp.Add(-time.Second))
	require.NoError(t, err)

	_, err = c.Verify(token, exp)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	_, err = c.Verify(token, exp.Add(time.Hour))
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestHS256_Rejections(t *testing.T) {
	c := newCodec(t)
	token, _, err := c.Issue("01J0USER", testNow)
	require.NoError(t, err)

	other, err := jwtx.NewHS256Codec([]byte(strings.Repeat("z", 32)), "tokenauth", time.Minute)
	require.NoError(t, err)
	foreign, _, err := other.Issue("01J0USER", testNow)
	require.NoError(t, err)

	wrongIssuer, err := jwtx.NewHS256Codec(testSecret, "elsewhere", time.Minute)
	require.NoError(t, err)
	elsewhere, _, err := wrongIssuer.Issue("01J0USER", testNow)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512,
		jwtx.NewAccessClaims("01J0USER", "tokenauth", time.Minute, testNow),
	).SignedString(testSecret)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone,
		jwtx.NewAccessClaims("01J0USER", "tokenauth", time.Minute, testNow),
	).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := c.Sign(jwtx.NewAccessClaims("", "tokenauth", time.Minute, testNow))
	require.NoError(t, err)

	future, err := c.Sign(jwtx.NewAccessClaims("01J0USER", "tokenauth", time.Hour, testNow.Add(10*time.Minute)))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", jwtx.ErrMalformed},
		{"empty", "", jwtx.ErrMalformed},
		{"tampered signature", tampered, jwtx.ErrMalformed},
		{"different secret", foreign, jwtx.ErrMalformed},
		{"wrong algorithm", hs512, jwtx.ErrMalformed},
		{"alg none", none, jwtx.ErrMalformed},
		{"missing subject", noSubject, jwtx.ErrMalformed},
		{"issuer mismatch", elsewhere, jwtx.ErrInvalid},
		{"issued in the future", future, jwtx.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Verify(tt.token, testNow.Add(time.Second))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHS256_ConcurrentUse(t *testing.T) {
	c := newCodec(t)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := strings.Repeat("u", i+1)
			token, _, err := c.Issue(sub, testNow)
			require.NoError(t, err)
			claims, err := c.Verify(token, testNow)
			require.NoError(t, err)
			require.Equal(t, sub, claims.Subject)
		}()
	}
	wg.Wait()
}

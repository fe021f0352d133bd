package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *User {
	return &User{
		ID:           "user-1",
		Email:        "me@example.com",
		Name:         "기록러",
		TokenVersion: 3,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	ts := TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "recordmoa",
		Duration: time.Hour,
	}

	token, exp, err := ts.Sign(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "me@example.com", claims.Email)
	assert.Equal(t, "기록러", claims.Name)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, "recordmoa", claims.Issuer)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenWrongSecret(t *testing.T) {
	ts := TokenService{Secret: []byte("right"), Issuer: "recordmoa", Duration: time.Hour}
	token, _, err := ts.Sign(testUser())
	require.NoError(t, err)

	other := TokenService{Secret: []byte("wrong"), Issuer: "recordmoa", Duration: time.Hour}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	ts := TokenService{Secret: []byte("s"), Issuer: "recordmoa", Duration: -time.Minute}
	token, _, err := ts.Sign(testUser())
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.Error(t, err)
}

func TestTokenRejectsOtherSigningMethods(t *testing.T) {
	ts := TokenService{Secret: []byte("s"), Issuer: "recordmoa", Duration: time.Hour}

	// alg "none" must never be accepted
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ts.Parse(signed)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	ts := TokenService{Secret: []byte("s"), Issuer: "recordmoa", Duration: time.Hour}
	_, err := ts.Parse("not-a-token")
	assert.Error(t, err)
}

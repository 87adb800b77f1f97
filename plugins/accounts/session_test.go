package accounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionTestPlugin(key string, expiration time.Duration) *AccountsPlugin {
	return &AccountsPlugin{
		signingKey:        []byte(key),
		sessionExpiration: expiration,
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	p := sessionTestPlugin("test-key", time.Hour)
	u := &User{Login: "alice", Name: "Alice Artois", Email: "alice@example.com"}

	token, err := p.IssueSessionToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := p.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Login)
	assert.Equal(t, "Alice Artois", session.Name)
	assert.Equal(t, "alice@example.com", session.Email)
	assert.NotEmpty(t, session.ID)
	assert.WithinDuration(t, time.Now(), session.AuthTime, 5*time.Second)
}

func TestSessionTokenIDsAreUnique(t *testing.T) {
	p := sessionTestPlugin("test-key", time.Hour)
	u := &User{Login: "alice"}

	t1, err := p.IssueSessionToken(u)
	require.NoError(t, err)
	t2, err := p.IssueSessionToken(u)
	require.NoError(t, err)

	s1, err := p.ParseSessionToken(t1)
	require.NoError(t, err)
	s2, err := p.ParseSessionToken(t2)
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)
}

func TestParseSessionTokenWrongKey(t *testing.T) {
	p := sessionTestPlugin("test-key", time.Hour)
	token, err := p.IssueSessionToken(&User{Login: "alice"})
	require.NoError(t, err)

	other := sessionTestPlugin("other-key", time.Hour)
	_, err = other.ParseSessionToken(token)
	assert.Error(t, err)
}

func TestParseSessionTokenExpired(t *testing.T) {
	p := sessionTestPlugin("test-key", -time.Minute)
	token, err := p.IssueSessionToken(&User{Login: "alice"})
	require.NoError(t, err)

	_, err = p.ParseSessionToken(token)
	assert.Error(t, err)
}

func TestParseSessionTokenGarbage(t *testing.T) {
	p := sessionTestPlugin("test-key", time.Hour)
	_, err := p.ParseSessionToken("not-a-jwt")
	assert.Error(t, err)
}

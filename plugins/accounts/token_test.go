package accounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRegistrationToken(t *testing.T) {
	token := NewRegistrationToken("alice", time.Hour)
	assert.Equal(t, "alice", token.Login)
	assert.Equal(t, "alice", token.PK(), "one live token per login")
	assert.Equal(t, ActionRegister, token.Action)
	assert.NotEmpty(t, token.Value)
	assert.False(t, token.Expired())
}

func TestRegistrationTokenExpired(t *testing.T) {
	token := NewRegistrationToken("alice", -time.Minute)
	assert.True(t, token.Expired())
}

func TestRegistrationTokenValuesDiffer(t *testing.T) {
	a := NewRegistrationToken("alice", time.Hour)
	b := NewRegistrationToken("alice", time.Hour)
	assert.NotEqual(t, a.Value, b.Value)
}

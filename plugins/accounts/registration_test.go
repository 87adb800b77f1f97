package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistrationMode(t *testing.T) {
	tests := []struct {
		in   string
		want RegistrationMode
	}{
		{"disabled", ModeDisabled},
		{"email", ModeByEmail},
		{"manual", ModeManual},
		{"automatic", ModeAutomatic},
		// Legacy numeric setting values.
		{"0", ModeDisabled},
		{"1", ModeByEmail},
		{"2", ModeManual},
		{"3", ModeAutomatic},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRegistrationMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRegistrationModeUnknown(t *testing.T) {
	for _, in := range []string{"", "on", "4", "Email"} {
		_, err := ParseRegistrationMode(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		mode   RegistrationMode
		origin Origin
		want   Decision
	}{
		{ModeDisabled, OriginForm, RejectRegistration},
		{ModeByEmail, OriginForm, PendingEmailActivation},
		{ModeManual, OriginForm, PendingManualActivation},
		{ModeAutomatic, OriginForm, ActivateNow},

		// Externally verified identities activate immediately in every mode,
		// including disabled.
		{ModeDisabled, OriginExternal, ActivateNow},
		{ModeByEmail, OriginExternal, ActivateNow},
		{ModeManual, OriginExternal, ActivateNow},
		{ModeAutomatic, OriginExternal, ActivateNow},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.origin.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.mode, tt.origin))
		})
	}
}

func TestModeStrings(t *testing.T) {
	assert.Equal(t, "disabled", ModeDisabled.String())
	assert.Equal(t, "automatic", ModeAutomatic.String())
	assert.Equal(t, "form", OriginForm.String())
	assert.Equal(t, "external", OriginExternal.String())
	assert.Equal(t, "reject", RejectRegistration.String())
	assert.Equal(t, "pending email activation", PendingEmailActivation.String())
}

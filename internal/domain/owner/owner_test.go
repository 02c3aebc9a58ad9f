package owner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness-directory/backend/internal/apperr"
)

func TestKind_Variants(t *testing.T) {
	tests := []struct {
		kind     Kind
		col      string
		backRef  string
		hostsEvt bool
	}{
		{Gym, "gyms", "gym_id", true},
		{PersonalTrainer, "personal_trainers", "personal_trainer_id", true},
		{Student, "students", "student_id", false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.True(t, tt.kind.IsValid())
			assert.Equal(t, tt.col, tt.kind.Collection())
			assert.Equal(t, tt.backRef, tt.kind.BackRefField())
			assert.Equal(t, tt.hostsEvt, tt.kind.HostsEvents())
		})
	}
	assert.False(t, Kind("dojo").IsValid())
	assert.Empty(t, Kind("dojo").Collection())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"gym":               Gym,
		"gyms":              Gym,
		"Personal-Trainers": PersonalTrainer,
		" student ":         Student,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("dojo")
	assert.True(t, apperr.IsErrBadRequest(err))
}

func TestRef(t *testing.T) {
	r := NewRef(Gym, " gym-1 ")
	require.NoError(t, r.Validate())
	assert.Equal(t, "gyms/gym-1/addresses", r.Sub("addresses"))
	assert.Equal(t, "gyms/gym-1", r.String())

	assert.Error(t, NewRef(Gym, "").Validate())
	assert.Error(t, NewRef(Gym, "a/b").Validate())
	assert.Error(t, NewRef("dojo", "x").Validate())
}

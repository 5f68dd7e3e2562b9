package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/moodstream/internal/common"
)

func TestEmotionalState_Codes(t *testing.T) {
	tests := []struct {
		state EmotionalState
		code  int
		label string
	}{
		{StateHappiness, 0, "Happy"},
		{StateSadness, 1, "Sad"},
		{StateFear, 2, "Afraid"},
		{StateDisgust, 3, "Disgusted"},
		{StateAnger, 4, "Angry"},
		{StateSurprise, 5, "Surprised"},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.state.Code())
			assert.Equal(t, tc.label, tc.state.String())

			got, ok := StateByCode(tc.code)
			require.True(t, ok)
			assert.Equal(t, tc.state, got)
		})
	}
}

func TestEmotionalState_ReverseLookupUnknownCode(t *testing.T) {
	_, ok := StateByCode(6)
	assert.False(t, ok)
	_, ok = StateByCode(-1)
	assert.False(t, ok)
}

func TestSocialSituation_Codes(t *testing.T) {
	tests := []struct {
		situation SocialSituation
		code      int
		label     string
	}{
		{SituationUnset, 0, "No situation provided"},
		{SituationAlone, 1, "Alone"},
		{SituationOnePerson, 2, "One person"},
		{SituationSeveral, 3, "Two to several people"},
		{SituationCrowd, 4, "Crowd"},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.situation.Code())
			assert.Equal(t, tc.label, tc.situation.String())

			got, ok := SituationByCode(tc.code)
			require.True(t, ok)
			assert.Equal(t, tc.situation, got)
		})
	}
}

func TestSocialSituation_ReverseLookupUnknownCode(t *testing.T) {
	_, ok := SituationByCode(5)
	assert.False(t, ok)
}

func TestNewMood_Fields(t *testing.T) {
	at := time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC)
	situation := SituationAlone
	loc := &GeoPoint{Lat: 53.34, Lon: -113.49}

	m, err := NewMood(StateAnger, at, &situation, "Angry cause alone", loc)
	require.NoError(t, err)

	assert.Equal(t, StateAnger, m.State)
	assert.Equal(t, at, m.Datetime)
	assert.Equal(t, SituationAlone, *m.Situation)
	assert.Equal(t, "Angry cause alone", m.Reason)
	assert.Equal(t, loc, m.Location)
	assert.Nil(t, m.Image)
	assert.False(t, m.Persisted())
}

func TestNewMood_RequiredFields(t *testing.T) {
	at := time.Now()

	_, err := NewMood(EmotionalState(42), at, nil, "", nil)
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = NewMood(StateHappiness, time.Time{}, nil, "", nil)
	assert.True(t, errors.Is(err, common.ErrValidation))

	bad := SocialSituation(9)
	_, err = NewMood(StateHappiness, at, &bad, "", nil)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestPersistedMood_RequiresID(t *testing.T) {
	_, err := PersistedMood("", StateHappiness, time.Now(), nil, "", nil)
	assert.True(t, errors.Is(err, common.ErrValidation))

	m, err := PersistedMood("abc123", StateHappiness, time.Now(), nil, "", nil)
	require.NoError(t, err)
	assert.True(t, m.Persisted())
}

func TestNewRequest(t *testing.T) {
	r, err := NewRequest("bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", r.From)
	assert.Equal(t, "alice", r.To)
	assert.False(t, r.Persisted())

	_, err = NewRequest("", "alice")
	assert.True(t, errors.Is(err, common.ErrValidation))

	pr, err := PersistedRequest("r1", "bob", "alice")
	require.NoError(t, err)
	assert.True(t, pr.Persisted())
}

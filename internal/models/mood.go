package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodstream/internal/common"
)

// GeoPoint is a latitude/longitude pair attached to a mood.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Mood is a single recorded mood event. ID is empty until the backend has
// persisted the mood and assigned a document id: such an instance may only be
// passed to a create operation, and a persisted one only to update/delete.
//
// The owning username is not part of the entity. It is write-only metadata
// supplied at persistence time and never read back.
type Mood struct {
	ID        string
	State     EmotionalState
	Datetime  time.Time
	Situation *SocialSituation
	Reason    string
	Location  *GeoPoint
	Image     []byte
}

// NewMood builds an unpersisted Mood, validating the required fields.
// Reason may be empty but is always present; situation and location are
// optional and may be nil.
func NewMood(state EmotionalState, datetime time.Time, situation *SocialSituation, reason string, location *GeoPoint) (Mood, error) {
	if !state.Valid() {
		return Mood{}, fmt.Errorf("%w: state code %d is not defined", common.ErrValidation, state.Code())
	}
	if datetime.IsZero() {
		return Mood{}, fmt.Errorf("%w: datetime is required", common.ErrValidation)
	}
	if situation != nil && !situation.Valid() {
		return Mood{}, fmt.Errorf("%w: situation code %d is not defined", common.ErrValidation, situation.Code())
	}
	return Mood{
		State:     state,
		Datetime:  datetime,
		Situation: situation,
		Reason:    reason,
		Location:  location,
	}, nil
}

// PersistedMood builds a Mood carrying a backend-assigned id, applying the
// same field validation as NewMood.
func PersistedMood(id string, state EmotionalState, datetime time.Time, situation *SocialSituation, reason string, location *GeoPoint) (Mood, error) {
	if id == "" {
		return Mood{}, fmt.Errorf("%w: persisted mood requires an id", common.ErrValidation)
	}
	m, err := NewMood(state, datetime, situation, reason, location)
	if err != nil {
		return Mood{}, err
	}
	m.ID = id
	return m, nil
}

// Persisted reports whether the mood carries a backend-assigned id.
func (m Mood) Persisted() bool {
	return m.ID != ""
}

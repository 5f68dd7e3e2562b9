package models

// SocialSituation is a closed enumeration of the company a user was in when
// a mood was recorded. SituationUnset (code 0) is an explicit "no situation
// provided" choice, distinct from the field being absent altogether.
// The integer codes are a persisted wire format and must never be reassigned.
type SocialSituation int

const (
	SituationUnset     SocialSituation = 0
	SituationAlone     SocialSituation = 1
	SituationOnePerson SocialSituation = 2
	SituationSeveral   SocialSituation = 3
	SituationCrowd     SocialSituation = 4
)

var situationLabels = map[SocialSituation]string{
	SituationUnset:     "No situation provided",
	SituationAlone:     "Alone",
	SituationOnePerson: "One person",
	SituationSeveral:   "Two to several people",
	SituationCrowd:     "Crowd",
}

// Code returns the stable integer code stored in the backend.
func (s SocialSituation) Code() int {
	return int(s)
}

// Valid reports whether s is one of the defined categories.
func (s SocialSituation) Valid() bool {
	_, ok := situationLabels[s]
	return ok
}

// String returns the display label for the situation.
func (s SocialSituation) String() string {
	if label, ok := situationLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// SituationByCode performs a reverse lookup of a persisted situation code.
func SituationByCode(code int) (SocialSituation, bool) {
	s := SocialSituation(code)
	return s, s.Valid()
}

// Situations returns all defined situations in code order.
func Situations() []SocialSituation {
	return []SocialSituation{
		SituationUnset, SituationAlone, SituationOnePerson,
		SituationSeveral, SituationCrowd,
	}
}

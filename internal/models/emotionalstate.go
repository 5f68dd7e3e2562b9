package models

// EmotionalState is a closed enumeration of mood categories. The integer
// codes are a persisted wire format and must never be reassigned.
type EmotionalState int

const (
	StateHappiness EmotionalState = 0
	StateSadness   EmotionalState = 1
	StateFear      EmotionalState = 2
	StateDisgust   EmotionalState = 3
	StateAnger     EmotionalState = 4
	StateSurprise  EmotionalState = 5
)

var stateLabels = map[EmotionalState]string{
	StateHappiness: "Happy",
	StateSadness:   "Sad",
	StateFear:      "Afraid",
	StateDisgust:   "Disgusted",
	StateAnger:     "Angry",
	StateSurprise:  "Surprised",
}

// Code returns the stable integer code stored in the backend.
func (s EmotionalState) Code() int {
	return int(s)
}

// Valid reports whether s is one of the defined categories.
func (s EmotionalState) Valid() bool {
	_, ok := stateLabels[s]
	return ok
}

// String returns the display label for the state.
func (s EmotionalState) String() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// StateByCode performs a reverse lookup of a persisted state code.
func StateByCode(code int) (EmotionalState, bool) {
	s := EmotionalState(code)
	return s, s.Valid()
}

// States returns all defined states in code order.
func States() []EmotionalState {
	return []EmotionalState{
		StateHappiness, StateSadness, StateFear,
		StateDisgust, StateAnger, StateSurprise,
	}
}

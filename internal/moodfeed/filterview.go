// Package moodfeed presents mood snapshots to the UI: it keeps the latest
// full snapshot from a subscription and derives a visible list through an
// optional emotional-state filter.
package moodfeed

import (
	"sync"

	"github.com/dmitrijs2005/moodstream/internal/models"
)

// FilterView holds the most recent mood snapshot and an optional state
// filter. The visible list is rebuilt in full from the snapshot on every
// change, so delivery order is always preserved and repeated application of
// the same filter is a no-op. Safe for concurrent use.
type FilterView struct {
	mu      sync.Mutex
	all     []models.Mood
	filter  *models.EmotionalState
	visible []models.Mood
}

// NewFilterView returns an empty, unfiltered view.
func NewFilterView() *FilterView {
	return &FilterView{}
}

// Replace installs a new full snapshot, discarding the previous one. Passing
// the snapshot straight from a subscription callback is the intended use.
func (v *FilterView) Replace(moods []models.Mood) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.all = make([]models.Mood, len(moods))
	copy(v.all, moods)
	v.rebuild()
}

// SetFilter restricts the visible list to moods of the given state. The
// filter survives snapshot replacements until cleared.
func (v *FilterView) SetFilter(state models.EmotionalState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = &state
	v.rebuild()
}

// ClearFilter restores the unfiltered view.
func (v *FilterView) ClearFilter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = nil
	v.rebuild()
}

// Filter returns the active filter, or nil when unfiltered.
func (v *FilterView) Filter() *models.EmotionalState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filter == nil {
		return nil
	}
	f := *v.filter
	return &f
}

// Moods returns a copy of the currently visible list.
func (v *FilterView) Moods() []models.Mood {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Mood, len(v.visible))
	copy(out, v.visible)
	return out
}

// Len returns the visible list length.
func (v *FilterView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.visible)
}

// rebuild recomputes visible from the full snapshot. Callers hold v.mu.
func (v *FilterView) rebuild() {
	if v.filter == nil {
		v.visible = v.all
		return
	}
	visible := make([]models.Mood, 0, len(v.all))
	for _, m := range v.all {
		if m.State == *v.filter {
			visible = append(visible, m)
		}
	}
	v.visible = visible
}

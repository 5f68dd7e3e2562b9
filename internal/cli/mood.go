package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/moodstream/internal/models"
	"github.com/dmitrijs2005/moodstream/internal/moodfeed"
)

// nowFn is a test seam for the mood timestamp.
var nowFn = time.Now

// AddMood prompts for the mood fields and persists a new mood for the
// current user.
func (a *App) AddMood(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	for _, s := range models.States() {
		printlnFn(fmt.Sprintf("  %d: %s", s.Code(), s))
	}
	stateText, err := getSimpleText(a.reader, "Emotional state (number)", os.Stdout)
	if err != nil {
		return err
	}
	code, err := strconv.Atoi(stateText)
	if err != nil {
		printlnFn("Not a number:", stateText)
		return nil
	}
	state, ok := models.StateByCode(code)
	if !ok {
		printlnFn("Unknown state code:", stateText)
		return nil
	}

	situationText, err := getSimpleText(a.reader, "Social situation (number, empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	var situation *models.SocialSituation
	if situationText != "" {
		scode, err := strconv.Atoi(situationText)
		if err != nil {
			printlnFn("Not a number:", situationText)
			return nil
		}
		s, ok := models.SituationByCode(scode)
		if !ok {
			printlnFn("Unknown situation code:", situationText)
			return nil
		}
		situation = &s
	}

	reason, err := getSimpleText(a.reader, "Reason", os.Stdout)
	if err != nil {
		return err
	}

	locationText, err := getSimpleText(a.reader, "Location lat,lon (empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	location, ok := parseLocation(locationText)
	if !ok {
		printlnFn("Bad location:", locationText)
		return nil
	}

	mood, err := models.NewMood(state, nowFn(), situation, reason, location)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	if err := a.session.Repository().CreateMood(ctx, *user, mood); err != nil {
		fmt.Println("Error:", err)
		return err
	}

	printlnFn("Mood saved")
	return nil
}

// List prints the current user's moods, newest first, through the active
// filter.
func (a *App) List(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in")
		return nil
	}
	printMoods(a.myView)
	return nil
}

// Feed prints the most recent mood of each followed user, through the active
// filter.
func (a *App) Feed(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in")
		return nil
	}
	printMoods(a.feedView)
	return nil
}

// Filter sets or clears the emotional-state filter on both views. The
// argument is a state name, a state code, or "off".
func (a *App) Filter(ctx context.Context, arg string) error {
	if arg == "" {
		printlnFn("Usage: filter <state|off>")
		return nil
	}
	if arg == "off" {
		a.myView.ClearFilter()
		a.feedView.ClearFilter()
		printlnFn("Filter cleared")
		return nil
	}

	state, ok := stateByNameOrCode(arg)
	if !ok {
		printlnFn("Unknown state:", arg)
		return nil
	}
	a.myView.SetFilter(state)
	a.feedView.SetFilter(state)
	printlnFn(fmt.Sprintf("Showing only %s moods", state))
	return nil
}

// DeleteMood prompts for a list position and deletes that mood.
func (a *App) DeleteMood(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	moods := a.myView.Moods()
	if len(moods) == 0 {
		printlnFn("Nothing to delete")
		return nil
	}
	printMoods(a.myView)

	mood, ok, err := a.pickMood(moods, "Delete which one? (number)")
	if err != nil || !ok {
		return err
	}

	if err := a.session.Repository().DeleteMood(ctx, *user, mood); err != nil {
		fmt.Println("Error:", err)
		return err
	}
	printlnFn("Deleted")
	return nil
}

// EditMood re-prompts the fields of an existing mood and saves the changes.
// Empty input keeps the current value; "-" clears an optional field.
func (a *App) EditMood(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	moods := a.myView.Moods()
	if len(moods) == 0 {
		printlnFn("Nothing to edit")
		return nil
	}
	printMoods(a.myView)

	mood, ok, err := a.pickMood(moods, "Edit which one? (number)")
	if err != nil || !ok {
		return err
	}

	for _, s := range models.States() {
		printlnFn(fmt.Sprintf("  %d: %s", s.Code(), s))
	}
	stateText, err := getSimpleText(a.reader, fmt.Sprintf("Emotional state (number, empty keeps %s)", mood.State), os.Stdout)
	if err != nil {
		return err
	}
	state := mood.State
	if stateText != "" {
		code, err := strconv.Atoi(stateText)
		if err != nil {
			printlnFn("Not a number:", stateText)
			return nil
		}
		s, ok := models.StateByCode(code)
		if !ok {
			printlnFn("Unknown state code:", stateText)
			return nil
		}
		state = s
	}

	situationText, err := getSimpleText(a.reader, "Social situation (number, empty keeps current, - for none)", os.Stdout)
	if err != nil {
		return err
	}
	situation := mood.Situation
	switch situationText {
	case "":
	case "-":
		situation = nil
	default:
		scode, err := strconv.Atoi(situationText)
		if err != nil {
			printlnFn("Not a number:", situationText)
			return nil
		}
		s, ok := models.SituationByCode(scode)
		if !ok {
			printlnFn("Unknown situation code:", situationText)
			return nil
		}
		situation = &s
	}

	reason, err := getSimpleText(a.reader, "Reason (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = mood.Reason
	}

	locationText, err := getSimpleText(a.reader, "Location lat,lon (empty keeps current, - for none)", os.Stdout)
	if err != nil {
		return err
	}
	location := mood.Location
	switch locationText {
	case "":
	case "-":
		location = nil
	default:
		loc, ok := parseLocation(locationText)
		if !ok {
			printlnFn("Bad location:", locationText)
			return nil
		}
		location = loc
	}

	edited, err := models.PersistedMood(mood.ID, state, mood.Datetime, situation, reason, location)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	if err := a.session.Repository().UpdateMood(ctx, *user, edited); err != nil {
		fmt.Println("Error:", err)
		return err
	}
	printlnFn("Mood updated")
	return nil
}

// pickMood reads a 1-based list position and returns the chosen mood.
func (a *App) pickMood(moods []models.Mood, prompt string) (models.Mood, bool, error) {
	text, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return models.Mood{}, false, err
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(moods) {
		printlnFn("No such entry:", text)
		return models.Mood{}, false, nil
	}
	return moods[n-1], true, nil
}

func printMoods(view *moodfeed.FilterView) {
	moods := view.Moods()
	if len(moods) == 0 {
		printlnFn("No moods")
		return
	}
	for i, m := range moods {
		printlnFn(fmt.Sprintf("%3d. %s", i+1, formatMood(m)))
	}
}

func formatMood(m models.Mood) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s", m.Datetime.Local().Format("2006-01-02 15:04"), m.State)
	if m.Situation != nil {
		fmt.Fprintf(&sb, "  [%s]", *m.Situation)
	}
	if m.Reason != "" {
		fmt.Fprintf(&sb, "  %q", m.Reason)
	}
	if m.Location != nil {
		fmt.Fprintf(&sb, "  @(%.4f, %.4f)", m.Location.Lat, m.Location.Lon)
	}
	return sb.String()
}

func parseLocation(text string) (*models.GeoPoint, bool) {
	if text == "" {
		return nil, true
	}
	parts := strings.SplitN(text, ",", 2)
	if len(parts) != 2 {
		return nil, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, false
	}
	return &models.GeoPoint{Lat: lat, Lon: lon}, true
}

func stateByNameOrCode(arg string) (models.EmotionalState, bool) {
	if code, err := strconv.Atoi(arg); err == nil {
		return models.StateByCode(code)
	}
	for _, s := range models.States() {
		if strings.EqualFold(s.String(), arg) {
			return s, true
		}
	}
	return 0, false
}

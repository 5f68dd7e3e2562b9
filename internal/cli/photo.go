package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/moodstream/internal/common"
	"github.com/dmitrijs2005/moodstream/internal/photos"
)

// AttachPhoto reads an image file and stores it as the attachment of one of
// the current user's moods.
func (a *App) AttachPhoto(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	moods := a.myView.Moods()
	if len(moods) == 0 {
		printlnFn("No moods to attach to")
		return nil
	}
	printMoods(a.myView)

	mood, ok, err := a.pickMood(moods, "Attach to which one? (number)")
	if err != nil || !ok {
		return err
	}

	path, err := getSimpleText(a.reader, "Path to image file", os.Stdout)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}

	key := photos.MoodKey(user.Username, mood.ID)
	if err := a.photos.Put(ctx, key, data, contentTypeByExt(path)); err != nil {
		fmt.Println("Error:", err)
		return err
	}
	printlnFn("Photo attached")
	return nil
}

// ShowPhoto fetches a mood's attachment and writes it to a temp file.
func (a *App) ShowPhoto(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	moods := a.myView.Moods()
	if len(moods) == 0 {
		printlnFn("No moods")
		return nil
	}
	printMoods(a.myView)

	mood, ok, err := a.pickMood(moods, "Show photo of which one? (number)")
	if err != nil || !ok {
		return err
	}

	data, err := a.photos.Get(ctx, photos.MoodKey(user.Username, mood.ID))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No photo attached")
			return nil
		}
		fmt.Println("Error:", err)
		return err
	}

	out, err := os.CreateTemp("", "mood-*.img")
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		fmt.Println("Error:", err)
		return err
	}
	printlnFn("Photo saved to", out.Name())
	return nil
}

func contentTypeByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// Package photos stores mood photo attachments outside the document
// database. Objects are keyed by the owning mood's document path, so an
// attachment follows its mood and is easy to clean up with it.
package photos

import "context"

// Store persists photo bytes under string keys.
type Store interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the object stored under key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the object under key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// MoodKey returns the storage key for a mood's photo attachment.
func MoodKey(username, moodID string) string {
	return "users/" + username + "/moods/" + moodID
}

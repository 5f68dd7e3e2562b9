// Package docmap owns the backend document layout: every collection,
// document, and field name, the path builders, and the pure conversions
// between domain entities and docstore fields. Changing the backend schema
// should never require touching anything outside this package.
package docmap

// Collections.
const (
	CollectionUsers    = "users"
	CollectionRequests = "requests"
	CollectionMoods    = "moods"
	CollectionPrivate  = "private"
)

// Fixed document ids.
const (
	DocumentCredential = "credential"
	DocumentFollower   = "follower"
)

// Fields.
const (
	FieldUserFirstName = "first_name"
	FieldUserLastName  = "last_name"

	FieldCredentialPassword = "password"

	FieldFollowerList = "follower_list"

	FieldMoodOwner     = "owner"
	FieldMoodState     = "state"
	FieldMoodDatetime  = "datetime"
	FieldMoodSituation = "situation"
	FieldMoodReason    = "reason"
	FieldMoodLocation  = "location"
	FieldMoodImage     = "image"

	FieldRequestFrom = "from"
	FieldRequestTo   = "to"
)

// UserPath returns the profile document path for a username.
func UserPath(username string) string {
	return CollectionUsers + "/" + username
}

// CredentialPath returns the private credential document path for a username.
func CredentialPath(username string) string {
	return UserPath(username) + "/" + CollectionPrivate + "/" + DocumentCredential
}

// FollowerPath returns the private follower-list document path for a username.
func FollowerPath(username string) string {
	return UserPath(username) + "/" + CollectionPrivate + "/" + DocumentFollower
}

// MoodsCollection returns the moods subcollection path for a username.
func MoodsCollection(username string) string {
	return UserPath(username) + "/" + CollectionMoods
}

// MoodPath returns the document path of a persisted mood.
func MoodPath(username, moodID string) string {
	return MoodsCollection(username) + "/" + moodID
}

// RequestPath returns the document path of a persisted request.
func RequestPath(requestID string) string {
	return CollectionRequests + "/" + requestID
}

package docmap

import (
	"github.com/dmitrijs2005/moodstream/internal/docstore"
	"github.com/dmitrijs2005/moodstream/internal/models"
)

// UserFromDoc converts a profile document to a User. The username is the
// document id; missing name fields are a malformed record.
func UserFromDoc(doc *docstore.Document) (models.User, error) {
	firstName, ok := doc.String(FieldUserFirstName)
	if !ok {
		return models.User{}, malformed(doc.Path, FieldUserFirstName)
	}
	lastName, ok := doc.String(FieldUserLastName)
	if !ok {
		return models.User{}, malformed(doc.Path, FieldUserLastName)
	}
	return models.NewUser(doc.ID(), firstName, lastName), nil
}

// UserToDoc converts a User to its profile document fields. The username is
// carried by the document path, not a field.
func UserToDoc(user models.User) docstore.Fields {
	return docstore.Fields{
		FieldUserFirstName: user.FirstName,
		FieldUserLastName:  user.LastName,
	}
}

// MoodFromDoc converts a mood document to a Mood. State, datetime, and
// reason are required; situation and location map missing-or-null to absent.
// The owner field is deliberately not read back (it is query metadata).
func MoodFromDoc(doc *docstore.Document) (models.Mood, error) {
	code, ok := doc.Int(FieldMoodState)
	if !ok {
		return models.Mood{}, malformed(doc.Path, FieldMoodState)
	}
	state, ok := models.StateByCode(int(code))
	if !ok {
		return models.Mood{}, malformed(doc.Path, FieldMoodState)
	}

	datetime, ok := doc.Time(FieldMoodDatetime)
	if !ok {
		return models.Mood{}, malformed(doc.Path, FieldMoodDatetime)
	}

	reason, ok := doc.String(FieldMoodReason)
	if !ok {
		return models.Mood{}, malformed(doc.Path, FieldMoodReason)
	}

	var situation *models.SocialSituation
	if doc.Has(FieldMoodSituation) && !doc.IsNull(FieldMoodSituation) {
		sitCode, ok := doc.Int(FieldMoodSituation)
		if !ok {
			return models.Mood{}, malformed(doc.Path, FieldMoodSituation)
		}
		sit, ok := models.SituationByCode(int(sitCode))
		if !ok {
			return models.Mood{}, malformed(doc.Path, FieldMoodSituation)
		}
		situation = &sit
	}

	var location *models.GeoPoint
	if doc.Has(FieldMoodLocation) && !doc.IsNull(FieldMoodLocation) {
		gp, ok := doc.GeoPoint(FieldMoodLocation)
		if !ok {
			return models.Mood{}, malformed(doc.Path, FieldMoodLocation)
		}
		location = &models.GeoPoint{Lat: gp.Lat, Lon: gp.Lon}
	}

	return models.PersistedMood(doc.ID(), state, datetime, situation, reason, location)
}

// MoodToDoc converts a Mood to its document fields. The owner username is
// written for the cross-user feed query but never read back into the entity,
// and the image field is always null: photo data lives out of band.
func MoodToDoc(mood models.Mood, owner models.User) docstore.Fields {
	fields := docstore.Fields{
		FieldMoodOwner:    owner.Username,
		FieldMoodState:    int64(mood.State.Code()),
		FieldMoodDatetime: mood.Datetime.UTC(),
		FieldMoodReason:   mood.Reason,
	}

	if mood.Situation != nil {
		fields[FieldMoodSituation] = int64(mood.Situation.Code())
	} else {
		fields[FieldMoodSituation] = nil
	}

	if mood.Location != nil {
		fields[FieldMoodLocation] = docstore.GeoPoint{Lat: mood.Location.Lat, Lon: mood.Location.Lon}
	} else {
		fields[FieldMoodLocation] = nil
	}

	fields[FieldMoodImage] = nil

	return fields
}

// RequestFromDoc converts a request document to a Request.
func RequestFromDoc(doc *docstore.Document) (models.Request, error) {
	from, ok := doc.String(FieldRequestFrom)
	if !ok {
		return models.Request{}, malformed(doc.Path, FieldRequestFrom)
	}
	to, ok := doc.String(FieldRequestTo)
	if !ok {
		return models.Request{}, malformed(doc.Path, FieldRequestTo)
	}
	return models.PersistedRequest(doc.ID(), from, to)
}

// RequestToDoc converts a Request to its document fields.
func RequestToDoc(request models.Request) docstore.Fields {
	return docstore.Fields{
		FieldRequestFrom: request.From,
		FieldRequestTo:   request.To,
	}
}

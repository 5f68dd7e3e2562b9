package repository

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/moodstream/internal/common"
	"github.com/dmitrijs2005/moodstream/internal/docmap"
	"github.com/dmitrijs2005/moodstream/internal/docstore"
	"github.com/dmitrijs2005/moodstream/internal/logging"
	"github.com/dmitrijs2005/moodstream/internal/models"
)

// docRepository implements Repository over a docstore.Client.
type docRepository struct {
	client docstore.Client
	logger logging.Logger
}

// NewDocRepository returns a Repository backed by client.
func NewDocRepository(client docstore.Client, logger logging.Logger) Repository {
	return &docRepository{client: client, logger: logger.With("component", "repository")}
}

func (r *docRepository) UserExists(ctx context.Context, username string) (bool, error) {
	_, err := r.client.Get(ctx, docmap.UserPath(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("user lookup: %w", err)
	}
	return true, nil
}

func (r *docRepository) RegisterUser(ctx context.Context, username, password, firstName, lastName string) error {
	if username == "" || password == "" || firstName == "" || lastName == "" {
		return fmt.Errorf("%w: all registration fields are required", common.ErrValidation)
	}

	user := models.NewUser(username, firstName, lastName)
	batch := docstore.NewBatch().
		Set(docmap.UserPath(username), docmap.UserToDoc(user)).
		Set(docmap.CredentialPath(username), docstore.Fields{docmap.FieldCredentialPassword: password}).
		Set(docmap.FollowerPath(username), docstore.Fields{docmap.FieldFollowerList: []string{}})

	if err := r.client.Apply(ctx, batch); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	r.logger.Info(ctx, "user registered", "username", username)
	return nil
}

func (r *docRepository) ValidateUser(ctx context.Context, username, password string) (*models.User, error) {
	var profile, credential *docstore.Document
	var profileFound bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := r.client.Get(gctx, docmap.UserPath(username))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return fmt.Errorf("profile lookup: %w", err)
		}
		profile, profileFound = doc, true
		return nil
	})
	g.Go(func() error {
		doc, err := r.client.Get(gctx, docmap.CredentialPath(username))
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("credential lookup: %w", err)
		}
		credential = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !profileFound {
		return nil, nil
	}
	if credential == nil {
		return nil, fmt.Errorf("%w: user %q has no credential record", common.ErrCorruptState, username)
	}
	stored, ok := credential.String(docmap.FieldCredentialPassword)
	if !ok {
		return nil, fmt.Errorf("%w: user %q credential record has no password field", common.ErrCorruptState, username)
	}
	if stored != password {
		return nil, nil
	}

	user, err := docmap.UserFromDoc(profile)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *docRepository) CreateMood(ctx context.Context, owner models.User, mood models.Mood) error {
	if mood.Persisted() {
		return fmt.Errorf("%w: mood %s", common.ErrAlreadyPersisted, mood.ID)
	}
	if _, err := r.client.Create(ctx, docmap.MoodsCollection(owner.Username), docmap.MoodToDoc(mood, owner)); err != nil {
		return fmt.Errorf("create mood: %w", err)
	}
	return nil
}

func (r *docRepository) UpdateMood(ctx context.Context, owner models.User, mood models.Mood) error {
	if !mood.Persisted() {
		return fmt.Errorf("%w: mood has no id", common.ErrNotPersisted)
	}
	batch := docstore.NewBatch().Update(docmap.MoodPath(owner.Username, mood.ID), docmap.MoodToDoc(mood, owner))
	if err := r.client.Apply(ctx, batch); err != nil {
		return fmt.Errorf("update mood %s: %w", mood.ID, err)
	}
	return nil
}

func (r *docRepository) DeleteMood(ctx context.Context, owner models.User, mood models.Mood) error {
	if !mood.Persisted() {
		return fmt.Errorf("%w: mood has no id", common.ErrNotPersisted)
	}
	batch := docstore.NewBatch().Delete(docmap.MoodPath(owner.Username, mood.ID))
	if err := r.client.Apply(ctx, batch); err != nil {
		return fmt.Errorf("delete mood %s: %w", mood.ID, err)
	}
	return nil
}

func (r *docRepository) GetUserMoods(ctx context.Context, user models.User, cb MoodsCallback) (Registration, error) {
	query := docstore.Query{
		Collection: docmap.MoodsCollection(user.Username),
		OrderBy:    []docstore.Order{{Field: docmap.FieldMoodDatetime, Desc: true}},
	}
	reg, err := r.client.SubscribeQuery(ctx, query, func(docs []docstore.Document, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(moodsFromDocs(docs))
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe moods: %w", err)
	}
	return reg, nil
}

func (r *docRepository) GetFollowingList(ctx context.Context, user models.User, cb FollowingCallback) (Registration, error) {
	path := docmap.FollowerPath(user.Username)
	reg, err := r.client.SubscribeDoc(ctx, path, func(doc *docstore.Document, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		if doc == nil {
			cb(nil, fmt.Errorf("%w: user %q has no follower record", common.ErrCorruptState, user.Username))
			return
		}
		list, ok := doc.StringSlice(docmap.FieldFollowerList)
		if !ok {
			cb(nil, fmt.Errorf("%w: follower record of %q has no list field", common.ErrCorruptState, user.Username))
			return
		}
		cb(list, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe follower list: %w", err)
	}
	return reg, nil
}

func (r *docRepository) GetFollowingMoods(ctx context.Context, user models.User, following func() []string, cb MoodsCallback) (Registration, error) {
	query := docstore.Query{
		Group: docmap.CollectionMoods,
		OrderBy: []docstore.Order{
			{Field: docmap.FieldMoodDatetime, Desc: true},
			{Field: docmap.FieldMoodOwner},
		},
	}
	reg, err := r.client.SubscribeQuery(ctx, query, func(docs []docstore.Document, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(latestPerOwner(docs, following()))
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe following moods: %w", err)
	}
	return reg, nil
}

func (r *docRepository) GetUserRequests(ctx context.Context, user models.User, cb RequestsCallback) (Registration, error) {
	query := docstore.Query{
		Collection: docmap.CollectionRequests,
		Field:      docmap.FieldRequestTo,
		Equals:     user.Username,
	}
	reg, err := r.client.SubscribeQuery(ctx, query, func(docs []docstore.Document, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(requestsFromDocs(docs))
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe requests: %w", err)
	}
	return reg, nil
}

func (r *docRepository) CreateRequest(ctx context.Context, request models.Request) error {
	if request.Persisted() {
		return fmt.Errorf("%w: request %s", common.ErrAlreadyPersisted, request.ID)
	}
	if _, err := r.client.Create(ctx, docmap.CollectionRequests, docmap.RequestToDoc(request)); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func (r *docRepository) AcceptRequest(ctx context.Context, request models.Request) error {
	if !request.Persisted() {
		return fmt.Errorf("%w: request has no id", common.ErrNotPersisted)
	}
	batch := docstore.NewBatch().
		ArrayUnion(docmap.FollowerPath(request.From), docmap.FieldFollowerList, request.To).
		Delete(docmap.RequestPath(request.ID))
	if err := r.client.Apply(ctx, batch); err != nil {
		return fmt.Errorf("accept request %s: %w", request.ID, err)
	}
	r.logger.Info(ctx, "request accepted", "from", request.From, "to", request.To)
	return nil
}

func (r *docRepository) DeclineRequest(ctx context.Context, request models.Request) error {
	if !request.Persisted() {
		return fmt.Errorf("%w: request has no id", common.ErrNotPersisted)
	}
	batch := docstore.NewBatch().Delete(docmap.RequestPath(request.ID))
	if err := r.client.Apply(ctx, batch); err != nil {
		return fmt.Errorf("decline request %s: %w", request.ID, err)
	}
	return nil
}

// moodsFromDocs converts a snapshot, preserving order. The first malformed
// document fails the whole delivery.
func moodsFromDocs(docs []docstore.Document) ([]models.Mood, error) {
	moods := make([]models.Mood, 0, len(docs))
	for i := range docs {
		mood, err := docmap.MoodFromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		moods = append(moods, mood)
	}
	return moods, nil
}

func requestsFromDocs(docs []docstore.Document) ([]models.Request, error) {
	requests := make([]models.Request, 0, len(docs))
	for i := range docs {
		request, err := docmap.RequestFromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// latestPerOwner scans docs, already ordered newest first with owner as the
// tie-break, and keeps the first mood seen for each owner still in the
// working set. The scan stops as soon as every followed owner is resolved.
func latestPerOwner(docs []docstore.Document, following []string) ([]models.Mood, error) {
	pending := make(map[string]struct{}, len(following))
	for _, owner := range following {
		pending[owner] = struct{}{}
	}

	moods := make([]models.Mood, 0, len(pending))
	for i := range docs {
		if len(pending) == 0 {
			break
		}
		owner, ok := docs[i].String(docmap.FieldMoodOwner)
		if !ok {
			return nil, &docmap.MalformedRecordError{Path: docs[i].Path, Field: docmap.FieldMoodOwner}
		}
		if _, want := pending[owner]; !want {
			continue
		}
		delete(pending, owner)
		mood, err := docmap.MoodFromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		moods = append(moods, mood)
	}
	return moods, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"khamboran/internal/models"
)

// ProfileStore persists learner identity records in the User collection.
type ProfileStore struct {
	store *DualStore
}

// NewProfileStore wraps a dual store.
func NewProfileStore(store *DualStore) *ProfileStore {
	return &ProfileStore{store: store}
}

// Save writes a profile keyed by learner id.
func (s *ProfileStore) Save(ctx context.Context, profile *models.LearnerProfile) error {
	doc, err := profileToDoc(profile)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, CollectionUsers, profile.ID, doc)
}

// Get loads a profile, or nil when the learner is unknown.
func (s *ProfileStore) Get(ctx context.Context, learnerID string) (*models.LearnerProfile, error) {
	fields, err := s.store.Get(ctx, CollectionUsers, learnerID)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, nil
	}
	return profileFromDoc(fields)
}

// Merge applies updated fields onto the stored profile document and writes
// it back through both backends.
func (s *ProfileStore) Merge(ctx context.Context, learnerID string, updates map[string]any) (*models.LearnerProfile, error) {
	fields, err := s.store.Get(ctx, CollectionUsers, learnerID)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{"studentId": learnerID}
	}
	for k, v := range updates {
		fields[k] = v
	}
	if err := s.store.Put(ctx, CollectionUsers, learnerID, fields); err != nil {
		return nil, err
	}
	return profileFromDoc(fields)
}

// Delete removes the identity record from both backends.
func (s *ProfileStore) Delete(ctx context.Context, learnerID string) error {
	return s.store.Delete(ctx, CollectionUsers, learnerID)
}

// AllLearners lists every identity record that is not a teacher account.
func (s *ProfileStore) AllLearners(ctx context.Context) ([]*models.LearnerProfile, error) {
	docs, err := s.store.Query(ctx, CollectionUsers, nil)
	if err != nil {
		return nil, err
	}
	var out []*models.LearnerProfile
	for _, doc := range docs {
		p, err := profileFromDoc(doc.Fields)
		if err != nil || p.IsTeacher {
			continue
		}
		if p.ID == "" {
			p.ID = doc.Key
		}
		out = append(out, p)
	}
	return out, nil
}

func profileToDoc(profile *models.LearnerProfile) (map[string]any, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile %s: %w", profile.ID, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	return doc, nil
}

func profileFromDoc(fields map[string]any) (*models.LearnerProfile, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode profile document: %w", err)
	}
	var p models.LearnerProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

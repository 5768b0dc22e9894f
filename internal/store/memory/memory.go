// Package memory is an in-process implementation of voting.Store. It
// backs the engine in tests and local development where no Postgres is
// available.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tripwisego/feature-board/backend/internal/models"
	"github.com/tripwisego/feature-board/backend/internal/voting"
)

type Store struct {
	mu       sync.Mutex
	features map[string]*models.Feature
	votes    map[int]*models.Vote
	nextID   int
}

func NewStore() *Store {
	return &Store{
		features: make(map[string]*models.Feature),
		votes:    make(map[int]*models.Vote),
		nextID:   1,
	}
}

// txStore is the view handed to Atomically callbacks. The outer store's
// lock is already held, so methods call the unlocked internals directly.
type txStore struct {
	s *Store
}

var (
	_ voting.Store = (*Store)(nil)
	_ voting.Store = txStore{}
)

// PutFeature seeds or replaces a feature record.
func (s *Store) PutFeature(f *models.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	now := time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.features[cp.ID] = &cp
}

// Feature returns a copy of the stored feature, or nil.
func (s *Store) Feature(featureID string) *models.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.features[featureID]
	if !ok {
		return nil
	}
	cp := *f
	return &cp
}

func (s *Store) Atomically(ctx context.Context, featureID string, fn func(voting.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.features[featureID]; !ok {
		return voting.ErrFeatureNotFound
	}
	return fn(txStore{s: s})
}

func (s *Store) FindVote(ctx context.Context, featureID, userID string) (*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findVote(featureID, userID), nil
}

func (s *Store) findVote(featureID, userID string) *models.Vote {
	for _, v := range s.votes {
		if v.FeatureID == featureID && v.UserID == userID {
			cp := *v
			return &cp
		}
	}
	return nil
}

func (s *Store) InsertVote(ctx context.Context, featureID, userID, voteType string) (*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertVote(featureID, userID, voteType)
}

func (s *Store) insertVote(featureID, userID, voteType string) (*models.Vote, error) {
	if s.findVote(featureID, userID) != nil {
		return nil, voting.ErrDuplicateVote
	}
	now := time.Now().UTC()
	v := &models.Vote{
		ID:        s.nextID,
		FeatureID: featureID,
		UserID:    userID,
		VoteType:  voteType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.votes[v.ID] = v
	cp := *v
	return &cp, nil
}

func (s *Store) UpdateVote(ctx context.Context, voteID int, voteType string) (*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateVote(voteID, voteType)
}

func (s *Store) updateVote(voteID int, voteType string) (*models.Vote, error) {
	v, ok := s.votes[voteID]
	if !ok {
		return nil, voting.ErrVoteNotFound
	}
	v.VoteType = voteType
	v.UpdatedAt = time.Now().UTC()
	cp := *v
	return &cp, nil
}

func (s *Store) RemoveVote(ctx context.Context, featureID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeVote(featureID, userID)
}

func (s *Store) removeVote(featureID, userID string) error {
	for id, v := range s.votes {
		if v.FeatureID == featureID && v.UserID == userID {
			delete(s.votes, id)
			return nil
		}
	}
	return voting.ErrVoteNotFound
}

func (s *Store) CountVotesByType(ctx context.Context, featureID, voteType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countVotesByType(featureID, voteType), nil
}

func (s *Store) countVotesByType(featureID, voteType string) int64 {
	var n int64
	for _, v := range s.votes {
		if v.FeatureID == featureID && v.VoteType == voteType {
			n++
		}
	}
	return n
}

func (s *Store) CountVotes(ctx context.Context, voteType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countVotes(voteType), nil
}

func (s *Store) countVotes(voteType string) int64 {
	var n int64
	for _, v := range s.votes {
		if voteType == "" || v.VoteType == voteType {
			n++
		}
	}
	return n
}

func (s *Store) VotesByUser(ctx context.Context, userID string) ([]models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votesByUser(userID), nil
}

func (s *Store) votesByUser(userID string) []models.Vote {
	var out []models.Vote
	for _, v := range s.votes {
		if v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out
}

func (s *Store) GetActiveFeature(ctx context.Context, featureID string) (*models.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getActiveFeature(featureID)
}

func (s *Store) getActiveFeature(featureID string) (*models.Feature, error) {
	f, ok := s.features[featureID]
	if !ok || f.Status != models.StatusActive {
		return nil, voting.ErrFeatureNotFound
	}
	cp := *f
	return &cp, nil
}

func (s *Store) SetVoteTally(ctx context.Context, featureID string, votes int) (*models.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setVoteTally(featureID, votes)
}

func (s *Store) setVoteTally(featureID string, votes int) (*models.Feature, error) {
	f, ok := s.features[featureID]
	if !ok {
		return nil, voting.ErrFeatureNotFound
	}
	f.Votes = votes
	f.UpdatedAt = time.Now().UTC()
	cp := *f
	return &cp, nil
}

func (t txStore) Atomically(ctx context.Context, featureID string, fn func(voting.Store) error) error {
	if _, ok := t.s.features[featureID]; !ok {
		return voting.ErrFeatureNotFound
	}
	return fn(t)
}

func (t txStore) FindVote(ctx context.Context, featureID, userID string) (*models.Vote, error) {
	return t.s.findVote(featureID, userID), nil
}

func (t txStore) InsertVote(ctx context.Context, featureID, userID, voteType string) (*models.Vote, error) {
	return t.s.insertVote(featureID, userID, voteType)
}

func (t txStore) UpdateVote(ctx context.Context, voteID int, voteType string) (*models.Vote, error) {
	return t.s.updateVote(voteID, voteType)
}

func (t txStore) RemoveVote(ctx context.Context, featureID, userID string) error {
	return t.s.removeVote(featureID, userID)
}

func (t txStore) CountVotesByType(ctx context.Context, featureID, voteType string) (int64, error) {
	return t.s.countVotesByType(featureID, voteType), nil
}

func (t txStore) CountVotes(ctx context.Context, voteType string) (int64, error) {
	return t.s.countVotes(voteType), nil
}

func (t txStore) VotesByUser(ctx context.Context, userID string) ([]models.Vote, error) {
	return t.s.votesByUser(userID), nil
}

func (t txStore) GetActiveFeature(ctx context.Context, featureID string) (*models.Feature, error) {
	return t.s.getActiveFeature(featureID)
}

func (t txStore) SetVoteTally(ctx context.Context, featureID string, votes int) (*models.Feature, error) {
	return t.s.setVoteTally(featureID, votes)
}

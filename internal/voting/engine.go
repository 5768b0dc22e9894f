// Package voting implements the voting engine for the feature-request
// board: it decides whether an incoming vote is a new vote, a vote-type
// change, or a rejected duplicate, and keeps each feature's cached vote
// tally consistent with the underlying vote ledger.
package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/tripwisego/feature-board/backend/internal/models"
)

// Ledger is the durable set of vote records. Implementations must
// enforce at most one record per (featureID, userID) pair; InsertVote
// returns ErrDuplicateVote on a uniqueness violation.
type Ledger interface {
	// FindVote returns the vote for the pair, or (nil, nil) when absent.
	FindVote(ctx context.Context, featureID, userID string) (*models.Vote, error)
	InsertVote(ctx context.Context, featureID, userID, voteType string) (*models.Vote, error)
	UpdateVote(ctx context.Context, voteID int, voteType string) (*models.Vote, error)
	// RemoveVote deletes the record for the pair, ErrVoteNotFound if none.
	RemoveVote(ctx context.Context, featureID, userID string) error
	CountVotesByType(ctx context.Context, featureID, voteType string) (int64, error)
	// CountVotes counts across the whole ledger; voteType "" counts all.
	CountVotes(ctx context.Context, voteType string) (int64, error)
	VotesByUser(ctx context.Context, userID string) ([]models.Vote, error)
}

// FeatureStore is the durable set of feature records with their tallies.
type FeatureStore interface {
	// GetActiveFeature returns the feature only if its status is active,
	// ErrFeatureNotFound otherwise.
	GetActiveFeature(ctx context.Context, featureID string) (*models.Feature, error)
	SetVoteTally(ctx context.Context, featureID string, votes int) (*models.Feature, error)
}

// Store combines the ledger and feature store behind a single atomic
// boundary. Atomically runs fn against a view of the store in which the
// whole read-modify-write for one feature is serialized with respect to
// concurrent calls for the same feature; votes on different features
// proceed in parallel. Atomically fails with ErrFeatureNotFound when the
// feature does not exist at all.
type Store interface {
	Ledger
	FeatureStore
	Atomically(ctx context.Context, featureID string, fn func(Store) error) error
}

// Receipt is returned to the caller after a successful vote.
type Receipt struct {
	FeatureID string `json:"featureId"`
	VoteType  string `json:"voteType"`
	UserID    string `json:"userId"`
}

// Statistics is a whole-ledger rollup.
type Statistics struct {
	TotalVotes int64     `json:"totalVotes"`
	UpVotes    int64     `json:"upVotes"`
	DownVotes  int64     `json:"downVotes"`
	Timestamp  time.Time `json:"timestamp"`
}

// FeatureVoteCount is the per-feature rollup. TotalVotes is the clamped
// net count, never negative.
type FeatureVoteCount struct {
	UpVotes    int64 `json:"upVotes"`
	DownVotes  int64 `json:"downVotes"`
	TotalVotes int64 `json:"totalVotes"`
}

// UserVote is one entry of a per-user vote listing.
type UserVote struct {
	FeatureID string    `json:"featureId"`
	VoteType  string    `json:"voteType"`
	Timestamp time.Time `json:"timestamp"`
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// VoteOnFeature records userID's vote on featureID. A first vote inserts
// a ledger record; a repeat vote of the same type fails with
// ErrDuplicateVote; a vote of the opposite type mutates the existing
// record in place. The feature's tally is recomputed from fresh ledger
// counts before the atomic scope ends.
func (e *Engine) VoteOnFeature(ctx context.Context, featureID, voteType, userID string) (*Receipt, error) {
	if featureID == "" || voteType == "" || userID == "" {
		return nil, ErrInvalidArgument
	}
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return nil, ErrInvalidVoteType
	}

	err := e.store.Atomically(ctx, featureID, func(s Store) error {
		if _, err := s.GetActiveFeature(ctx, featureID); err != nil {
			return err
		}

		existing, err := s.FindVote(ctx, featureID, userID)
		if err != nil {
			return fmt.Errorf("check existing vote: %w", err)
		}

		switch {
		case existing == nil:
			if _, err := s.InsertVote(ctx, featureID, userID, voteType); err != nil {
				return err
			}
		case existing.VoteType == voteType:
			return ErrDuplicateVote
		default:
			if _, err := s.UpdateVote(ctx, existing.ID, voteType); err != nil {
				return fmt.Errorf("update vote: %w", err)
			}
		}

		return reconcileTally(ctx, s, featureID)
	})
	if err != nil {
		return nil, err
	}

	return &Receipt{FeatureID: featureID, VoteType: voteType, UserID: userID}, nil
}

// RetractVote removes userID's vote on featureID and reconciles the
// tally in the same atomic scope. Retracting a vote that was never cast
// fails with ErrVoteNotFound.
func (e *Engine) RetractVote(ctx context.Context, featureID, userID string) error {
	if featureID == "" || userID == "" {
		return ErrInvalidArgument
	}

	return e.store.Atomically(ctx, featureID, func(s Store) error {
		if err := s.RemoveVote(ctx, featureID, userID); err != nil {
			return err
		}
		return reconcileTally(ctx, s, featureID)
	})
}

// reconcileTally re-reads the ledger counts and persists
// max(up-down, 0) on the feature. Counts are read inside the atomic
// scope so a concurrent vote-change cannot leave a stale tally behind.
func reconcileTally(ctx context.Context, s Store, featureID string) error {
	up, err := s.CountVotesByType(ctx, featureID, models.VoteUp)
	if err != nil {
		return fmt.Errorf("count up votes: %w", err)
	}
	down, err := s.CountVotesByType(ctx, featureID, models.VoteDown)
	if err != nil {
		return fmt.Errorf("count down votes: %w", err)
	}

	tally := up - down
	if tally < 0 {
		tally = 0
	}

	if _, err := s.SetVoteTally(ctx, featureID, int(tally)); err != nil {
		return fmt.Errorf("persist tally: %w", err)
	}
	return nil
}

// FeatureVotes returns the up/down counts and clamped net total for one
// feature.
func (e *Engine) FeatureVotes(ctx context.Context, featureID string) (*FeatureVoteCount, error) {
	if featureID == "" {
		return nil, ErrInvalidArgument
	}

	up, err := e.store.CountVotesByType(ctx, featureID, models.VoteUp)
	if err != nil {
		return nil, fmt.Errorf("count up votes: %w", err)
	}
	down, err := e.store.CountVotesByType(ctx, featureID, models.VoteDown)
	if err != nil {
		return nil, fmt.Errorf("count down votes: %w", err)
	}

	total := up - down
	if total < 0 {
		total = 0
	}
	return &FeatureVoteCount{UpVotes: up, DownVotes: down, TotalVotes: total}, nil
}

// UserVotes lists every vote cast by userID across all features.
func (e *Engine) UserVotes(ctx context.Context, userID string) ([]UserVote, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}

	votes, err := e.store.VotesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user votes: %w", err)
	}

	out := make([]UserVote, 0, len(votes))
	for _, v := range votes {
		out = append(out, UserVote{
			FeatureID: v.FeatureID,
			VoteType:  v.VoteType,
			Timestamp: v.UpdatedAt,
		})
	}
	return out, nil
}

// VotingStatistics returns whole-ledger totals.
func (e *Engine) VotingStatistics(ctx context.Context) (*Statistics, error) {
	total, err := e.store.CountVotes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	up, err := e.store.CountVotes(ctx, models.VoteUp)
	if err != nil {
		return nil, fmt.Errorf("count up votes: %w", err)
	}
	down, err := e.store.CountVotes(ctx, models.VoteDown)
	if err != nil {
		return nil, fmt.Errorf("count down votes: %w", err)
	}

	return &Statistics{
		TotalVotes: total,
		UpVotes:    up,
		DownVotes:  down,
		Timestamp:  time.Now().UTC(),
	}, nil
}

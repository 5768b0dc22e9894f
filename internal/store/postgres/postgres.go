// Package postgres implements voting.Store on GORM/Postgres. Atomicity
// is provided by a transaction that takes a row lock on the feature, so
// concurrent votes on the same feature serialize at the database rather
// than in process; the unique index on (feature_id, user_id) backstops
// insert races that slip past the engine's pre-check.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tripwisego/feature-board/backend/internal/models"
	"github.com/tripwisego/feature-board/backend/internal/voting"
)

const uniqueViolation = "23505"

type Store struct {
	db *gorm.DB
}

var _ voting.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Atomically(ctx context.Context, featureID string, fn func(voting.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the feature row for the duration of the transaction.
		// Status is checked by the engine; the lock only needs the row
		// to exist.
		var feature models.Feature
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", featureID).
			First(&feature).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return voting.ErrFeatureNotFound
		}
		if err != nil {
			return fmt.Errorf("lock feature: %w", err)
		}

		return fn(&Store{db: tx})
	})
}

func (s *Store) FindVote(ctx context.Context, featureID, userID string) (*models.Vote, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("feature_id = ? AND user_id = ?", featureID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find vote: %w", err)
	}
	return &vote, nil
}

func (s *Store) InsertVote(ctx context.Context, featureID, userID, voteType string) (*models.Vote, error) {
	vote := models.Vote{
		FeatureID: featureID,
		UserID:    userID,
		VoteType:  voteType,
	}
	if err := s.db.WithContext(ctx).Create(&vote).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, voting.ErrDuplicateVote
		}
		return nil, fmt.Errorf("insert vote: %w", err)
	}
	return &vote, nil
}

func (s *Store) UpdateVote(ctx context.Context, voteID int, voteType string) (*models.Vote, error) {
	var vote models.Vote
	if err := s.db.WithContext(ctx).First(&vote, voteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, voting.ErrVoteNotFound
		}
		return nil, fmt.Errorf("load vote: %w", err)
	}

	vote.VoteType = voteType
	if err := s.db.WithContext(ctx).Save(&vote).Error; err != nil {
		return nil, fmt.Errorf("update vote: %w", err)
	}
	return &vote, nil
}

func (s *Store) RemoveVote(ctx context.Context, featureID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("feature_id = ? AND user_id = ?", featureID, userID).
		Delete(&models.Vote{})
	if res.Error != nil {
		return fmt.Errorf("remove vote: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return voting.ErrVoteNotFound
	}
	return nil
}

func (s *Store) CountVotesByType(ctx context.Context, featureID, voteType string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("feature_id = ? AND vote_type = ?", featureID, voteType).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}

func (s *Store) CountVotes(ctx context.Context, voteType string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Vote{})
	if voteType != "" {
		q = q.Where("vote_type = ?", voteType)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}

func (s *Store) VotesByUser(ctx context.Context, userID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("list user votes: %w", err)
	}
	return votes, nil
}

func (s *Store) GetActiveFeature(ctx context.Context, featureID string) (*models.Feature, error) {
	var feature models.Feature
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", featureID, models.StatusActive).
		First(&feature).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, voting.ErrFeatureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feature: %w", err)
	}
	return &feature, nil
}

func (s *Store) SetVoteTally(ctx context.Context, featureID string, votes int) (*models.Feature, error) {
	res := s.db.WithContext(ctx).Model(&models.Feature{}).
		Where("id = ?", featureID).
		Update("votes", votes)
	if res.Error != nil {
		return nil, fmt.Errorf("set vote tally: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, voting.ErrFeatureNotFound
	}

	var feature models.Feature
	if err := s.db.WithContext(ctx).First(&feature, "id = ?", featureID).Error; err != nil {
		return nil, fmt.Errorf("reload feature: %w", err)
	}
	return &feature, nil
}

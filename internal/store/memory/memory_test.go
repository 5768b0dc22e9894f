package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwisego/feature-board/backend/internal/models"
	"github.com/tripwisego/feature-board/backend/internal/store/memory"
	"github.com/tripwisego/feature-board/backend/internal/voting"
)

func TestInsertVoteEnforcesUniqueness(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.InsertVote(ctx, "feature-1", "alice", models.VoteUp)
	require.NoError(t, err)

	// The pair is unique regardless of vote type; the store is the last
	// line of defense against duplicate-insert races.
	_, err = store.InsertVote(ctx, "feature-1", "alice", models.VoteDown)
	assert.ErrorIs(t, err, voting.ErrDuplicateVote)

	_, err = store.InsertVote(ctx, "feature-2", "alice", models.VoteUp)
	assert.NoError(t, err)
	_, err = store.InsertVote(ctx, "feature-1", "bob", models.VoteUp)
	assert.NoError(t, err)
}

func TestAtomicallyUnknownFeature(t *testing.T) {
	store := memory.NewStore()

	err := store.Atomically(context.Background(), "ghost", func(voting.Store) error {
		t.Fatal("callback should not run for an unknown feature")
		return nil
	})
	assert.ErrorIs(t, err, voting.ErrFeatureNotFound)
}

func TestRemoveVote(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.InsertVote(ctx, "feature-1", "alice", models.VoteUp)
	require.NoError(t, err)

	require.NoError(t, store.RemoveVote(ctx, "feature-1", "alice"))
	assert.ErrorIs(t, store.RemoveVote(ctx, "feature-1", "alice"), voting.ErrVoteNotFound)
}

package file

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plug-market-bot/internal/features/giveaway/models"
	"plug-market-bot/internal/features/giveaway/repository"
)

func testGiveaway(id string) *models.Giveaway {
	return &models.Giveaway{
		ID:        id,
		ChannelID: "chan-1",
		GuildID:   "guild-1",
		Prize:     "Nitro",
		HostID:    "host-1",
		Winners:   2,
		Deadline:  time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond),
		Entrants:  []string{"u1", "u2", "u3"},
		Active:    true,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestFileRepositorySaveAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "giveaways.json")
	repo, err := NewFileGiveawayRepository(path)
	require.NoError(t, err)

	g := testGiveaway("msg-1")
	require.NoError(t, repo.Save(context.Background(), g))

	got, err := repo.GetByID(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, g.Prize, got.Prize)
	assert.Equal(t, g.Winners, got.Winners)
	assert.Equal(t, []string{"u1", "u2", "u3"}, got.Entrants)
	assert.True(t, got.Active)
}

func TestFileRepositorySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "giveaways.json")

	repo, err := NewFileGiveawayRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), testGiveaway("msg-1")))
	require.NoError(t, repo.Save(context.Background(), testGiveaway("msg-2")))

	reopened, err := NewFileGiveawayRepository(path)
	require.NoError(t, err)

	all, err := reopened.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	got, err := reopened.GetByID(context.Background(), "msg-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, got.Entrants)
	assert.True(t, got.Deadline.After(time.Now()))
}

func TestFileRepositoryMissingFileMeansEmpty(t *testing.T) {
	repo, err := NewFileGiveawayRepository(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileRepositoryGetUnknown(t *testing.T) {
	repo, err := NewFileGiveawayRepository(filepath.Join(t.TempDir(), "giveaways.json"))
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)
}

func TestFileRepositoryDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "giveaways.json")
	repo, err := NewFileGiveawayRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), testGiveaway("msg-1")))
	require.NoError(t, repo.Delete(context.Background(), "msg-1"))

	_, err = repo.GetByID(context.Background(), "msg-1")
	assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)

	assert.ErrorIs(t, repo.Delete(context.Background(), "msg-1"), repository.ErrGiveawayNotFound)
}

func TestFileRepositoryReturnsCopies(t *testing.T) {
	repo, err := NewFileGiveawayRepository(filepath.Join(t.TempDir(), "giveaways.json"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), testGiveaway("msg-1")))

	got, err := repo.GetByID(context.Background(), "msg-1")
	require.NoError(t, err)
	got.Entrants[0] = "mutated"
	got.Active = false

	again, err := repo.GetByID(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", again.Entrants[0])
	assert.True(t, again.Active)
}

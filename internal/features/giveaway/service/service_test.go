package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/common/schedule"
	"plug-market-bot/internal/features/giveaway/models"
	"plug-market-bot/internal/features/giveaway/repository"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]*models.Giveaway
	saves   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]*models.Giveaway)}
}

func (r *memoryRepo) Save(ctx context.Context, g *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	cp.Entrants = append([]string(nil), g.Entrants...)
	r.records[g.ID] = &cp
	r.saves++
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.records[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	cp := *g
	cp.Entrants = append([]string(nil), g.Entrants...)
	return &cp, nil
}

func (r *memoryRepo) All(ctx context.Context) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Giveaway, 0, len(r.records))
	for _, g := range r.records {
		cp := *g
		cp.Entrants = append([]string(nil), g.Entrants...)
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return repository.ErrGiveawayNotFound
	}
	delete(r.records, id)
	return nil
}

type fakeAnnouncer struct {
	mu           sync.Mutex
	nextID       int
	publishErr   error
	announceErr  error
	countUpdates int
	results      map[string][]string
}

func newFakeAnnouncer() *fakeAnnouncer {
	return &fakeAnnouncer{results: make(map[string][]string)}
}

func (a *fakeAnnouncer) PublishGiveaway(ctx context.Context, g *models.Giveaway) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.publishErr != nil {
		return "", a.publishErr
	}
	a.nextID++
	return fmt.Sprintf("msg-%d", a.nextID), nil
}

func (a *fakeAnnouncer) UpdateEntryCount(ctx context.Context, g *models.Giveaway) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.countUpdates++
	return nil
}

func (a *fakeAnnouncer) AnnounceResult(ctx context.Context, g *models.Giveaway, winnerIDs []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.announceErr != nil {
		return a.announceErr
	}
	a.results[g.ID] = append([]string(nil), winnerIDs...)
	return nil
}

func (a *fakeAnnouncer) announceCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *fakeAnnouncer) {
	t.Helper()
	repo := newMemoryRepo()
	announcer := newFakeAnnouncer()
	sched := schedule.New()
	t.Cleanup(sched.Stop)
	return NewService(repo, announcer, sched), repo, announcer
}

func TestCreateGiveaway(t *testing.T) {
	svc, repo, _ := newTestService(t)

	before := time.Now()
	g, err := svc.Create(context.Background(), CreateInput{
		GuildID:      "guild-1",
		ChannelID:    "chan-1",
		HostID:       "host-1",
		Prize:        "10$ Gift",
		DurationSpec: "1h",
		WinnerCount:  1,
	})
	require.NoError(t, err)

	assert.Equal(t, "msg-1", g.ID)
	assert.Empty(t, g.Entrants)
	assert.True(t, g.Active)
	assert.Equal(t, 1, g.Winners)
	assert.WithinDuration(t, before.Add(time.Hour), g.Deadline, 2*time.Second)

	stored, err := repo.GetByID(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, "10$ Gift", stored.Prize)
}

func TestCreateInvalidDuration(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		ChannelID:    "chan-1",
		Prize:        "Nitro",
		DurationSpec: "90x",
		WinnerCount:  1,
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidDuration, appErr.Code)
	assert.Empty(t, repo.records)
}

func TestCreateClampsWinnerCount(t *testing.T) {
	svc, _, _ := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID:    "chan-1",
		Prize:        "Nitro",
		DurationSpec: "1d",
		WinnerCount:  99,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaxWinners, g.Winners)

	g2, err := svc.Create(context.Background(), CreateInput{
		ChannelID:    "chan-1",
		Prize:        "Nitro",
		DurationSpec: "1d",
		WinnerCount:  0,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MinWinners, g2.Winners)
}

func TestCreatePublishFailureHasNoSideEffect(t *testing.T) {
	svc, repo, announcer := newTestService(t)
	announcer.publishErr = errors.New("missing permissions")

	_, err := svc.Create(context.Background(), CreateInput{
		ChannelID:    "chan-1",
		Prize:        "Nitro",
		DurationSpec: "1h",
		WinnerCount:  1,
	})
	require.Error(t, err)
	assert.Empty(t, repo.records)
}

func TestEnterDeduplicates(t *testing.T) {
	svc, _, _ := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		GuildID: "guild-1", ChannelID: "chan-1", HostID: "host-1",
		Prize: "Nitro", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)

	status, out, err := svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, EntryJoined, status)
	assert.Len(t, out.Entrants, 1)

	status, out, err = svc.Enter(context.Background(), g.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, EntryJoined, status)
	assert.Len(t, out.Entrants, 2)

	status, out, err = svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, EntryAlreadyEntered, status)
	assert.Len(t, out.Entrants, 2)
}

func TestEnterUnknownGiveaway(t *testing.T) {
	svc, _, _ := newTestService(t)

	status, _, err := svc.Enter(context.Background(), "nope", "u1")
	require.NoError(t, err)
	assert.Equal(t, EntryNotFound, status)
}

func TestEnterClosedGiveaway(t *testing.T) {
	svc, _, _ := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(context.Background(), g.ID))

	status, _, err := svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, EntryClosed, status)
}

func TestEnterPersistsOncePerJoin(t *testing.T) {
	svc, repo, _ := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)
	savesAfterCreate := repo.saves

	_, _, err = svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, savesAfterCreate+1, repo.saves)

	// A duplicate join writes nothing.
	_, _, err = svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, savesAfterCreate+1, repo.saves)
}

func TestResolveSamplesDistinctWinners(t *testing.T) {
	svc, repo, announcer := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1h", WinnerCount: 3,
	})
	require.NoError(t, err)

	entrants := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, u := range entrants {
		_, _, err := svc.Enter(context.Background(), g.ID, u)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Resolve(context.Background(), g.ID))

	winners := announcer.results[g.ID]
	require.Len(t, winners, 3)
	seen := make(map[string]bool)
	for _, w := range winners {
		assert.False(t, seen[w], "duplicate winner %s", w)
		seen[w] = true
		assert.Contains(t, entrants, w)
	}

	stored, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestResolveMoreWinnersThanEntrants(t *testing.T) {
	svc, _, announcer := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1h", WinnerCount: 5,
	})
	require.NoError(t, err)

	_, _, err = svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)
	_, _, err = svc.Enter(context.Background(), g.ID, "u2")
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(context.Background(), g.ID))
	assert.Len(t, announcer.results[g.ID], 2)
}

func TestResolveNoEntrants(t *testing.T) {
	svc, repo, announcer := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(context.Background(), g.ID))

	assert.Empty(t, announcer.results[g.ID])
	stored, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestResolveIsIdempotent(t *testing.T) {
	svc, _, announcer := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)
	_, _, err = svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(context.Background(), g.ID))
	require.NoError(t, svc.Resolve(context.Background(), g.ID))

	assert.Equal(t, 1, announcer.announceCount())
}

func TestResolveRetiresRecordWhenAnnounceFails(t *testing.T) {
	svc, repo, announcer := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)
	_, _, err = svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)

	announcer.announceErr = errors.New("channel deleted")
	require.NoError(t, svc.Resolve(context.Background(), g.ID))

	stored, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestResolveUnknownGiveawayIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.Resolve(context.Background(), "gone"))
}

func TestRestoreResolvesExpiredAndRearmsPending(t *testing.T) {
	repo := newMemoryRepo()
	announcer := newFakeAnnouncer()
	sched := schedule.New()
	defer sched.Stop()

	expired := &models.Giveaway{
		ID: "expired-1", ChannelID: "chan-1", GuildID: "guild-1",
		Prize: "Nitro", Winners: 1,
		Deadline: time.Now().Add(-time.Minute),
		Entrants: []string{"u1"}, Active: true,
	}
	soon := &models.Giveaway{
		ID: "soon-1", ChannelID: "chan-1", GuildID: "guild-1",
		Prize: "Key", Winners: 1,
		Deadline: time.Now().Add(30 * time.Millisecond),
		Entrants: []string{"u2"}, Active: true,
	}
	done := &models.Giveaway{
		ID: "done-1", ChannelID: "chan-1", GuildID: "guild-1",
		Prize: "Old", Winners: 1,
		Deadline: time.Now().Add(-time.Hour),
		Entrants: []string{"u3"}, Active: false,
	}
	require.NoError(t, repo.Save(context.Background(), expired))
	require.NoError(t, repo.Save(context.Background(), soon))
	require.NoError(t, repo.Save(context.Background(), done))

	svc := NewService(repo, announcer, sched)
	require.NoError(t, svc.Restore(context.Background()))

	// The expired record resolved synchronously.
	got, err := repo.GetByID(context.Background(), "expired-1")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, []string{"u1"}, announcer.results["expired-1"])

	// The pending record resolves when its rearmed timer fires.
	assert.Eventually(t, func() bool {
		g, err := repo.GetByID(context.Background(), "soon-1")
		return err == nil && !g.Active
	}, 2*time.Second, 10*time.Millisecond)

	// The inactive record was not announced again.
	assert.Empty(t, announcer.results["done-1"])
}

func TestScheduledResolutionFires(t *testing.T) {
	svc, repo, announcer := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1m", WinnerCount: 1,
	})
	require.NoError(t, err)
	_, _, err = svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)

	// Force the deadline into the past and rebuild timers, as a restart would.
	stored, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	stored.Deadline = time.Now().Add(10 * time.Millisecond)
	require.NoError(t, repo.Save(context.Background(), stored))
	require.NoError(t, svc.Restore(context.Background()))

	assert.Eventually(t, func() bool {
		return announcer.announceCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestParticipants(t *testing.T) {
	svc, _, _ := newTestService(t)

	g, err := svc.Create(context.Background(), CreateInput{
		ChannelID: "chan-1", Prize: "Nitro", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)
	_, _, err = svc.Enter(context.Background(), g.ID, "u1")
	require.NoError(t, err)
	_, _, err = svc.Enter(context.Background(), g.ID, "u2")
	require.NoError(t, err)

	entrants, got, err := svc.Participants(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, entrants)
	assert.Equal(t, g.ID, got.ID)

	_, _, err = svc.Participants(context.Background(), "missing")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsNotFound())
}

func TestActiveInGuild(t *testing.T) {
	svc, _, _ := newTestService(t)

	g1, err := svc.Create(context.Background(), CreateInput{
		GuildID: "guild-1", ChannelID: "chan-1", Prize: "A", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		GuildID: "guild-2", ChannelID: "chan-2", Prize: "B", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)
	g3, err := svc.Create(context.Background(), CreateInput{
		GuildID: "guild-1", ChannelID: "chan-3", Prize: "C", DurationSpec: "1h", WinnerCount: 1,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(context.Background(), g3.ID))

	active, err := svc.ActiveInGuild(context.Background(), "guild-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, g1.ID, active[0].ID)
}

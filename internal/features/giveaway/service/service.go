package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/common/logger"
	"plug-market-bot/internal/common/schedule"
	"plug-market-bot/internal/features/giveaway/models"
	"plug-market-bot/internal/features/giveaway/repository"
	"plug-market-bot/internal/utils/random"
)

// Announcer is the outbound platform surface the engine needs: publishing the
// giveaway message, refreshing its entry count and announcing the outcome.
type Announcer interface {
	PublishGiveaway(ctx context.Context, g *models.Giveaway) (messageID string, err error)
	UpdateEntryCount(ctx context.Context, g *models.Giveaway) error
	AnnounceResult(ctx context.Context, g *models.Giveaway, winnerIDs []string) error
}

// EntryStatus reports what happened to a join attempt.
type EntryStatus int

const (
	EntryJoined EntryStatus = iota
	EntryAlreadyEntered
	EntryClosed
	EntryNotFound
)

// CreateInput carries the caller-facing parameters of a new giveaway.
type CreateInput struct {
	GuildID      string
	ChannelID    string
	HostID       string
	Prize        string
	DurationSpec string
	WinnerCount  int
}

// Service owns the giveaway record set. All mutations go through the mutex so
// concurrent interaction events and timer fires observe a consistent store.
type Service struct {
	mu        sync.Mutex
	repo      repository.GiveawayRepository
	announcer Announcer
	scheduler *schedule.Scheduler
	log       zerolog.Logger
}

func NewService(repo repository.GiveawayRepository, announcer Announcer, scheduler *schedule.Scheduler) *Service {
	return &Service{
		repo:      repo,
		announcer: announcer,
		scheduler: scheduler,
		log:       logger.Component("giveaway"),
	}
}

// Create validates input, publishes the announcement and persists the record
// keyed by the announcement message ID, then arms the resolution timer.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Giveaway, error) {
	duration, ok := models.ParseDuration(in.DurationSpec)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidDuration, "Invalid duration format, use 10m, 2h, 3d or 1w").
			WithDetail("duration", in.DurationSpec)
	}
	if in.Prize == "" {
		return nil, apperrors.NewValidationError("prize", "must not be empty")
	}

	g := &models.Giveaway{
		ChannelID: in.ChannelID,
		GuildID:   in.GuildID,
		Prize:     in.Prize,
		HostID:    in.HostID,
		Winners:   models.ClampWinners(in.WinnerCount),
		Deadline:  time.Now().Add(duration),
		Entrants:  []string{},
		Active:    true,
		CreatedAt: time.Now(),
	}

	messageID, err := s.announcer.PublishGiveaway(ctx, g)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDiscordAPI, "failed to publish giveaway")
	}
	g.ID = messageID

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, g); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreError, "failed to persist giveaway")
	}
	s.arm(g)

	s.log.Info().
		Str("giveaway_id", g.ID).
		Str("prize", g.Prize).
		Int("winners", g.Winners).
		Time("deadline", g.Deadline).
		Msg("giveaway created")

	return g, nil
}

// Enter registers a user for a giveaway. Repeated joins by the same user are
// reported as EntryAlreadyEntered rather than failing.
func (s *Service) Enter(ctx context.Context, giveawayID, userID string) (EntryStatus, *models.Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		if err == repository.ErrGiveawayNotFound {
			return EntryNotFound, nil, nil
		}
		return EntryNotFound, nil, apperrors.Wrap(err, apperrors.ErrCodeStoreError, "failed to load giveaway")
	}

	if !g.Active {
		return EntryClosed, g, nil
	}
	if g.HasEntrant(userID) {
		return EntryAlreadyEntered, g, nil
	}

	g.Entrants = append(g.Entrants, userID)
	if err := s.repo.Save(ctx, g); err != nil {
		return EntryNotFound, nil, apperrors.Wrap(err, apperrors.ErrCodeStoreError, "failed to persist entry")
	}

	if err := s.announcer.UpdateEntryCount(ctx, g); err != nil {
		s.log.Warn().Err(err).Str("giveaway_id", g.ID).Msg("failed to update entry count")
	}

	return EntryJoined, g, nil
}

// Resolve ends a giveaway: samples winners, announces the outcome and marks
// the record inactive. Resolving an already-inactive record is a no-op, so a
// duplicate timer fire or restart replay is harmless.
func (s *Service) Resolve(ctx context.Context, giveawayID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		if err == repository.ErrGiveawayNotFound {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeStoreError, "failed to load giveaway")
	}
	if !g.Active {
		return nil
	}

	count := g.Winners
	if count > len(g.Entrants) {
		count = len(g.Entrants)
	}
	winners, err := random.Sample(g.Entrants, count)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to sample winners")
	}

	if err := s.announcer.AnnounceResult(ctx, g, winners); err != nil {
		// The channel or message may be gone. Still retire the record so the
		// scheduler never retries it.
		s.log.Error().Err(err).Str("giveaway_id", g.ID).Msg("failed to announce giveaway result")
	}

	g.Active = false
	if err := s.repo.Save(ctx, g); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreError, "failed to persist resolved giveaway")
	}
	s.scheduler.Cancel(g.ID)

	s.log.Info().
		Str("giveaway_id", g.ID).
		Int("entrants", len(g.Entrants)).
		Strs("winners", winners).
		Msg("giveaway resolved")

	return nil
}

// Restore rebuilds timers from persisted deadlines after a restart. Records
// whose deadline already passed are resolved immediately.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	all, err := s.repo.All(ctx)
	s.mu.Unlock()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreError, "failed to load giveaways")
	}

	restored := 0
	for _, g := range all {
		if !g.Active {
			continue
		}
		if g.HasEnded() {
			if err := s.Resolve(ctx, g.ID); err != nil {
				s.log.Error().Err(err).Str("giveaway_id", g.ID).Msg("failed to resolve expired giveaway")
			}
			continue
		}
		s.mu.Lock()
		s.arm(g)
		s.mu.Unlock()
		restored++
	}

	s.log.Info().Int("count", restored).Msg("giveaway timers restored")
	return nil
}

// Participants returns the entrant list for a giveaway.
func (s *Service) Participants(ctx context.Context, giveawayID string) ([]string, *models.Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		if err == repository.ErrGiveawayNotFound {
			return nil, nil, apperrors.New(apperrors.ErrCodeGiveawayNotFound, "Giveaway not found").
				WithDetail("id", giveawayID)
		}
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeStoreError, "failed to load giveaway")
	}

	return append([]string(nil), g.Entrants...), g, nil
}

// ActiveInGuild lists active giveaways running in a guild.
func (s *Service) ActiveInGuild(ctx context.Context, guildID string) ([]*models.Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreError, "failed to load giveaways")
	}

	var out []*models.Giveaway
	for _, g := range all {
		if g.Active && g.GuildID == guildID {
			out = append(out, g)
		}
	}
	return out, nil
}

// arm schedules resolution at the record's deadline. Caller holds the mutex.
func (s *Service) arm(g *models.Giveaway) {
	id := g.ID
	s.scheduler.Schedule(id, g.Deadline, func() {
		if err := s.Resolve(context.Background(), id); err != nil {
			s.log.Error().Err(err).Str("giveaway_id", id).Msg("scheduled resolution failed")
		}
	})
}

package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/common/logger"
	"plug-market-bot/internal/common/schedule"
	"plug-market-bot/internal/features/ticket/models"
)

// DeleteDelay is the grace period between a confirmed close and channel
// deletion, long enough for people to copy anything they still need.
const DeleteDelay = 10 * time.Second

// historyPageSize is the platform's maximum page size for message history.
const historyPageSize = 100

// Message is a single rendered-history entry fetched from the platform.
type Message struct {
	ID             string
	AuthorTag      string
	Content        string
	Timestamp      time.Time
	AttachmentURLs []string
	EmbedTitles    []string
}

// ChannelSpec describes the ticket channel to create.
type ChannelSpec struct {
	Name     string
	Topic    string
	OwnerID  string
	Category models.CategoryInfo
}

// Platform is the outbound chat-platform surface the engine drives.
type Platform interface {
	// FindChannelByName returns the channel ID of a guild text channel with
	// the given name, or "" when none exists.
	FindChannelByName(ctx context.Context, guildID, name string) (string, error)
	CreateTicketChannel(ctx context.Context, guildID string, spec ChannelSpec) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	GrantChannelAccess(ctx context.Context, channelID, userID string) error
	RevokeChannelAccess(ctx context.Context, channelID, userID string) error
	RenameChannel(ctx context.Context, channelID, name string) error
	// History fetches up to limit messages newest first, older than beforeID
	// when beforeID is set.
	History(ctx context.Context, channelID, beforeID string, limit int) ([]Message, error)
	ArchiveTranscript(ctx context.Context, channelID, transcript string) error
	SendReviewRequest(ctx context.Context, ownerID string, req *models.ReviewRequest, transcript string) error
	PostReview(ctx context.Context, rec models.ReviewRecord) error
}

// Actor identifies who triggered a ticket transition and what they may do.
type Actor struct {
	ID    string
	Tag   string
	Roles []string
}

// OpenInput carries the parameters of a new ticket.
type OpenInput struct {
	GuildID  string
	UserID   string
	Username string
	UserTag  string
	Category string
}

// Service owns the ticket lifecycle. Ticket state lives in the channel itself
// (name and topic); the service only tracks in-flight deletion timers and
// pending review requests.
type Service struct {
	mu         sync.Mutex
	platform   Platform
	scheduler  *schedule.Scheduler
	closeRoles []string
	reviews    map[string]*models.ReviewRequest
	log        zerolog.Logger
}

func NewService(platform Platform, scheduler *schedule.Scheduler, closeRoles []string) *Service {
	return &Service{
		platform:   platform,
		scheduler:  scheduler,
		closeRoles: closeRoles,
		reviews:    make(map[string]*models.ReviewRequest),
		log:        logger.Component("ticket"),
	}
}

// Open creates a ticket channel for the user, guarded by "one open ticket per
// user": an existing channel with the derived name blocks creation.
func (s *Service) Open(ctx context.Context, in OpenInput) (string, error) {
	info := models.GetCategoryInfo(in.Category)
	name := models.ChannelName(in.Username, in.UserID)

	existing, err := s.platform.FindChannelByName(ctx, in.GuildID, name)
	if err != nil {
		return "", apperrors.NewDiscordAPIError("find ticket channel", err)
	}
	if existing != "" {
		return "", apperrors.New(apperrors.ErrCodeTicketExists, "You already have an open ticket").
			WithDetail("channel_id", existing)
	}

	channelID, err := s.platform.CreateTicketChannel(ctx, in.GuildID, ChannelSpec{
		Name:     name,
		Topic:    models.Topic(in.UserTag, in.UserID, info.Value),
		OwnerID:  in.UserID,
		Category: info,
	})
	if err != nil {
		return "", apperrors.NewDiscordAPIError("create ticket channel", err)
	}

	s.log.Info().
		Str("channel_id", channelID).
		Str("user_id", in.UserID).
		Str("category", string(info.Value)).
		Msg("ticket opened")

	return channelID, nil
}

// Close transitions an open ticket to close-pending: captures a transcript,
// fires a best-effort review request to the owner and arms the deletion
// timer. The caller renders the closing notice.
func (s *Service) Close(ctx context.Context, channelID, channelName, topic string, actor Actor) error {
	if err := s.guard(channelName, topic, actor); err != nil {
		return err
	}

	ownerID := models.OwnerIDFromTopic(topic)

	transcript, err := s.Transcript(ctx, channelID)
	if err != nil {
		s.log.Warn().Err(err).Str("channel_id", channelID).Msg("failed to capture transcript")
		transcript = ""
	}
	if transcript != "" {
		if err := s.platform.ArchiveTranscript(ctx, channelID, transcript); err != nil {
			s.log.Warn().Err(err).Str("channel_id", channelID).Msg("failed to archive transcript")
		}
	}

	if ownerID != "" {
		req := s.newReview(channelID, ownerID, actor.ID)
		if err := s.platform.SendReviewRequest(ctx, ownerID, req, transcript); err != nil {
			// DMs may be closed. Never block deletion on it.
			s.log.Warn().Err(err).Str("owner_id", ownerID).Msg("failed to send review request")
			s.dropReview(req.ID)
		}
	}

	s.scheduler.Schedule(deletionKey(channelID), time.Now().Add(DeleteDelay), func() {
		if err := s.platform.DeleteChannel(context.Background(), channelID); err != nil {
			// Channel may already be gone.
			s.log.Warn().Err(err).Str("channel_id", channelID).Msg("failed to delete ticket channel")
		}
	})

	s.log.Info().
		Str("channel_id", channelID).
		Str("actor_id", actor.ID).
		Msg("ticket close armed")

	return nil
}

// CancelClose reverts a close-pending ticket to open and disarms the deletion
// timer. Cancelling after the timer fired is a no-op.
func (s *Service) CancelClose(ctx context.Context, channelID, channelName, topic string, actor Actor) error {
	if err := s.guard(channelName, topic, actor); err != nil {
		return err
	}

	s.scheduler.Cancel(deletionKey(channelID))

	s.log.Info().
		Str("channel_id", channelID).
		Str("actor_id", actor.ID).
		Msg("ticket close cancelled")

	return nil
}

// AddUser grants a user access to a ticket channel. Staff only.
func (s *Service) AddUser(ctx context.Context, channelID, channelName string, actor Actor, userID string) error {
	if !models.IsTicketChannel(channelName) {
		return apperrors.New(apperrors.ErrCodeNotTicket, "This command can only be used in ticket channels")
	}
	if !s.isStaff(actor) {
		return apperrors.NewUnauthorizedError("staff role required")
	}
	if err := s.platform.GrantChannelAccess(ctx, channelID, userID); err != nil {
		return apperrors.NewDiscordAPIError("grant channel access", err)
	}
	return nil
}

// RemoveUser revokes a user's access to a ticket channel. Staff only.
func (s *Service) RemoveUser(ctx context.Context, channelID, channelName string, actor Actor, userID string) error {
	if !models.IsTicketChannel(channelName) {
		return apperrors.New(apperrors.ErrCodeNotTicket, "This command can only be used in ticket channels")
	}
	if !s.isStaff(actor) {
		return apperrors.NewUnauthorizedError("staff role required")
	}
	if err := s.platform.RevokeChannelAccess(ctx, channelID, userID); err != nil {
		return apperrors.NewDiscordAPIError("revoke channel access", err)
	}
	return nil
}

// Rename changes a ticket channel's name. Staff only. The ticket prefix is
// preserved so the channel stays recognizable as a ticket.
func (s *Service) Rename(ctx context.Context, channelID, channelName string, actor Actor, newName string) (string, error) {
	if !models.IsTicketChannel(channelName) {
		return "", apperrors.New(apperrors.ErrCodeNotTicket, "This command can only be used in ticket channels")
	}
	if !s.isStaff(actor) {
		return "", apperrors.NewUnauthorizedError("staff role required")
	}

	name := models.Slugify(newName)
	if name == "" {
		return "", apperrors.NewValidationError("name", "must contain at least one letter or digit")
	}
	if !strings.HasPrefix(name, "ticket-") {
		name = "ticket-" + name
	}

	if err := s.platform.RenameChannel(ctx, channelID, name); err != nil {
		return "", apperrors.NewDiscordAPIError("rename channel", err)
	}
	return name, nil
}

// Transcript renders a channel's full history oldest first, one line per
// message plus one line per attachment URL and embed title. History is
// fetched newest first in fixed-size pages until a short page marks the end.
func (s *Service) Transcript(ctx context.Context, channelID string) (string, error) {
	var all []Message
	beforeID := ""

	for {
		page, err := s.platform.History(ctx, channelID, beforeID, historyPageSize)
		if err != nil {
			return "", apperrors.NewDiscordAPIError("fetch channel history", err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		beforeID = page[len(page)-1].ID
		if len(page) < historyPageSize {
			break
		}
	}

	var b strings.Builder
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		b.WriteString("[")
		b.WriteString(m.Timestamp.Format("2006-01-02 15:04:05"))
		b.WriteString("] ")
		b.WriteString(m.AuthorTag)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
		for _, url := range m.AttachmentURLs {
			b.WriteString(url)
			b.WriteString("\n")
		}
		for _, title := range m.EmbedTitles {
			b.WriteString(title)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// SubmitReview consumes a pending review request exactly once and forwards
// the rating to the review log.
func (s *Service) SubmitReview(ctx context.Context, reviewID string, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.NewValidationError("rating", "must be between 1 and 5")
	}

	s.mu.Lock()
	req, ok := s.reviews[reviewID]
	if ok {
		delete(s.reviews, reviewID)
	}
	s.mu.Unlock()

	if !ok {
		return apperrors.New(apperrors.ErrCodeReviewConsumed, "This review has already been submitted")
	}

	rec := models.ReviewRecord{
		TicketChannelID: req.ChannelID,
		OwnerID:         req.OwnerID,
		StaffID:         req.StaffID,
		Rating:          rating,
	}
	if err := s.platform.PostReview(ctx, rec); err != nil {
		return apperrors.NewDiscordAPIError("post review", err)
	}

	s.log.Info().
		Str("channel_id", req.ChannelID).
		Str("owner_id", req.OwnerID).
		Int("rating", rating).
		Msg("review submitted")

	return nil
}

// PendingDeletion reports whether a ticket's deletion timer is armed.
func (s *Service) PendingDeletion(channelID string) bool {
	return s.scheduler.Pending(deletionKey(channelID))
}

func (s *Service) newReview(channelID, ownerID, staffID string) *models.ReviewRequest {
	req := &models.ReviewRequest{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		OwnerID:   ownerID,
		StaffID:   staffID,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.reviews[req.ID] = req
	s.mu.Unlock()
	return req
}

func (s *Service) dropReview(id string) {
	s.mu.Lock()
	delete(s.reviews, id)
	s.mu.Unlock()
}

// guard validates the channel and the actor for close transitions: staff
// roles and the ticket owner may close, everyone else is rejected.
func (s *Service) guard(channelName, topic string, actor Actor) error {
	if !models.IsTicketChannel(channelName) {
		return apperrors.New(apperrors.ErrCodeNotTicket, "This command can only be used in ticket channels")
	}
	if s.isStaff(actor) {
		return nil
	}
	if ownerID := models.OwnerIDFromTopic(topic); ownerID != "" && ownerID == actor.ID {
		return nil
	}
	return apperrors.NewUnauthorizedError("you do not have permission to close this ticket")
}

func (s *Service) isStaff(actor Actor) bool {
	for _, role := range actor.Roles {
		for _, allowed := range s.closeRoles {
			if role == allowed {
				return true
			}
		}
	}
	return false
}

func deletionKey(channelID string) string {
	return "ticket-delete:" + channelID
}

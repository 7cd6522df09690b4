package repository

import (
	"context"
	"errors"

	"plug-market-bot/internal/features/giveaway/models"
)

var ErrGiveawayNotFound = errors.New("giveaway not found")

// GiveawayRepository is the durable keyed-record store behind the giveaway
// engine. Save overwrites the record for its ID; All returns every record,
// active or not, so the engine can restore timers after a restart.
type GiveawayRepository interface {
	Save(ctx context.Context, g *models.Giveaway) error
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)
	All(ctx context.Context) ([]*models.Giveaway, error)
	Delete(ctx context.Context, id string) error
}

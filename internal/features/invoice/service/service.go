package service

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/common/logger"
	"plug-market-bot/internal/features/invoice/models"
	"plug-market-bot/internal/platform/supabase"
)

var numericRe = regexp.MustCompile(`^\d+$`)

// Backend is the slice of the PostgREST client the lookup needs.
type Backend interface {
	Configured() bool
	SelectOne(ctx context.Context, table string, filters []supabase.Filter) (map[string]interface{}, error)
	Patch(ctx context.Context, table string, filters []supabase.Filter, values map[string]interface{}) error
}

// Service resolves customer-supplied order references against the invoices
// table. Customers paste short IDs, full UUIDs or the first digits of a
// numeric ID, so the lookup walks a chain of filters until one matches.
type Service struct {
	backend Backend
	table   string
	log     zerolog.Logger
}

func NewService(backend Backend, table string) *Service {
	return &Service{
		backend: backend,
		table:   table,
		log:     logger.Component("invoice"),
	}
}

// Find locates an invoice by order reference. The chain: exact short_id,
// order_id prefix, id prefix, then exact numeric id.
func (s *Service) Find(ctx context.Context, orderID string) (*models.Invoice, error) {
	if !s.backend.Configured() {
		return nil, apperrors.New(apperrors.ErrCodeSupabaseAPI, "No billing backend configured")
	}

	chain := [][]supabase.Filter{
		{supabase.Eq("short_id", orderID)},
		{supabase.LikePrefix("order_id", orderID)},
		{supabase.LikePrefix("id", orderID)},
	}
	if numericRe.MatchString(orderID) {
		chain = append(chain, []supabase.Filter{supabase.Eq("id", orderID)})
	}

	for _, filters := range chain {
		row, err := s.backend.SelectOne(ctx, s.table, filters)
		if err != nil {
			return nil, apperrors.NewSupabaseAPIError("invoice lookup", err)
		}
		if row != nil {
			return models.ParseInvoice(row), nil
		}
	}

	return nil, apperrors.New(apperrors.ErrCodeInvoiceNotFound, "No invoice found").
		WithDetail("order_id", orderID)
}

// MarkReplaced flags an order as replaced after staff deliver a replacement
// account. The patch targets the primary key the lookup matched; rows without
// one fall back to the order_id column.
func (s *Service) MarkReplaced(ctx context.Context, orderID string) error {
	inv, err := s.Find(ctx, orderID)
	if err != nil {
		return err
	}

	filters := []supabase.Filter{supabase.Eq("id", inv.RowID)}
	if inv.RowID == "" {
		if inv.OrderID == "" {
			return apperrors.New(apperrors.ErrCodeInvoiceNotFound, "Invoice has no usable key").
				WithDetail("order_id", orderID)
		}
		filters = []supabase.Filter{supabase.Eq("order_id", inv.OrderID)}
	}

	if err := s.backend.Patch(ctx, s.table, filters, map[string]interface{}{
		"replaced":    true,
		"replaced_at": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return apperrors.NewSupabaseAPIError("mark order replaced", err)
	}

	s.log.Info().Str("order_id", orderID).Msg("order marked replaced")
	return nil
}

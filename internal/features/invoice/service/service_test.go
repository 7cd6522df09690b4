package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/platform/supabase"
)

type fakeBackend struct {
	configured bool
	queries    [][]supabase.Filter
	// answer maps "column=op.value" of the first filter to a row.
	answer map[string]map[string]interface{}
	err    error

	patchFilters []supabase.Filter
	patched      map[string]interface{}
}

func (b *fakeBackend) Configured() bool { return b.configured }

func (b *fakeBackend) SelectOne(ctx context.Context, table string, filters []supabase.Filter) (map[string]interface{}, error) {
	b.queries = append(b.queries, filters)
	if b.err != nil {
		return nil, b.err
	}
	f := filters[0]
	return b.answer[f.Column+"="+f.Op+"."+f.Value], nil
}

func (b *fakeBackend) Patch(ctx context.Context, table string, filters []supabase.Filter, values map[string]interface{}) error {
	b.patchFilters = filters
	b.patched = values
	return nil
}

func TestFindByShortID(t *testing.T) {
	backend := &fakeBackend{
		configured: true,
		answer: map[string]map[string]interface{}{
			"short_id=eq.abcd1234": {"order_id": "abcd1234-full", "status": "completed"},
		},
	}
	svc := NewService(backend, "invoices")

	inv, err := svc.Find(context.Background(), "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "abcd1234-full", inv.OrderID)
	assert.Len(t, backend.queries, 1)
}

func TestFindFallsThroughChain(t *testing.T) {
	backend := &fakeBackend{
		configured: true,
		answer: map[string]map[string]interface{}{
			"id=like.9876%": {"id": "98761111", "status": "completed"},
		},
	}
	svc := NewService(backend, "invoices")

	inv, err := svc.Find(context.Background(), "9876")
	require.NoError(t, err)
	assert.Equal(t, "98761111", inv.OrderID)

	// short_id exact, order_id prefix, then id prefix matched.
	require.Len(t, backend.queries, 3)
	assert.Equal(t, "short_id", backend.queries[0][0].Column)
	assert.Equal(t, "order_id", backend.queries[1][0].Column)
	assert.Equal(t, "id", backend.queries[2][0].Column)
}

func TestFindNumericExactIsLastResort(t *testing.T) {
	backend := &fakeBackend{
		configured: true,
		answer: map[string]map[string]interface{}{
			"id=eq.42": {"id": float64(42)},
		},
	}
	svc := NewService(backend, "invoices")

	inv, err := svc.Find(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", inv.OrderID)
	require.Len(t, backend.queries, 4)
	assert.Equal(t, "eq", backend.queries[3][0].Op)
}

func TestFindNonNumericSkipsExactID(t *testing.T) {
	backend := &fakeBackend{configured: true}
	svc := NewService(backend, "invoices")

	_, err := svc.Find(context.Background(), "abcd-12")
	require.Error(t, err)
	assert.Len(t, backend.queries, 3)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvoiceNotFound, appErr.Code)
}

func TestMarkReplacedPatchesByPrimaryKey(t *testing.T) {
	backend := &fakeBackend{
		configured: true,
		answer: map[string]map[string]interface{}{
			"short_id=eq.abcd1234": {"id": "row-9", "order_id": "abcd1234-full"},
		},
	}
	svc := NewService(backend, "invoices")

	require.NoError(t, svc.MarkReplaced(context.Background(), "abcd1234"))

	require.Len(t, backend.patchFilters, 1)
	assert.Equal(t, "id", backend.patchFilters[0].Column)
	assert.Equal(t, "row-9", backend.patchFilters[0].Value)
	assert.Equal(t, true, backend.patched["replaced"])
	assert.NotEmpty(t, backend.patched["replaced_at"])
}

func TestFindUnconfiguredBackend(t *testing.T) {
	svc := NewService(&fakeBackend{configured: false}, "invoices")

	_, err := svc.Find(context.Background(), "abcd1234")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSupabaseAPI, appErr.Code)
}

func TestFindBackendError(t *testing.T) {
	backend := &fakeBackend{configured: true, err: errors.New("Supabase error (500)")}
	svc := NewService(backend, "invoices")

	_, err := svc.Find(context.Background(), "abcd1234")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSupabaseAPI, appErr.Code)
}

package credentials

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/common/logger"
	"plug-market-bot/internal/platform/supabase"
	"plug-market-bot/internal/utils/random"
)

// ParsePool decodes the local fallback pool from its JSON form:
// {"<product>": [{"email": "...", "password": "..."}]}. Product keys are
// matched case-insensitively.
func ParsePool(raw string) (map[string][]Credential, error) {
	pool := make(map[string][]Credential)
	if raw == "" {
		return pool, nil
	}

	var decoded map[string][]struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}

	for product, entries := range decoded {
		key := strings.ToLower(product)
		for _, e := range entries {
			pool[key] = append(pool[key], Credential{Email: e.Email, Password: e.Password})
		}
	}
	return pool, nil
}

// Product keys for the Minecraft storefront page.
const (
	ProductMinecraftNFA = "minecraft_nfa_lifetime"
	ProductMinecraftFA  = "minecraft_fa_lifetime"
)

// AutocompleteProducts are the candidate names offered while typing /replace.
var AutocompleteProducts = []string{
	"Netflix",
	"Disney",
	"Disney+",
	"Spotify",
	"HBO",
	"HBO Max",
	"Prime Video",
	"Amazon Prime",
	"Paramount+",
	"Apple TV+",
	"Crunchyroll",
	"YouTube Premium",
	"Canva",
	"VPN",
}

// MatchProducts filters the autocomplete catalog by a typed fragment,
// capped at the platform's 25-choice limit.
func MatchProducts(fragment string) []string {
	fragment = strings.ToLower(fragment)
	var out []string
	for _, p := range AutocompleteProducts {
		if strings.Contains(strings.ToLower(p), fragment) {
			out = append(out, p)
			if len(out) == 25 {
				break
			}
		}
	}
	return out
}

// Credential is one deliverable account.
type Credential struct {
	ID          string
	Email       string
	Password    string
	FromBackend bool
}

// Backend is the slice of the PostgREST client the service needs.
type Backend interface {
	Configured() bool
	Select(ctx context.Context, table string, filters []supabase.Filter, limit int) ([]map[string]interface{}, error)
	Count(ctx context.Context, table string, filters []supabase.Filter) (int, error)
	Patch(ctx context.Context, table string, filters []supabase.Filter, values map[string]interface{}) error
}

// Service hands out product credentials, either from the remote credentials
// table or from a local fallback pool when the backend is not in play.
type Service struct {
	backend Backend
	table   string
	local   map[string][]Credential
	log     zerolog.Logger
}

func NewService(backend Backend, table string, local map[string][]Credential) *Service {
	if local == nil {
		local = make(map[string][]Credential)
	}
	return &Service{
		backend: backend,
		table:   table,
		local:   local,
		log:     logger.Component("credentials"),
	}
}

// Stock counts the available credentials for a product key.
func (s *Service) Stock(ctx context.Context, productKey string) (int, error) {
	if !s.backend.Configured() {
		return 0, nil
	}
	n, err := s.backend.Count(ctx, s.table, availableFilters(productKey))
	if err != nil {
		return 0, apperrors.NewSupabaseAPIError("count stock", err)
	}
	return n, nil
}

// Claim takes one available credential for a product and marks it used.
// With useBackend false it draws from the local pool instead, which does not
// consume the entry.
func (s *Service) Claim(ctx context.Context, product string, useBackend bool) (*Credential, error) {
	if useBackend {
		return s.claimRemote(ctx, product)
	}
	return s.claimLocal(product)
}

func (s *Service) claimRemote(ctx context.Context, product string) (*Credential, error) {
	if !s.backend.Configured() {
		return nil, apperrors.New(apperrors.ErrCodeSupabaseAPI, "No credentials backend configured")
	}

	rows, err := s.backend.Select(ctx, s.table, availableFilters(strings.ToLower(product)), 50)
	if err != nil {
		return nil, apperrors.NewSupabaseAPIError("fetch credentials", err)
	}
	if len(rows) == 0 {
		return nil, notInStock(product)
	}

	row := rows[0]
	cred := &Credential{
		ID:          stringField(row, "id"),
		Email:       stringField(row, "email"),
		Password:    stringField(row, "password"),
		FromBackend: true,
	}
	if cred.Email == "" {
		cred.Email = stringField(row, "account")
	}

	// Two staff claiming at once can draw the same row; the second patch is
	// harmless but both customers get the same account. Accepted for now.
	if cred.ID != "" {
		err := s.backend.Patch(ctx, s.table,
			[]supabase.Filter{supabase.Eq("id", cred.ID)},
			map[string]interface{}{
				"available": false,
				"used_at":   time.Now().UTC().Format(time.RFC3339),
			})
		if err != nil {
			s.log.Error().Err(err).Str("credential_id", cred.ID).Msg("failed to mark credential used")
		}
	}

	return cred, nil
}

func (s *Service) claimLocal(product string) (*Credential, error) {
	pool := s.local[strings.ToLower(product)]
	if len(pool) == 0 {
		return nil, notInStock(product)
	}
	picked, err := random.Sample(pool, 1)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to pick credential")
	}
	cred := picked[0]
	return &cred, nil
}

func availableFilters(productKey string) []supabase.Filter {
	return []supabase.Filter{
		supabase.Eq("product", productKey),
		supabase.Eq("available", "true"),
	}
}

func notInStock(product string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeCredentialNotFound, "No credentials available").
		WithDetail("product", product)
}

func stringField(row map[string]interface{}, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case float64:
		// serial ids come back numeric from PostgREST
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

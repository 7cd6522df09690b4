package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectSendsFiltersAndAuth(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"order_id":"abcd1234","status":"completed"}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	rows, err := c.Select(context.Background(), "invoices", []Filter{Eq("short_id", "abcd1234")}, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "completed", rows[0]["status"])

	assert.Equal(t, "/rest/v1/invoices", gotPath)
	assert.Contains(t, gotQuery, "short_id=eq.abcd1234")
	assert.Contains(t, gotQuery, "select=%2A")
	assert.Contains(t, gotQuery, "limit=1")
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

func TestSelectOneNilWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	row, err := c.SelectOne(context.Background(), "invoices", []Filter{Eq("id", "42")})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestLikePrefixFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	_, err := c.Select(context.Background(), "invoices", []Filter{LikePrefix("order_id", "abcd1234")}, 1)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "order_id=like.abcd1234%25")
}

func TestCountParsesContentRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		w.Header().Set("Content-Range", "0-0/37")
		io.WriteString(w, `[{"id":1}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	n, err := c.Count(context.Background(), "credentials", []Filter{
		Eq("product", "minecraft_nfa_lifetime"),
		Eq("available", "true"),
	})
	require.NoError(t, err)
	assert.Equal(t, 37, n)
}

func TestPatchSendsJSONBody(t *testing.T) {
	var gotMethod, gotQuery string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	err := c.Patch(context.Background(), "credentials",
		[]Filter{Eq("id", "7")},
		map[string]interface{}{"available": false})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Contains(t, gotQuery, "id=eq.7")
	assert.Equal(t, false, gotBody["available"])
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key")
	_, err := c.Select(context.Background(), "invoices", nil, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestConfigured(t *testing.T) {
	assert.True(t, NewClient("https://x.supabase.co", "k").Configured())
	assert.False(t, NewClient("", "k").Configured())
	assert.False(t, NewClient("https://x.supabase.co", "").Configured())
}

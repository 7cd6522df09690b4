package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PlugFan", "plugfan"},
		{"cool.user", "cool-user"},
		{"User__Name!!", "user-name"},
		{"--weird--", "weird"},
		{"ÁéíÖü", ""},
		{"a.b.c", "a-b-c"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "ticket-plugfan", ChannelName("PlugFan", "123456789"))
	assert.Equal(t, "ticket-6789", ChannelName("日本語", "123456789"))
	assert.Equal(t, "ticket-42", ChannelName("...", "42"))
}

func TestTopicRoundTrip(t *testing.T) {
	topic := Topic("plugfan#0", "123456789012345678", CategoryReplace)
	assert.Equal(t, "Ticket by plugfan#0 (123456789012345678) - Category: replace", topic)
	assert.Equal(t, "123456789012345678", OwnerIDFromTopic(topic))
}

func TestOwnerIDFromTopicMissing(t *testing.T) {
	assert.Empty(t, OwnerIDFromTopic("just a normal topic"))
	assert.Empty(t, OwnerIDFromTopic(""))
}

func TestIsTicketChannel(t *testing.T) {
	assert.True(t, IsTicketChannel("ticket-plugfan"))
	assert.False(t, IsTicketChannel("general"))
	assert.False(t, IsTicketChannel("tickets"))
}

func TestGetCategoryInfoFallsBackToSupport(t *testing.T) {
	info := GetCategoryInfo("bogus")
	assert.Equal(t, CategorySupport, info.Value)

	info = GetCategoryInfo("not_received")
	assert.Equal(t, "Product not received", info.Name)
	assert.Len(t, info.Requirements, 4)
}

func TestAllCategoriesOrder(t *testing.T) {
	all := AllCategories()
	values := make([]Category, 0, len(all))
	for _, c := range all {
		values = append(values, c.Value)
	}
	assert.Equal(t, []Category{CategoryPurchases, CategoryNotReceived, CategoryReplace, CategorySupport}, values)
}

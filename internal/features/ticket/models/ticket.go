package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Category identifies a ticket type selectable from the panel.
type Category string

const (
	CategoryPurchases   Category = "purchases"
	CategoryNotReceived Category = "not_received"
	CategoryReplace     Category = "replace"
	CategorySupport     Category = "support"
)

// CategoryInfo carries the user-facing copy for a ticket category.
type CategoryInfo struct {
	Value        Category
	Name         string
	Label        string
	Description  string
	Emoji        string
	Requirements []string
}

var categories = map[Category]CategoryInfo{
	CategoryPurchases: {
		Value:       CategoryPurchases,
		Name:        "Purchases",
		Label:       "Purchases",
		Description: "To purchase products from our store",
		Emoji:       "🛒",
		Requirements: []string{
			"Product you want to purchase",
			"Preferred payment method",
			"Any specific questions about the product",
		},
	},
	CategoryNotReceived: {
		Value:       CategoryNotReceived,
		Name:        "Product not received",
		Label:       "Product not received",
		Description: "Support for products you have not received after purchase",
		Emoji:       "📦",
		Requirements: []string{
			"Transaction or purchase ID",
			"Approximate date of purchase",
			"Payment method used",
			"Payment screenshots (if you have them)",
		},
	},
	CategoryReplace: {
		Value:       CategoryReplace,
		Name:        "Replace product",
		Label:       "Replace",
		Description: "Request replacement of a defective or incorrect product",
		Emoji:       "🔄",
		Requirements: []string{
			"Product you need to replace",
			"Reason for replacement",
			"Original transaction ID",
			"Evidence of the problem (screenshots, etc.)",
		},
	},
	CategorySupport: {
		Value:       CategorySupport,
		Name:        "General Support",
		Label:       "Support",
		Description: "Receive general help and support from the staff team",
		Emoji:       "💬",
		Requirements: []string{
			"Detailed description of your inquiry",
			"Any relevant information",
			"Screenshots if necessary",
		},
	},
}

// categoryOrder is the panel display order.
var categoryOrder = []Category{
	CategoryPurchases,
	CategoryNotReceived,
	CategoryReplace,
	CategorySupport,
}

// GetCategoryInfo resolves a category value; unknown values fall back to
// general support.
func GetCategoryInfo(value string) CategoryInfo {
	if info, ok := categories[Category(value)]; ok {
		return info
	}
	return categories[CategorySupport]
}

// AllCategories returns the categories in panel order.
func AllCategories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		out = append(out, categories[c])
	}
	return out
}

const channelPrefix = "ticket-"

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapseRe = regexp.MustCompile(`-+`)
	topicOwnerRe   = regexp.MustCompile(`\((\d+)\)`)
)

// Slugify lowercases a username and replaces everything outside [a-z0-9-]
// so it is usable in a channel name.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugInvalidRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ChannelName derives the ticket channel name for a user. Usernames that
// slugify to nothing fall back to the last four digits of the user ID.
func ChannelName(username, userID string) string {
	slug := Slugify(username)
	if slug == "" {
		if len(userID) > 4 {
			slug = userID[len(userID)-4:]
		} else {
			slug = userID
		}
	}
	return channelPrefix + slug
}

// IsTicketChannel reports whether a channel name belongs to the ticket system.
func IsTicketChannel(name string) bool {
	return strings.HasPrefix(name, channelPrefix)
}

// Topic builds the channel topic that doubles as the durable ticket record.
func Topic(userTag, userID string, category Category) string {
	return fmt.Sprintf("Ticket by %s (%s) - Category: %s", userTag, userID, category)
}

// OwnerIDFromTopic extracts the owner's user ID from a ticket topic. Returns
// an empty string when the topic does not carry one.
func OwnerIDFromTopic(topic string) string {
	m := topicOwnerRe.FindStringSubmatch(topic)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

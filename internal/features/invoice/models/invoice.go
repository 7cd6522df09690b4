package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Invoice is the strict internal shape of an order row. The remote backend's
// rows vary in column naming across gateways, so everything funnels through
// ParseInvoice and nothing else touches the raw map.
type Invoice struct {
	// RowID is the backend's primary key, kept so follow-up patches can
	// target the exact row the lookup matched.
	RowID       string
	OrderID     string
	ShortID     string
	Status      string
	Gateway     string
	Email       string
	PayerEmail  string
	TxID        string
	Note        string
	TotalPrice  *float64
	TotalPaid   *float64
	CreatedAt   string
	CompletedAt string
	Items       []Item
}

// Item is one purchased product with its delivered credentials, when present.
type Item struct {
	Name     string
	Quantity int
	Price    *float64
	Email    string
	Password string
}

// ParseInvoice normalizes a raw backend row. Unparseable sub-fields are
// treated as absent, never as errors.
func ParseInvoice(row map[string]interface{}) *Invoice {
	if row == nil {
		return nil
	}

	inv := &Invoice{
		RowID:       firstString(row, "id"),
		OrderID:     firstString(row, "order_id", "id"),
		ShortID:     firstString(row, "short_id"),
		Status:      stringOr(row, "Unknown", "status", "state"),
		Gateway:     stringOr(row, "Unknown", "gateway", "payment_gateway"),
		Email:       stringOr(row, "Unknown", "email", "buyer_email", "customer_email"),
		PayerEmail:  firstString(row, "payer_email", "paypal_email"),
		TxID:        firstString(row, "txid", "transaction_id", "payment_txid", "payment_intent_id"),
		Note:        firstString(row, "note", "description"),
		CreatedAt:   firstString(row, "created_at", "createdAt", "created"),
		CompletedAt: firstString(row, "completed_at", "completedAt"),
		TotalPaid:   firstNumber(row, "total_paid", "paid"),
	}

	inv.TotalPrice = firstNumber(row, "total_price", "total", "amount")
	if inv.TotalPrice == nil {
		if cents := firstNumber(row, "total_cents"); cents != nil {
			price := *cents / 100
			inv.TotalPrice = &price
		}
	}

	inv.Items = parseItems(row)
	return inv
}

func parseItems(row map[string]interface{}) []Item {
	raw, ok := row["items"]
	if !ok || raw == nil {
		raw = row["products"]
	}
	if raw == nil {
		return nil
	}

	// Items may arrive as a JSON-encoded string.
	if s, ok := raw.(string); ok {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil
		}
		raw = decoded
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	items := make([]Item, 0, len(list))
	for i, entry := range list {
		items = append(items, parseItem(entry, i))
	}
	return items
}

func parseItem(entry interface{}, index int) Item {
	obj, ok := entry.(map[string]interface{})
	if !ok {
		// A bare string may itself be an encoded object, otherwise it is the
		// item's name.
		if s, isStr := entry.(string); isStr {
			var decoded map[string]interface{}
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				obj = decoded
			} else {
				return Item{Name: s, Quantity: 1}
			}
		} else {
			return Item{Name: fmt.Sprintf("Item %d", index+1), Quantity: 1}
		}
	}

	item := Item{Quantity: 1}

	// Combined product id + plan reads better than either field alone.
	pid := firstString(obj, "pid")
	plan := firstString(obj, "plan")
	if pid != "" && plan != "" {
		item.Name = titleFirst(pid) + " " + plan
	} else {
		item.Name = firstString(obj, "name", "title", "plan")
	}
	if item.Name == "" {
		item.Name = fmt.Sprintf("Item %d", index+1)
	}

	if qty := firstNumber(obj, "quantity", "qty"); qty != nil {
		item.Quantity = int(*qty)
	}
	item.Price = firstNumber(obj, "price", "unit_price")

	item.Email, item.Password = parseCredentials(obj)
	return item
}

func parseCredentials(obj map[string]interface{}) (string, string) {
	switch creds := obj["credentials"].(type) {
	case map[string]interface{}:
		return firstString(creds, "email"), firstString(creds, "password")
	case string:
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(creds), &decoded); err != nil {
			return "", ""
		}
		return firstString(decoded, "email"), firstString(decoded, "password")
	}
	return firstString(obj, "email", "account_email"), firstString(obj, "password", "account_password")
}

func firstString(row map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := row[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return formatNumber(v)
		}
	}
	return ""
}

func stringOr(row map[string]interface{}, fallback string, keys ...string) string {
	if s := firstString(row, keys...); s != "" {
		return s
	}
	return fallback
}

func firstNumber(row map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		switch v := row[key].(type) {
		case float64:
			n := v
			return &n
		case string:
			var n float64
			if _, err := fmt.Sscanf(v, "%g", &n); err == nil {
				return &n
			}
		}
	}
	return nil
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func titleFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

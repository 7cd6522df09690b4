package customid

import (
	"fmt"
	"strings"
)

// Kind tags the interactive control a component identifier belongs to.
// Identifiers travel to the platform as plain strings; Encode and Decode are
// the only places that string shape exists.
type Kind string

const (
	KindGiveawayJoin   Kind = "giveaway_join"
	KindTicketCategory Kind = "ticket_category"
	KindCloseConfirm   Kind = "confirm_close"
	KindCloseCancel    Kind = "cancel_close"
	KindInvoiceItems   Kind = "invoice_items"
	KindInvoiceReplace Kind = "invoice_replace"
	KindReplaceModal   Kind = "replace_account_modal"
	KindRenameStatus   Kind = "rename_status"
	KindReviewSelect   Kind = "ticket_review"
	KindProductBuy     Kind = "product_buy"
	KindProductRefresh Kind = "product_refresh"
	KindSuggestModal   Kind = "suggestion_modal"
)

// ID is the decoded form of a component identifier.
type ID struct {
	Kind Kind
	Args []string
}

// New builds a typed identifier.
func New(kind Kind, args ...string) ID {
	return ID{Kind: kind, Args: args}
}

// Arg returns the i-th argument or "" when absent.
func (id ID) Arg(i int) string {
	if i < 0 || i >= len(id.Args) {
		return ""
	}
	return id.Args[i]
}

// Encode renders the identifier as the colon-delimited wire string.
func (id ID) Encode() string {
	if len(id.Args) == 0 {
		return string(id.Kind)
	}
	return string(id.Kind) + ":" + strings.Join(id.Args, ":")
}

// Decode parses a wire identifier back into its typed form. Unknown kinds
// fail so the dispatcher can ignore controls it does not own.
func Decode(raw string) (ID, error) {
	parts := strings.Split(raw, ":")
	kind := Kind(parts[0])
	switch kind {
	case KindGiveawayJoin, KindTicketCategory, KindCloseConfirm, KindCloseCancel,
		KindInvoiceItems, KindInvoiceReplace, KindReplaceModal, KindRenameStatus,
		KindReviewSelect, KindProductBuy, KindProductRefresh, KindSuggestModal:
	default:
		return ID{}, fmt.Errorf("unknown component id %q", raw)
	}

	id := ID{Kind: kind}
	if len(parts) > 1 {
		id.Args = parts[1:]
	}
	return id, nil
}

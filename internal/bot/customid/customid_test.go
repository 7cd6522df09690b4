package customid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		id   ID
		wire string
	}{
		{New(KindGiveawayJoin), "giveaway_join"},
		{New(KindTicketCategory), "ticket_category"},
		{New(KindInvoiceItems, "abcd1234"), "invoice_items:abcd1234"},
		{New(KindReplaceModal, "abcd1234"), "replace_account_modal:abcd1234"},
		{New(KindRenameStatus, "123456789"), "rename_status:123456789"},
		{New(KindReviewSelect, "rev-uuid-1"), "ticket_review:rev-uuid-1"},
		{New(KindProductBuy, "minecraft", "nfa"), "product_buy:minecraft:nfa"},
		{New(KindProductRefresh, "minecraft"), "product_refresh:minecraft"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wire, tt.id.Encode())

		decoded, err := Decode(tt.wire)
		require.NoError(t, err)
		assert.Equal(t, tt.id.Kind, decoded.Kind)
		assert.Equal(t, tt.id.Args, decoded.Args)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode("some_other_bot_button")
	require.Error(t, err)

	_, err = Decode("")
	require.Error(t, err)
}

func TestArgOutOfRange(t *testing.T) {
	id := New(KindProductBuy, "minecraft", "fa")
	assert.Equal(t, "minecraft", id.Arg(0))
	assert.Equal(t, "fa", id.Arg(1))
	assert.Empty(t, id.Arg(2))
	assert.Empty(t, id.Arg(-1))
}

package bot

import (
	"github.com/bwmarrin/discordgo"

	"plug-market-bot/internal/bot/customid"
)

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("interaction_id", i.ID).Msg("interaction handler panicked")
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchCommand(i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.dispatchAutocomplete(i)
	case discordgo.InteractionMessageComponent:
		b.dispatchComponent(i)
	case discordgo.InteractionModalSubmit:
		b.dispatchModal(i)
	}
}

func (b *Bot) dispatchCommand(i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var err error
	deferred := false

	switch data.Name {
	case "giveaway":
		err = b.handleGiveawayCreate(i, data)
	case "giveaway-participants":
		err = b.handleGiveawayParticipants(i, data)
	case "ticket":
		err = b.handleTicket(i, data)
	case "rename":
		err = b.handleRename(i, data)
	case "requirements":
		err = b.handleRequirements(i, data)
	case "invoice":
		deferred = true
		err = b.handleInvoice(i, data)
	case "replace":
		deferred = true
		err = b.handleReplace(i, data)
	case "manualreplace":
		err = b.handleManualReplace(i, data)
	case "minecraft":
		deferred = true
		err = b.handleMinecraft(i, data)
	case "embed":
		err = b.handleEmbed(i, data)
	case "suggest":
		err = b.handleSuggest(i)
	case "setup":
		err = b.handleSetup(i, data)
	default:
		return
	}

	if err != nil {
		b.replyError(i, deferred, err)
	}
}

func (b *Bot) dispatchAutocomplete(i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "replace" {
		return
	}
	if err := b.handleProductAutocomplete(i, data); err != nil {
		b.log.Warn().Err(err).Msg("autocomplete response failed")
	}
}

func (b *Bot) dispatchComponent(i *discordgo.InteractionCreate) {
	id, err := customid.Decode(i.MessageComponentData().CustomID)
	if err != nil {
		// Not one of ours.
		return
	}

	var herr error
	deferred := false

	switch id.Kind {
	case customid.KindGiveawayJoin:
		herr = b.handleGiveawayJoin(i)
	case customid.KindTicketCategory:
		herr = b.handleTicketCategorySelect(i)
	case customid.KindCloseConfirm:
		herr = b.handleCloseConfirm(i)
	case customid.KindCloseCancel:
		herr = b.handleCloseCancel(i)
	case customid.KindInvoiceItems:
		herr = b.handleInvoiceItems(i, id)
	case customid.KindInvoiceReplace:
		herr = b.handleInvoiceReplace(i, id)
	case customid.KindRenameStatus:
		herr = b.handleRenameStatus(i)
	case customid.KindReviewSelect:
		herr = b.handleReviewSelect(i, id)
	case customid.KindProductBuy:
		deferred = true
		herr = b.handleProductBuy(i, id)
	case customid.KindProductRefresh:
		herr = b.handleProductRefresh(i)
	}

	if herr != nil {
		b.replyError(i, deferred, herr)
	}
}

func (b *Bot) dispatchModal(i *discordgo.InteractionCreate) {
	id, err := customid.Decode(i.ModalSubmitData().CustomID)
	if err != nil {
		return
	}

	var herr error
	switch id.Kind {
	case customid.KindReplaceModal:
		herr = b.handleReplaceModalSubmit(i, id)
	case customid.KindSuggestModal:
		herr = b.handleSuggestModalSubmit(i)
	}

	if herr != nil {
		b.replyError(i, false, herr)
	}
}

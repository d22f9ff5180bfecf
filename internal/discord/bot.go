// Package discord adapts the bot to the Discord platform: gateway session,
// slash-command interactions, embed replies with chart attachments, owner
// notifications and slash-command reconciliation.
package discord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"geckobot/internal/config"
	"geckobot/internal/currency"
	"geckobot/internal/fulfill"
	"geckobot/internal/gecko"
	"geckobot/internal/logger"
	"geckobot/internal/notify"
)

// embedColor is Discord's dark gold.
const embedColor = 0xC27C0E

// Bot is the Discord-facing side of the application.
type Bot struct {
	session   *discordgo.Session
	cfg       *config.Config
	market    *gecko.Client
	fulfiller *fulfill.Fulfiller
	notifier  notify.Notifier
}

// New builds the gateway session and wires the event handlers. The session is
// not opened until Run.
func New(cfg *config.Config, market *gecko.Client, fulfiller *fulfill.Fulfiller) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds | discordgo.IntentDirectMessages

	b := &Bot{
		session:   session,
		cfg:       cfg,
		market:    market,
		fulfiller: fulfiller,
		notifier:  NewOwnerNotifier(session, cfg.Discord.OwnerID),
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessage)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Notifier exposes the owner notifier for callers that report out of band.
func (b *Bot) Notifier() notify.Notifier {
	return b.notifier
}

// Run opens the gateway and blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer b.session.Close()

	<-ctx.Done()
	logger.Info(context.Background(), "closing gateway session")
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	ctx := context.Background()
	logger.Info(ctx, "gateway connected", "user", r.User.Username)
	b.notifier.Notify(ctx, fmt.Sprintf("%s is connected!", r.User.Username))

	if b.cfg.Commands.UpdateOnStart {
		go func() {
			if err := b.SyncCommands(context.Background()); err != nil {
				logger.ErrorWithErr(ctx, "command sync failed", err)
			}
		}()
	}
}

// onMessage forwards direct messages from users to the owner.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID != "" || m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	b.notifier.Notify(context.Background(),
		fmt.Sprintf("Received a dm from %s (%s): %s", m.Author.Username, m.Author.ID, m.Content))
}

func (b *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	go b.handleCommand(i)
}

// handleCommand runs one slash command end to end. Exactly one owner
// notification is sent per invocation: the error or the success, never both.
func (b *Bot) handleCommand(i *discordgo.InteractionCreate) {
	ctx := context.Background()
	start := time.Now()
	data := i.ApplicationCommandData()
	req := parseRequest(data)

	// Fulfillment can outlive Discord's 3s acknowledgement window, so ack
	// first and edit the response with the outcome.
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "interaction ack failed", err, "command", data.Name)
		return
	}

	result, err := b.fulfiller.Fulfill(ctx, req)
	elapsed := time.Since(start).Round(10 * time.Millisecond)

	if err != nil {
		logger.ErrorWithErr(ctx, "command failed", err, "command", data.Name, "coin", req.CoinID, "elapsed", elapsed.String())
		b.respondError(i, err)
		b.notifier.Notify(ctx, fmt.Sprintf("Error occurred for [%s] (%s): %v", data.Name, elapsed, err))
		return
	}

	sendErr := b.respondReply(i, result)
	result.Cleanup()
	if sendErr != nil {
		logger.ErrorWithErr(ctx, "reply send failed", sendErr, "command", data.Name)
		b.notifier.Notify(ctx, fmt.Sprintf("Error occurred for [%s] (%s): %v", data.Name, elapsed, sendErr))
		return
	}

	logger.Info(ctx, "command fulfilled", "command", data.Name, "coin", req.CoinID, "elapsed", elapsed.String())
	b.notifier.Notify(ctx, fmt.Sprintf("[%s] Command Success! (%s elapsed)", data.Name, elapsed))
}

// respondReply edits the deferred response with the embed and chart file.
func (b *Bot) respondReply(i *discordgo.InteractionCreate, result *fulfill.Result) error {
	file, err := os.Open(result.ChartPath)
	if err != nil {
		return fmt.Errorf("open chart file: %w", err)
	}
	defer file.Close()

	name := filepath.Base(result.ChartPath)
	payload := result.Payload

	fields := make([]*discordgo.MessageEmbedField, 0, len(payload.Fields))
	for _, f := range payload.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    payload.Title,
			URL:     payload.TitleURL,
			IconURL: payload.ThumbnailURL,
		},
		Description: payload.Description,
		Fields:      fields,
		Color:       embedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Image:       &discordgo.MessageEmbedImage{URL: "attachment://" + name},
	}

	_, err = b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
		Files: []*discordgo.File{{
			Name:        name,
			ContentType: "image/png",
			Reader:      file,
		}},
	})
	if err != nil {
		return fmt.Errorf("edit interaction response: %w", err)
	}
	return nil
}

// respondError edits the deferred response with the error's display text. No
// embed, no attachment.
func (b *Bot) respondError(i *discordgo.InteractionCreate, ferr error) {
	content := ferr.Error()
	if _, err := b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		logger.Warn(context.Background(), "error response send failed", "error", err)
	}
}

// parseRequest maps an interaction to a fulfillment request. The command name
// is the coin id, except for the niche command whose coin comes from a
// required option with spaces dashed for CoinGecko.
func parseRequest(data discordgo.ApplicationCommandInteractionData) fulfill.Request {
	req := fulfill.Request{
		CoinID:   data.Name,
		Currency: currency.USD,
		Style:    fulfill.StyleLine,
	}
	for _, opt := range data.Options {
		switch opt.Name {
		case optionCoin:
			req.CoinID = strings.ReplaceAll(strings.TrimSpace(opt.StringValue()), " ", "-")
		case optionCurrency:
			req.Currency, _ = currency.Find(opt.StringValue())
		case optionChart:
			if opt.StringValue() == string(fulfill.StyleCandlestick) {
				req.Style = fulfill.StyleCandlestick
			}
		}
	}
	return req
}

package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"geckobot/internal/currency"
	"geckobot/internal/fulfill"
	"geckobot/internal/gecko"
	"geckobot/internal/logger"
	"geckobot/internal/trace"
)

const (
	nicheCommand = "niche"

	optionCoin     = "coin"
	optionCurrency = "currency"
	optionChart    = "chart"
)

// SyncCommands reconciles the registered global slash commands with the
// desired set: one command per top-ranked coin plus the niche command. It
// computes a diff against what Discord currently has and issues only the
// create/update/delete calls the diff requires, so re-running it is
// idempotent.
func (b *Bot) SyncCommands(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "commands.sync")
	defer span.End()

	if b.session.State.User == nil {
		return fmt.Errorf("gateway not ready, cannot reconcile commands")
	}

	coins, err := b.market.TopCoins(ctx, b.cfg.Commands.CoinCount)
	if err != nil {
		return fmt.Errorf("fetch top coins: %w", err)
	}
	desired := DesiredCommands(coins)

	appID := b.session.State.User.ID
	current, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		return fmt.Errorf("list registered commands: %w", err)
	}

	plan := Diff(desired, current)
	for _, cmd := range plan.Create {
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return fmt.Errorf("create command %q: %w", cmd.Name, err)
		}
	}
	for _, upd := range plan.Update {
		if _, err := b.session.ApplicationCommandEdit(appID, "", upd.ID, upd.Command); err != nil {
			return fmt.Errorf("update command %q: %w", upd.Command.Name, err)
		}
	}
	for _, id := range plan.Delete {
		if err := b.session.ApplicationCommandDelete(appID, "", id); err != nil {
			return fmt.Errorf("delete command %s: %w", id, err)
		}
	}

	logger.Info(ctx, "commands reconciled",
		"desired", len(desired),
		"created", len(plan.Create),
		"updated", len(plan.Update),
		"deleted", len(plan.Delete),
	)
	return nil
}

// DesiredCommands builds the full desired command set for the given coins.
func DesiredCommands(coins []gecko.CoinInfo) []*discordgo.ApplicationCommand {
	currencyOpt := currencyOption()
	chartOpt := chartOption()

	cmds := make([]*discordgo.ApplicationCommand, 0, len(coins)+1)
	for _, coin := range coins {
		cmds = append(cmds, &discordgo.ApplicationCommand{
			Name:        coin.ID,
			Description: fmt.Sprintf("Fetch price info for %s (%s)", coin.Name, coin.Symbol),
			Options:     []*discordgo.ApplicationCommandOption{currencyOpt, chartOpt},
		})
	}

	cmds = append(cmds, &discordgo.ApplicationCommand{
		Name:        nicheCommand,
		Description: "Fetch price info for a (more niche) coin",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionCoin,
				Description: "The coin's name",
				Required:    true,
			},
			currencyOpt,
			chartOpt,
		},
	})
	return cmds
}

func currencyOption() *discordgo.ApplicationCommandOption {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(currency.Top))
	for _, cur := range currency.Top {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  cur.Name,
			Value: cur.Code,
		})
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        optionCurrency,
		Description: "Your preferred currency. Default is: USD",
		Choices:     choices,
	}
}

func chartOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        optionChart,
		Description: "Chart style. Default is: line",
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Line", Value: string(fulfill.StyleLine)},
			{Name: "Candlestick", Value: string(fulfill.StyleCandlestick)},
		},
	}
}

// Update pairs a registered command id with its desired replacement.
type Update struct {
	ID      string
	Command *discordgo.ApplicationCommand
}

// Plan is the set of API calls that reconciles current with desired.
type Plan struct {
	Create []*discordgo.ApplicationCommand
	Update []Update
	Delete []string
}

// Diff computes the reconciliation plan between the desired command set and
// the commands currently registered. Matching is by name; a name present on
// both sides but differing in description or options becomes an update.
func Diff(desired, current []*discordgo.ApplicationCommand) Plan {
	currentByName := make(map[string]*discordgo.ApplicationCommand, len(current))
	for _, cmd := range current {
		currentByName[cmd.Name] = cmd
	}

	var plan Plan
	seen := make(map[string]bool, len(desired))
	for _, want := range desired {
		seen[want.Name] = true
		have, ok := currentByName[want.Name]
		if !ok {
			plan.Create = append(plan.Create, want)
			continue
		}
		if !commandsEqual(want, have) {
			plan.Update = append(plan.Update, Update{ID: have.ID, Command: want})
		}
	}
	for _, cmd := range current {
		if !seen[cmd.Name] {
			plan.Delete = append(plan.Delete, cmd.ID)
		}
	}
	return plan
}

func commandsEqual(a, b *discordgo.ApplicationCommand) bool {
	if a.Description != b.Description || len(a.Options) != len(b.Options) {
		return false
	}
	for i := range a.Options {
		if !optionsEqual(a.Options[i], b.Options[i]) {
			return false
		}
	}
	return true
}

func optionsEqual(a, b *discordgo.ApplicationCommandOption) bool {
	if a.Type != b.Type || a.Name != b.Name || a.Description != b.Description ||
		a.Required != b.Required || len(a.Choices) != len(b.Choices) {
		return false
	}
	for i := range a.Choices {
		// Choice values come back from the API as any; compare their
		// string forms.
		if a.Choices[i].Name != b.Choices[i].Name ||
			fmt.Sprint(a.Choices[i].Value) != fmt.Sprint(b.Choices[i].Value) {
			return false
		}
	}
	return true
}

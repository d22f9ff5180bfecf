package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"geckobot/internal/logger"
	"geckobot/internal/notify"
)

// ownerNotifier delivers diagnostics to the configured owner by DM.
type ownerNotifier struct {
	session *discordgo.Session
	ownerID string
}

// NewOwnerNotifier returns a notifier that DMs the owner, or a noop when no
// owner id is configured.
func NewOwnerNotifier(session *discordgo.Session, ownerID string) notify.Notifier {
	if ownerID == "" {
		return notify.Noop{}
	}
	return &ownerNotifier{session: session, ownerID: ownerID}
}

// Notify implements notify.Notifier. Delivery failures are logged only; the
// owner channel is diagnostics, not correctness.
func (n *ownerNotifier) Notify(ctx context.Context, text string) {
	channel, err := n.session.UserChannelCreate(n.ownerID)
	if err != nil {
		logger.Warn(ctx, "owner dm channel create failed", "error", err)
		return
	}
	if _, err := n.session.ChannelMessageSend(channel.ID, text); err != nil {
		logger.Warn(ctx, "owner dm send failed", "error", err)
	}
}

package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/events"

	"github.com/bwmarrin/discordgo"
)

const (
	colorWin  = 0x57F287
	colorLoss = 0xED4245
)

// ErrInvalidWebhookURL is returned for URLs that are not Discord webhook URLs
var ErrInvalidWebhookURL = errors.New("invalid discord webhook url")

// webhookExecutor is the part of *discordgo.Session the notifier uses
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts duel results to a Discord channel webhook
type DiscordNotifier struct {
	session   webhookExecutor
	webhookID string
	token     string
}

// NewDiscordNotifier creates a notifier for a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}
func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// Webhook execution is authorized by the token in the path, no bot token needed
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordNotifier{session: session, webhookID: id, token: token}, nil
}

// ParseWebhookURL extracts the webhook id and token
func ParseWebhookURL(webhookURL string) (string, string, error) {
	u, err := url.Parse(webhookURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidWebhookURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[len(parts)-3] != "webhooks" {
		return "", "", ErrInvalidWebhookURL
	}
	id, token := parts[len(parts)-2], parts[len(parts)-1]
	if id == "" || token == "" {
		return "", "", ErrInvalidWebhookURL
	}
	return id, token, nil
}

func (n *DiscordNotifier) Name() string {
	return "discord"
}

func (n *DiscordNotifier) NotifyDuelCompleted(ctx context.Context, event events.DuelCompletedEvent) error {
	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{duelEmbed(event)},
	}
	if _, err := n.session.WebhookExecute(n.webhookID, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute discord webhook: %w", err)
	}
	return nil
}

func duelEmbed(event events.DuelCompletedEvent) *discordgo.MessageEmbed {
	challengerWon := event.WinnerID == event.ChallengerID

	title := fmt.Sprintf("%s accepted your duel and lost", event.AccepterName)
	color := colorWin
	if !challengerWon {
		title = fmt.Sprintf("%s accepted your duel and won", event.AccepterName)
		color = colorLoss
	}

	return &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Challenger", Value: event.ChallengerID, Inline: true},
			{Name: "Game type", Value: event.GameType, Inline: true},
			{Name: "Points earned", Value: fmt.Sprintf("%d", event.PointsEarned), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Duel " + event.DuelID},
		Timestamp: event.CompletedAt.Format(time.RFC3339),
	}
}

package infrastructure

import (
	"context"

	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// DuelNotifier tells a challenger how their duel ended
type DuelNotifier interface {
	Name() string
	NotifyDuelCompleted(ctx context.Context, event events.DuelCompletedEvent) error
}

// NotificationDispatcher fans committed duel completions out to every notifier.
// A failing notifier is logged and counted; it never affects the duel.
type NotificationDispatcher struct {
	notifiers []DuelNotifier
}

// NewNotificationDispatcher creates a dispatcher over the given notifiers
func NewNotificationDispatcher(notifiers ...DuelNotifier) *NotificationDispatcher {
	return &NotificationDispatcher{notifiers: notifiers}
}

// Subscribe registers the dispatcher for duel completions
func (d *NotificationDispatcher) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDuelCompleted, d.HandleEvent)
}

// HandleEvent is an events.Handler
func (d *NotificationDispatcher) HandleEvent(ctx context.Context, event events.Event) {
	duel, ok := event.(events.DuelCompletedEvent)
	if !ok {
		return
	}

	for _, notifier := range d.notifiers {
		if err := notifier.NotifyDuelCompleted(ctx, duel); err != nil {
			observability.RecordNotificationFailure(notifier.Name())
			log.WithFields(log.Fields{
				"notifier":     notifier.Name(),
				"duelId":       duel.DuelID,
				"challengerId": duel.ChallengerID,
				"error":        err,
			}).Warn("Failed to deliver duel notification")
			continue
		}
		log.WithFields(log.Fields{
			"notifier": notifier.Name(),
			"duelId":   duel.DuelID,
		}).Debug("Delivered duel notification")
	}
}

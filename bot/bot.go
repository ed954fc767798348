package bot

import (
	"context"
	"time"

	"grievbot/bot/telegram"

	"github.com/apex/log"
)

// Poller is the slice of the Telegram client the long-poll loop needs.
type Poller interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}

// Bot runs the long-poll loop and feeds updates to the handler.
type Bot struct {
	poller      Poller
	handler     *Handler
	pollTimeout int
}

func New(poller Poller, handler *Handler, pollTimeout int) *Bot {
	return &Bot{poller: poller, handler: handler, pollTimeout: pollTimeout}
}

// Run polls until the context is cancelled. Updates are handled
// sequentially, which keeps each user's submission flow ordered.
func (b *Bot) Run(ctx context.Context) error {
	log.Info("Starting grievance bot long-poll loop...")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			log.Info("Grievance bot stopped")
			return ctx.Err()
		default:
		}

		updates, err := b.poller.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Errorf("Polling failed, retrying: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if err := b.handler.HandleUpdate(ctx, update); err != nil {
				log.Errorf("Failed to handle update %d: %v", update.UpdateID, err)
			}
		}
	}
}

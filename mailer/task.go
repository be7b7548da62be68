package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/email"
	"storefront/model"
	"storefront/queue"
)

// ConfirmationHandler consumes order confirmation tasks whose payload is a
// model.OrderSnapshot. A failed send is returned so the worker logs it; it is
// not retried.
func ConfirmationHandler(d *Dispatcher, r email.Renderer, now func() time.Time) queue.Handler {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, task *queue.Task) error {
		var snap model.OrderSnapshot
		if err := json.Unmarshal(task.Payload, &snap); err != nil {
			return fmt.Errorf("decode order snapshot: %w", err)
		}
		res := d.SendOrderConfirmation(ctx, r, snap, now())
		if !res.Success {
			return errors.New(res.Message)
		}
		return nil
	}
}

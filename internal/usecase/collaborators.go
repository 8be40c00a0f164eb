package usecase

import (
	"context"
	"time"

	"event-ticketing/pkg/apperror"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/notify"
	"event-ticketing/pkg/payment"
)

type SeatCache interface {
	Get(ctx context.Context, eventID int64, dest any) (bool, error)
	Set(ctx context.Context, eventID int64, value any) error
	Invalidate(ctx context.Context, eventIDs ...int64) error
}

type Notifier interface {
	Publish(ctx context.Context, event notify.BookingEvent) error
}

type PaymentGateway interface {
	Charge(ctx context.Context, bookingID int64, amount float64) (payment.Result, error)
}

type TicketCoder interface {
	TicketURL(ticketID, bookingReference string, eventID int64) (string, error)
}

// Dependencies are the out-of-process collaborators of the services.
// Nil members fall back to no-op implementations.
type Dependencies struct {
	Cache    SeatCache
	Notifier Notifier
	Payment  PaymentGateway
	Coder    TicketCoder
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

type nopCache struct{}

func (nopCache) Get(context.Context, int64, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, int64, any) error { return nil }
func (nopCache) Invalidate(context.Context, ...int64) error { return nil }

type declineGateway struct{}

func (declineGateway) Charge(context.Context, int64, float64) (payment.Result, error) {
	return payment.Result{Approved: false, Reason: "no payment gateway configured"}, nil
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.NopNotifier{}
	}
	if d.Payment == nil {
		d.Payment = declineGateway{}
	}
	if d.Coder == nil {
		d.Coder = notify.NewQRCoder("")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// toAppError passes taxonomy errors through and hides everything else
// behind a persistence error for operation
func toAppError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}
	return apperror.Persistence(operation, err)
}

package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/notify"
	"event-ticketing/pkg/payment"
	"event-ticketing/pkg/utils"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

var testConfig = utils.BookingConfig{
	SeatLockTTL:   10 * time.Minute,
	PendingTTL:    15 * time.Minute,
	SweepInterval: time.Minute,
	FlatSeatPrice: 100,
}

var (
	seatCols    = []string{"id", "event_id", "seat_label", "section", "price", "status", "locked_by", "locked_at", "created_at", "updated_at"}
	bookingCols = []string{"id", "customer_id", "event_id", "total_seats", "amount", "booking_reference", "ticket_id",
		"ticket_status", "payment_status", "transaction_id", "paid_at", "created_at", "updated_at"}
	eventCols   = []string{"id", "name", "venue", "date", "organizer_id", "status", "created_at", "updated_at"}
	userCols    = []string{"id", "name", "email", "role", "created_at", "updated_at"}
	checkInCols = []string{"id", "staff_id", "booking_id", "timestamp", "created_at"}
)

type seatFixture struct {
	id       int64
	eventID  int64
	label    string
	price    *float64
	status   entity.SeatStatus
	lockedBy *int64
	lockedAt *time.Time
}

func seatRows(seats ...seatFixture) *pgxmock.Rows {
	rows := pgxmock.NewRows(seatCols)
	for _, s := range seats {
		eventID := s.eventID
		if eventID == 0 {
			eventID = 1
		}
		rows.AddRow(s.id, eventID, s.label, (*string)(nil), s.price, s.status, s.lockedBy, s.lockedAt, testNow, testNow)
	}
	return rows
}

type bookingFixture struct {
	id            int64
	customerID    int64
	eventID       int64
	seats         int
	amount        float64
	ticketID      string
	ticketStatus  entity.TicketStatus
	paymentStatus entity.PaymentStatus
}

func bookingRows(bookings ...bookingFixture) *pgxmock.Rows {
	rows := pgxmock.NewRows(bookingCols)
	for _, b := range bookings {
		ticketID := b.ticketID
		if ticketID == "" {
			ticketID = "TKT-0123456789ABCDE"
		}
		rows.AddRow(b.id, b.customerID, b.eventID, b.seats, b.amount, "BK-20260501-ABCDEF", ticketID,
			b.ticketStatus, b.paymentStatus, (*string)(nil), (*time.Time)(nil), testNow, testNow)
	}
	return rows
}

func eventRow(id int64) *pgxmock.Rows {
	return pgxmock.NewRows(eventCols).
		AddRow(id, "Spring Gala", "Main Hall", testNow.Add(72*time.Hour), int64(2), entity.EventStatusApproved, testNow, testNow)
}

func userRow(id int64, name string, role entity.UserRole) *pgxmock.Rows {
	return pgxmock.NewRows(userCols).AddRow(id, name, "user@example.com", role, testNow, testNow)
}

func ptr[T any](v T) *T { return &v }

type fakeCache struct {
	mu          sync.Mutex
	entries     map[int64][]*entity.Seat
	invalidated []int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[int64][]*entity.Seat{}}
}

func (c *fakeCache) Get(_ context.Context, eventID int64, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seats, ok := c.entries[eventID]
	if !ok {
		return false, nil
	}
	*(dest.(*[]*entity.Seat)) = seats
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, eventID int64, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[eventID] = value.([]*entity.Seat)
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, eventIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range eventIDs {
		delete(c.entries, id)
	}
	c.invalidated = append(c.invalidated, eventIDs...)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.BookingEvent
}

func (n *fakeNotifier) Publish(_ context.Context, event notify.BookingEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type fakeGateway struct {
	approve bool
	calls   int
}

func (g *fakeGateway) Charge(context.Context, int64, float64) (payment.Result, error) {
	g.calls++
	if g.approve {
		return payment.Result{Approved: true, TransactionID: "TXN-TEST"}, nil
	}
	return payment.Result{Approved: false, Reason: "card declined"}, nil
}

type testEnv struct {
	mock     pgxmock.PgxPoolIface
	repo     *repository.Repository
	cache    *fakeCache
	notifier *fakeNotifier
	gateway  *fakeGateway
	deps     Dependencies
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	env := &testEnv{
		mock:     mock,
		repo:     repository.NewRepository(mock, zap.NewNop()),
		cache:    newFakeCache(),
		notifier: &fakeNotifier{},
		gateway:  &fakeGateway{approve: true},
	}
	env.deps = Dependencies{
		Cache:    env.cache,
		Notifier: env.notifier,
		Payment:  env.gateway,
		Coder:    notify.NewQRCoder(""),
		Now:      func() time.Time { return testNow },
	}
	return env
}

package usecase

import (
	"context"
	"regexp"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/dto/request"
	"event-ticketing/pkg/apperror"
	"event-ticketing/pkg/notify"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	customer = Caller{ID: 10, Role: entity.RoleCustomer}
	admin    = Caller{ID: 1, Role: entity.RoleAdmin}
	staff    = Caller{ID: 20, Role: entity.RoleStaff}
)

func newBookingService(env *testEnv) BookingService {
	return NewBookingService(env.repo, testConfig, env.deps, zap.NewNop())
}

func expectCustomerAndEvent(env *testEnv) {
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs(int64(10)).
		WillReturnRows(userRow(10, "Ada", entity.RoleCustomer))
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM events")).
		WithArgs(int64(1)).
		WillReturnRows(eventRow(1))
}

func TestCreateBookingClaimsEverySeat(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)
	cutoff := testNow.Add(-testConfig.SeatLockTTL)

	expectCustomerAndEvent(env)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("seat_label = ANY($2)")).
		WithArgs(int64(1), pgxmock.AnyArg()).
		WillReturnRows(seatRows(
			seatFixture{id: 1, label: "A1", status: entity.SeatStatusAvailable},
			seatFixture{id: 2, label: "A2", status: entity.SeatStatusAvailable},
		))
	env.mock.ExpectQuery(regexp.QuoteMeta("SET status = 'sold'")).
		WithArgs(int64(1), int64(10), cutoff).
		WillReturnRows(seatRows(seatFixture{id: 1, label: "A1", status: entity.SeatStatusSold}))
	env.mock.ExpectQuery(regexp.QuoteMeta("SET status = 'sold'")).
		WithArgs(int64(2), int64(10), cutoff).
		WillReturnRows(seatRows(seatFixture{id: 2, label: "A2", status: entity.SeatStatusSold}))
	env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(100), testNow, testNow))
	env.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_seats")).
		WithArgs(int64(100), []int64{1, 2}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	env.mock.ExpectCommit()

	resp, err := svc.CreateBooking(context.Background(), customer, &request.CreateBookingRequest{
		CustomerID: 10,
		EventID:    1,
		Seats:      request.SeatList{"A1", "A2"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100), resp.ID)
	assert.Equal(t, 2, resp.TotalSeats)
	assert.Equal(t, 200.0, resp.Amount)
	assert.Equal(t, []string{"A1", "A2"}, resp.Seats)
	assert.Equal(t, entity.PaymentStatusPending, resp.PaymentStatus)
	assert.Equal(t, entity.TicketStatusValid, resp.TicketStatus)
	assert.Regexp(t, `^BK-20260501-[A-Z0-9]{6}$`, resp.BookingReference)
	assert.Regexp(t, `^TKT-[0-9A-F]{15}$`, resp.TicketID)
	assert.Contains(t, resp.QRCode, "api.qrserver.com")

	assert.Equal(t, []int64{1}, env.cache.invalidated)
	assert.Equal(t, []string{notify.EventBookingCreated}, env.notifier.types())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateBookingIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	expectCustomerAndEvent(env)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("seat_label = ANY($2)")).
		WillReturnRows(seatRows(
			seatFixture{id: 1, label: "A1", status: entity.SeatStatusAvailable},
			seatFixture{id: 2, label: "A2", status: entity.SeatStatusSold},
		))
	env.mock.ExpectQuery(regexp.QuoteMeta("SET status = 'sold'")).
		WithArgs(int64(1), int64(10), pgxmock.AnyArg()).
		WillReturnRows(seatRows(seatFixture{id: 1, label: "A1", status: entity.SeatStatusSold}))
	env.mock.ExpectQuery(regexp.QuoteMeta("SET status = 'sold'")).
		WithArgs(int64(2), int64(10), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(seatCols))
	env.mock.ExpectRollback()

	resp, err := svc.CreateBooking(context.Background(), customer, &request.CreateBookingRequest{
		CustomerID: 10,
		EventID:    1,
		Seats:      request.SeatList{"A1", "A2"},
	})
	require.Error(t, err)
	assert.Nil(t, resp)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindSeatUnavailable, appErr.Kind)
	assert.Contains(t, appErr.Message, "A2")

	assert.Empty(t, env.cache.invalidated)
	assert.Empty(t, env.notifier.types())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateBookingRetriesCodeCollision(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	expectCustomerAndEvent(env)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("seat_label = ANY($2)")).
		WillReturnRows(seatRows(
			seatFixture{id: 4, label: "B1", price: ptr(75.5), status: entity.SeatStatusLocked, lockedBy: ptr(int64(10)), lockedAt: ptr(testNow)},
			seatFixture{id: 5, label: "B2", price: ptr(50.0), status: entity.SeatStatusAvailable},
		))
	env.mock.ExpectQuery(regexp.QuoteMeta("SET status = 'sold'")).
		WillReturnRows(seatRows(seatFixture{id: 4, label: "B1", price: ptr(75.5), status: entity.SeatStatusSold}))
	env.mock.ExpectQuery(regexp.QuoteMeta("SET status = 'sold'")).
		WillReturnRows(seatRows(seatFixture{id: 5, label: "B2", price: ptr(50.0), status: entity.SeatStatusSold}))
	env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}))
	env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(101), testNow, testNow))
	env.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_seats")).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	env.mock.ExpectCommit()

	resp, err := svc.CreateBooking(context.Background(), customer, &request.CreateBookingRequest{
		CustomerID: 10,
		EventID:    1,
		Seats:      request.SeatList{"B1", "B2"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), resp.ID)
	assert.Equal(t, 125.5, resp.Amount)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateBookingNotEnoughSeatsForAutoSelect(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	expectCustomerAndEvent(env)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WithArgs(int64(1), pgxmock.AnyArg(), 3).
		WillReturnRows(seatRows(seatFixture{id: 1, label: "A1", status: entity.SeatStatusAvailable}))
	env.mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), customer, &request.CreateBookingRequest{
		CustomerID:    10,
		EventID:       1,
		NumberOfSeats: 3,
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "INSUFFICIENT_SEATS", appErr.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateBookingUnknownSeatLabel(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	expectCustomerAndEvent(env)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("seat_label = ANY($2)")).
		WillReturnRows(seatRows(seatFixture{id: 1, label: "A1", status: entity.SeatStatusAvailable}))
	env.mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), customer, &request.CreateBookingRequest{
		CustomerID: 10,
		EventID:    1,
		Seats:      request.SeatList{"A1", "Z9"},
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindNotFound, appErr.Kind)
	assert.Equal(t, "seat Z9 not found", appErr.Message)
}

func TestCreateBookingEventNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	env.mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WillReturnRows(userRow(10, "Ada", entity.RoleCustomer))
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM events")).
		WillReturnRows(pgxmock.NewRows(eventCols))

	_, err := svc.CreateBooking(context.Background(), customer, &request.CreateBookingRequest{
		CustomerID: 10,
		EventID:    1,
		Seats:      request.SeatList{"A1"},
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "EVENT_NOT_FOUND", appErr.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	cases := []struct {
		name   string
		caller Caller
		req    request.CreateBookingRequest
		want   apperror.Kind
	}{
		{"no seats", customer, request.CreateBookingRequest{CustomerID: 10, EventID: 1}, apperror.KindValidation},
		{"bad label", customer, request.CreateBookingRequest{CustomerID: 10, EventID: 1, Seats: request.SeatList{"A 1"}}, apperror.KindValidation},
		{"duplicate label", customer, request.CreateBookingRequest{CustomerID: 10, EventID: 1, Seats: request.SeatList{"A1", "A1"}}, apperror.KindValidation},
		{"missing event", customer, request.CreateBookingRequest{CustomerID: 10, Seats: request.SeatList{"A1"}}, apperror.KindValidation},
		{"negative amount", customer, request.CreateBookingRequest{CustomerID: 10, EventID: 1, Seats: request.SeatList{"A1"}, TotalAmount: ptr(-5.0)}, apperror.KindValidation},
		{"books for someone else", customer, request.CreateBookingRequest{CustomerID: 11, EventID: 1, Seats: request.SeatList{"A1"}}, apperror.KindForbidden},
		{"staff cannot book", staff, request.CreateBookingRequest{CustomerID: 20, EventID: 1, Seats: request.SeatList{"A1"}}, apperror.KindForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := svc.CreateBooking(context.Background(), tc.caller, &req)
			assert.Equal(t, tc.want, apperror.KindOf(err))
		})
	}
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func pendingBooking() bookingFixture {
	return bookingFixture{
		id: 100, customerID: 10, eventID: 1, seats: 2, amount: 200,
		ticketStatus: entity.TicketStatusValid, paymentStatus: entity.PaymentStatusPending,
	}
}

func TestProcessPaymentApproved(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	env.mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs(int64(100)).
		WillReturnRows(bookingRows(pendingBooking()))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(100)).
		WillReturnRows(bookingRows(pendingBooking()))
	env.mock.ExpectExec(regexp.QuoteMeta("SET payment_status = $2")).
		WithArgs(int64(100), entity.PaymentStatusCompleted, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.mock.ExpectCommit()

	resp, err := svc.ProcessPayment(context.Background(), customer, &request.ProcessPaymentRequest{BookingID: 100, Amount: 200})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, resp.PaymentStatus)
	require.NotNil(t, resp.TransactionID)
	assert.Equal(t, "TXN-TEST", *resp.TransactionID)
	assert.Equal(t, testNow, *resp.PaidAt)
	assert.Equal(t, []string{notify.EventBookingPaid}, env.notifier.types())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestProcessPaymentDeclineReleasesSeats(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.approve = false
	svc := newBookingService(env)

	env.mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WillReturnRows(bookingRows(pendingBooking()))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(bookingRows(pendingBooking()))
	env.mock.ExpectExec(regexp.QuoteMeta("SET payment_status = $2")).
		WithArgs(int64(100), entity.PaymentStatusFailed, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM booking_seats bs")).
		WithArgs(int64(100)).
		WillReturnRows(seatRows(
			seatFixture{id: 1, label: "A1", status: entity.SeatStatusSold},
			seatFixture{id: 2, label: "A2", status: entity.SeatStatusSold},
		))
	env.mock.ExpectExec(regexp.QuoteMeta("WHERE id = ANY($1) AND status IN ('sold', 'checked_in')")).
		WithArgs([]int64{1, 2}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	env.mock.ExpectCommit()

	resp, err := svc.ProcessPayment(context.Background(), customer, &request.ProcessPaymentRequest{BookingID: 100, Amount: 200})
	assert.Nil(t, resp)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "PAYMENT_DECLINED", appErr.Code)
	assert.Equal(t, []int64{1}, env.cache.invalidated)
	assert.Equal(t, []string{notify.EventBookingReleased}, env.notifier.types())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestProcessPaymentAmountMismatch(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	env.mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WillReturnRows(bookingRows(pendingBooking()))

	_, err := svc.ProcessPayment(context.Background(), customer, &request.ProcessPaymentRequest{BookingID: 100, Amount: 150})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Zero(t, env.gateway.calls)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestProcessPaymentOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	paid := pendingBooking()
	paid.paymentStatus = entity.PaymentStatusCompleted

	env.mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WillReturnRows(bookingRows(paid))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(bookingRows(paid))
	env.mock.ExpectRollback()

	_, err := svc.ProcessPayment(context.Background(), customer, &request.ProcessPaymentRequest{BookingID: 100, Amount: 200})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "PAYMENT_ALREADY_PROCESSED", appErr.Code)
	assert.Zero(t, env.gateway.calls)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestProcessPaymentRejectsCancelledBooking(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	cancelled := pendingBooking()
	cancelled.ticketStatus = entity.TicketStatusCancelled

	env.mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WillReturnRows(bookingRows(cancelled))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(bookingRows(cancelled))
	env.mock.ExpectRollback()

	resp, err := svc.ProcessPayment(context.Background(), customer, &request.ProcessPaymentRequest{BookingID: 100, Amount: 200})
	assert.Nil(t, resp)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindConflict, appErr.Kind)
	assert.Equal(t, "BOOKING_CANCELLED", appErr.Code)
	assert.Zero(t, env.gateway.calls)
	assert.Empty(t, env.notifier.types())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteBookingReleasesSeats(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	completed := pendingBooking()
	completed.paymentStatus = entity.PaymentStatusCompleted

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(100)).
		WillReturnRows(bookingRows(completed))
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM booking_seats bs")).
		WillReturnRows(seatRows(
			seatFixture{id: 1, label: "A1", status: entity.SeatStatusSold},
			seatFixture{id: 2, label: "A2", status: entity.SeatStatusSold},
		))
	env.mock.ExpectExec(regexp.QuoteMeta("WHERE id = ANY($1) AND status IN ('sold', 'checked_in')")).
		WithArgs([]int64{1, 2}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	env.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings")).
		WithArgs(int64(100)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	env.mock.ExpectCommit()

	require.NoError(t, svc.DeleteBooking(context.Background(), customer, 100))
	assert.Equal(t, []int64{1}, env.cache.invalidated)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteFailedBookingLeavesSeatsAlone(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	failed := pendingBooking()
	failed.paymentStatus = entity.PaymentStatusFailed

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(bookingRows(failed))
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM booking_seats bs")).
		WillReturnRows(seatRows(seatFixture{id: 1, label: "A1", status: entity.SeatStatusSold}))
	env.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings")).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	env.mock.ExpectCommit()

	require.NoError(t, svc.DeleteBooking(context.Background(), admin, 100))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteBookingRejections(t *testing.T) {
	scanned := pendingBooking()
	scanned.paymentStatus = entity.PaymentStatusCompleted
	scanned.ticketStatus = entity.TicketStatusScanned

	t.Run("scanned", func(t *testing.T) {
		env := newTestEnv(t)
		env.mock.ExpectBegin()
		env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnRows(bookingRows(scanned))
		env.mock.ExpectRollback()

		err := newBookingService(env).DeleteBooking(context.Background(), customer, 100)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("not owner", func(t *testing.T) {
		env := newTestEnv(t)
		env.mock.ExpectBegin()
		env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnRows(bookingRows(pendingBooking()))
		env.mock.ExpectRollback()

		err := newBookingService(env).DeleteBooking(context.Background(), Caller{ID: 11, Role: entity.RoleCustomer}, 100)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		env := newTestEnv(t)
		env.mock.ExpectBegin()
		env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnRows(pgxmock.NewRows(bookingCols))
		env.mock.ExpectRollback()

		err := newBookingService(env).DeleteBooking(context.Background(), customer, 100)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})
}

func TestCancelBookingReleasesSeats(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	completed := pendingBooking()
	completed.paymentStatus = entity.PaymentStatusCompleted

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(bookingRows(completed))
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM booking_seats bs")).
		WillReturnRows(seatRows(seatFixture{id: 1, label: "A1", status: entity.SeatStatusSold}))
	env.mock.ExpectExec(regexp.QuoteMeta("WHERE id = ANY($1) AND status IN ('sold', 'checked_in')")).
		WithArgs([]int64{1}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.mock.ExpectExec(regexp.QuoteMeta("SET ticket_status = $2")).
		WithArgs(int64(100), entity.TicketStatusCancelled, []string{"valid", "scanned"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.mock.ExpectCommit()

	resp, err := svc.CancelBooking(context.Background(), admin, 100)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusCancelled, resp.TicketStatus)
	assert.Equal(t, []string{notify.EventBookingReleased}, env.notifier.types())
	assert.NoError(t, env.mock.ExpectationsWereMet())

	_, err = svc.CancelBooking(context.Background(), customer, 100)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestCancelScannedBookingReleasesCheckedInSeats(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	scanned := pendingBooking()
	scanned.paymentStatus = entity.PaymentStatusCompleted
	scanned.ticketStatus = entity.TicketStatusScanned

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(bookingRows(scanned))
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM booking_seats bs")).
		WillReturnRows(seatRows(
			seatFixture{id: 1, label: "A1", status: entity.SeatStatusCheckedIn},
			seatFixture{id: 2, label: "A2", status: entity.SeatStatusCheckedIn},
		))
	env.mock.ExpectExec(regexp.QuoteMeta("WHERE id = ANY($1) AND status IN ('sold', 'checked_in')")).
		WithArgs([]int64{1, 2}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	env.mock.ExpectExec(regexp.QuoteMeta("SET ticket_status = $2")).
		WithArgs(int64(100), entity.TicketStatusCancelled, []string{"valid", "scanned"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.mock.ExpectCommit()

	resp, err := svc.CancelBooking(context.Background(), admin, 100)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusCancelled, resp.TicketStatus)
	assert.Equal(t, []int64{1}, env.cache.invalidated)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetCustomerBookingsPaginates(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings WHERE customer_id = $1")).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))
	env.mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs(int64(10), 5, 5).
		WillReturnRows(bookingRows(pendingBooking()))
	env.mock.ExpectQuery(regexp.QuoteMeta("bs.booking_id = ANY($1)")).
		WithArgs([]int64{100}).
		WillReturnRows(pgxmock.NewRows(append([]string{"booking_id"}, seatCols...)).
			AddRow(int64(100), int64(1), int64(1), "A1", (*string)(nil), (*float64)(nil), entity.SeatStatusSold, (*int64)(nil), (*time.Time)(nil), testNow, testNow))

	page, err := svc.GetCustomerBookings(context.Background(), customer, 10, &request.PaginatedRequest{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, []string{"A1"}, page.Data[0].Seats)
	assert.NoError(t, env.mock.ExpectationsWereMet())

	_, err = svc.GetCustomerBookings(context.Background(), customer, 11, &request.PaginatedRequest{Page: 1, PerPage: 5})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestGetAllBookingsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookingService(env)

	_, err := svc.GetAllBookings(context.Background(), customer, &request.PaginatedRequest{Page: 1, PerPage: 10})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	env.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	env.mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(10, 0).
		WillReturnRows(bookingRows())

	page, err := svc.GetAllBookings(context.Background(), admin, &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.Pagination.Total)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

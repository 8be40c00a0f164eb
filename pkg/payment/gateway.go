// Package payment holds the payment gateway stand-in. It never contacts a
// real processor: each charge is approved with a configured probability.
package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Result struct {
	Approved      bool
	TransactionID string
	Reason        string
}

type MockGateway struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	successRate float64
	log         *zap.Logger
}

func NewMockGateway(successRate float64, log *zap.Logger) *MockGateway {
	return NewMockGatewayWithSource(successRate, rand.NewSource(time.Now().UnixNano()), log)
}

func NewMockGatewayWithSource(successRate float64, src rand.Source, log *zap.Logger) *MockGateway {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &MockGateway{
		rnd:         rand.New(src),
		successRate: successRate,
		log:         log.With(zap.String("gateway", "mock")),
	}
}

func (g *MockGateway) Charge(ctx context.Context, bookingID int64, amount float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("charge booking %d: %w", bookingID, err)
	}
	if amount <= 0 {
		return Result{}, fmt.Errorf("charge booking %d: amount must be positive", bookingID)
	}

	g.mu.Lock()
	roll := g.rnd.Float64()
	g.mu.Unlock()

	if roll >= g.successRate {
		g.log.Info("Payment declined",
			zap.Int64("booking_id", bookingID),
			zap.Float64("amount", amount),
		)
		return Result{Approved: false, Reason: "card declined"}, nil
	}

	txID := "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
	g.log.Info("Payment approved",
		zap.Int64("booking_id", bookingID),
		zap.Float64("amount", amount),
		zap.String("transaction_id", txID),
	)
	return Result{Approved: true, TransactionID: txID}, nil
}

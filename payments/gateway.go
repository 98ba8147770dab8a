// Package payments hides the payment provider behind an opaque charge call.
package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentDeclined = errors.New("payment declined")
	ErrUnknownCharge   = errors.New("unknown or already refunded charge")
)

type ChargeRequest struct {
	UserID      int
	Amount      decimal.Decimal
	Description string
}

type Receipt struct {
	Reference string
	Amount    decimal.Decimal
	ChargedAt time.Time
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Receipt, error)
	// Refund reverses a charge that could not be settled. A reference can be
	// refunded at most once.
	Refund(ctx context.Context, reference string) error
}

// ledgerGateway accepts every non-negative charge and issues a local reference.
// It stands in for an external provider; the reference is what gets persisted.
type ledgerGateway struct {
	now func() time.Time

	mu      sync.Mutex
	charges map[string]decimal.Decimal
}

func NewLedgerGateway() Gateway {
	return &ledgerGateway{now: time.Now, charges: make(map[string]decimal.Decimal)}
}

func (g *ledgerGateway) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount %s", ErrPaymentDeclined, req.Amount.StringFixed(2))
	}
	receipt := &Receipt{
		Reference: "pay_" + uuid.NewString(),
		Amount:    req.Amount,
		ChargedAt: g.now(),
	}

	g.mu.Lock()
	g.charges[receipt.Reference] = receipt.Amount
	g.mu.Unlock()

	return receipt, nil
}

func (g *ledgerGateway) Refund(ctx context.Context, reference string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.charges[reference]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCharge, reference)
	}
	delete(g.charges, reference)
	return nil
}

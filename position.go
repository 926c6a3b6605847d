package gxledger

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingPosition reports a transfer whose source position does not exist.
// The engine logs it as a reconciliation error and keeps replaying.
var ErrMissingPosition = errors.New("no source position for transfer")

// Position is one live holding, keyed by sub-account and security code.
//
// Cost is the accumulated signed monetary cost of the holding: buying adds to
// it, selling and dividends take from it. It is only meaningful while
// Quantity is non-zero; at exact zero the position retires and -Cost becomes
// the realized profit.
type Position struct {
	Date     Date        // date of the working state the position belongs to
	Account  AccountType
	Code     string
	Name     string
	Quantity Quantity
	Cost     Money
}

// RealizedProfitRecord is created exactly once, when a position closes out at
// zero quantity.
type RealizedProfitRecord struct {
	Date     Date
	Account  AccountType
	Code     string
	Name     string
	Quantity Quantity
	Profit   Money
}

type positionKey struct {
	account AccountType
	code    string
}

// PositionLedger is the mutable per-(account, code) holdings table of a
// replay run's working state.
type PositionLedger struct {
	positions map[positionKey]*Position
}

// NewPositionLedger creates an empty holdings table.
func NewPositionLedger() *PositionLedger {
	return &PositionLedger{positions: make(map[positionKey]*Position)}
}

// Clone returns an independent copy, the seed for the next settlement date.
func (l *PositionLedger) Clone() *PositionLedger {
	c := NewPositionLedger()
	for key, pos := range l.positions {
		p := *pos
		c.positions[key] = &p
	}
	return c
}

// Stamp sets the working date on every live position.
func (l *PositionLedger) Stamp(on Date) {
	for _, pos := range l.positions {
		pos.Date = on
	}
}

// Get returns the live position for the key, if any.
func (l *PositionLedger) Get(account AccountType, code string) (*Position, bool) {
	pos, ok := l.positions[positionKey{account, code}]
	return pos, ok
}

// Len returns the number of live positions.
func (l *PositionLedger) Len() int { return len(l.positions) }

// ApplyTrade books one classified trade: quantity adds, cost basis absorbs
// the negated amount (spending money raises the cost of the holding).
func (l *PositionLedger) ApplyTrade(on Date, account AccountType, code, name string, amount Money, quantity Quantity) {
	key := positionKey{account, code}
	if pos, ok := l.positions[key]; ok {
		pos.Quantity = pos.Quantity.Add(quantity)
		pos.Cost = pos.Cost.Sub(amount)
		return
	}
	l.positions[key] = &Position{
		Date:     on,
		Account:  account,
		Code:     code,
		Name:     name,
		Quantity: quantity,
		Cost:     amount.Neg(),
	}
}

// TransferCost moves quantity and a proportional share of cost basis from one
// sub-account to another. It serves the same-day pledge/transfer pairs, which
// are not economic trades: total quantity and total cost across both accounts
// are conserved.
func (l *PositionLedger) TransferCost(on Date, from, to AccountType, code, name string, quantity Quantity) error {
	src, ok := l.Get(from, code)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrMissingPosition, from, code)
	}
	if src.Quantity.IsZero() {
		return fmt.Errorf("%w: %s %s has zero quantity", ErrMissingPosition, from, code)
	}
	quantity = quantity.Abs()
	cost := src.Cost.Mul(quantity).Div(src.Quantity)
	// Debit the source as a negative trade, credit the destination as a
	// positive one. ApplyTrade subtracts the amount from cost, so the signs
	// of the cost argument are inverted relative to the cost moved.
	l.ApplyTrade(on, from, code, name, cost, quantity.Neg())
	l.ApplyTrade(on, to, code, name, cost.Neg(), quantity)
	return nil
}

// CloseZeroPositions retires every position whose quantity is exactly zero
// (quantities are integral lot counts, no epsilon) and emits one realized
// profit record per retired position. Zero-profit records are uninformative
// and discarded.
func (l *PositionLedger) CloseZeroPositions(on Date) []RealizedProfitRecord {
	var closed []RealizedProfitRecord
	for key, pos := range l.positions {
		if !pos.Quantity.IsZero() {
			continue
		}
		if !pos.Cost.IsZero() {
			closed = append(closed, RealizedProfitRecord{
				Date:     on,
				Account:  pos.Account,
				Code:     pos.Code,
				Name:     pos.Name,
				Quantity: pos.Quantity,
				Profit:   pos.Cost.Neg(),
			})
		}
		delete(l.positions, key)
	}
	sort.Slice(closed, func(i, j int) bool {
		if closed[i].Account != closed[j].Account {
			return closed[i].Account < closed[j].Account
		}
		return closed[i].Code < closed[j].Code
	})
	return closed
}

// All returns the live positions sorted by account then code.
func (l *PositionLedger) All() []Position {
	all := make([]Position, 0, len(l.positions))
	for _, pos := range l.positions {
		all = append(all, *pos)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Account != all[j].Account {
			return all[i].Account < all[j].Account
		}
		return all[i].Code < all[j].Code
	})
	return all
}

// Package store persists replay histories so that the next run can resume
// from the last settled date instead of replaying years of transactions.
package store

import (
	"errors"

	"github.com/luoqi/gxledger"
)

// ErrNoHistory is returned when the store holds no settled date yet.
var ErrNoHistory = errors.New("store holds no history")

// Store is the persistence boundary of the replay engine.
type Store interface {
	// SaveHistory replaces the whole persisted history.
	SaveHistory(h *gxledger.History) error
	// AppendHistory writes the rows of h dated strictly after the given
	// date, replacing anything previously persisted after it.
	AppendHistory(h *gxledger.History, after gxledger.Date) error
	// LatestDate returns the most recent settled date, or ErrNoHistory.
	LatestDate() (gxledger.Date, error)
	// LoadSnapshot returns the holdings and balance rows of one date.
	LoadSnapshot(on gxledger.Date) ([]gxledger.Position, []gxledger.Balance, error)
	// LoadHistory reloads the whole persisted history in date order.
	LoadHistory() (*gxledger.History, error)
	Close() error
}

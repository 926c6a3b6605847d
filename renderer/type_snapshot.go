package renderer

import "github.com/luoqi/gxledger"

// HoldingRow is the display form of one position.
type HoldingRow struct {
	Account  string
	Code     string
	Name     string
	Quantity string
	Cost     string
}

// BalanceRow is the display form of one sub-account balance.
type BalanceRow struct {
	Account     string
	Cash        string
	NetTransfer string
	Recorded    string
	Diff        string
	MarginLoan  string
	Frozen      string
}

// Snapshot is the view model of one date's state.
type Snapshot struct {
	Date     string
	Holdings []HoldingRow
	Balances []BalanceRow
}

// NewSnapshot builds the view model for one date.
func NewSnapshot(on gxledger.Date, holdings []gxledger.Position, balances []gxledger.Balance) *Snapshot {
	s := &Snapshot{Date: on.String()}
	for _, p := range holdings {
		s.Holdings = append(s.Holdings, HoldingRow{
			Account:  string(p.Account),
			Code:     p.Code,
			Name:     p.Name,
			Quantity: p.Quantity.String(),
			Cost:     p.Cost.String(),
		})
	}
	for _, b := range balances {
		s.Balances = append(s.Balances, BalanceRow{
			Account:     string(b.Account),
			Cash:        b.Cash.String(),
			NetTransfer: b.NetTransfer.String(),
			Recorded:    b.Recorded.String(),
			Diff:        b.Diff.String(),
			MarginLoan:  b.MarginLoan.String(),
			Frozen:      b.Frozen.String(),
		})
	}
	return s
}

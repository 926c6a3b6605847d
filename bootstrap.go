package gxledger

// BootstrapDate is the documented start of the relationship's history. The
// initial tables below describe the accounts as of that date; everything
// after is reconstructed from the settlement log.
var BootstrapDate = MustParseDate("20070507")

// InitialHolding documents one position held at the bootstrap date, priced at
// that date's unadjusted close.
type InitialHolding struct {
	Account  AccountType
	Code     string
	Name     string
	Quantity Quantity
	UnitCost Money
}

// InitialBalance documents one account's cash state at the bootstrap date.
type InitialBalance struct {
	Account     AccountType
	NetTransfer Money
	Cash        Money
}

// DefaultHoldings are the holdings at the bootstrap date.
func DefaultHoldings() []InitialHolding {
	return []InitialHolding{
		{Account: AccountCash, Code: "600161", Name: "天坛生物", Quantity: Q(12000), UnitCost: M(20.42, "CNY")},
		{Account: AccountCash, Code: "600677", Name: "航天通信", Quantity: Q(18000), UnitCost: M(32.7, "CNY")},
		{Account: AccountCash, Code: "580006", Name: "雅戈QCB1", Quantity: Q(1), UnitCost: M(17.1, "CNY")},
		{Account: AccountBShare, Code: "900947", Name: "振华B股", Quantity: Q(9900), UnitCost: M(1.6, "USD")},
		{Account: AccountBShare, Code: "900932", Name: "陆家B股", Quantity: Q(100), UnitCost: M(2.5, "USD")},
	}
}

// DefaultBalances are the cash balances at the bootstrap date. The nominal
// account's balance was back-derived from later transactions.
func DefaultBalances() []InitialBalance {
	return []InitialBalance{
		{Account: AccountCash, NetTransfer: M(300000.0, "CNY"), Cash: M(45046.37, "CNY")},
		{Account: AccountBShare, NetTransfer: M(25000.0, "USD"), Cash: M(0, "USD")},
		{Account: AccountMargin, NetTransfer: M(0, "CNY"), Cash: M(0, "CNY")},
	}
}

// OpeningState is the seed a replay run starts from: either the bootstrap
// tables for a full replay, or the last persisted snapshot for an
// incremental one.
type OpeningState struct {
	Date      Date
	Positions *PositionLedger
	Balances  *BalanceLedger
}

// DefaultOpeningState builds the opening state for a full replay from the
// documented bootstrap tables.
func DefaultOpeningState() OpeningState {
	return NewOpeningState(BootstrapDate, DefaultHoldings(), DefaultBalances())
}

// NewOpeningState builds an opening state from explicit initial tables.
func NewOpeningState(on Date, holdings []InitialHolding, balances []InitialBalance) OpeningState {
	positions := NewPositionLedger()
	for _, h := range holdings {
		cost := h.UnitCost.Mul(h.Quantity)
		// ApplyTrade books -amount as cost, so the opening cost is passed negated.
		positions.ApplyTrade(on, h.Account, h.Code, h.Name, cost.Neg(), h.Quantity)
	}
	ledger := NewBalanceLedger()
	for _, b := range balances {
		ledger.Seed(Balance{
			Date:        on,
			Account:     b.Account,
			Cash:        b.Cash,
			NetTransfer: b.NetTransfer,
			Recorded:    M(0, b.Cash.Currency()),
			Diff:        M(0, b.Cash.Currency()),
			MarginLoan:  M(0, b.Cash.Currency()),
			Frozen:      M(0, b.Cash.Currency()),
		})
	}
	return OpeningState{Date: on, Positions: positions, Balances: ledger}
}

// ResumeState rebuilds an opening state from a persisted snapshot's rows, for
// an incremental replay continuing on the day after.
func ResumeState(on Date, positions []Position, balances []Balance) OpeningState {
	state := OpeningState{Date: on, Positions: NewPositionLedger(), Balances: NewBalanceLedger()}
	for _, pos := range positions {
		state.Positions.ApplyTrade(on, pos.Account, pos.Code, pos.Name, pos.Cost.Neg(), pos.Quantity)
	}
	for _, bal := range balances {
		bal.Date = on
		state.Balances.Seed(bal)
	}
	return state
}

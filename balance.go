package gxledger

import "sort"

// Balance is the cash-side state of one sub-account.
//
// Recorded and Diff are reconciliation fields: Recorded is the best-matching
// balance value stamped on the day's source rows, and Diff is the gap between
// the independently computed cash balance and that value. A |Diff| below
// [Epsilon] is rounding noise and flushed to zero.
type Balance struct {
	Date        Date
	Account     AccountType
	Cash        Money // computed cash balance
	NetTransfer Money // cumulative net external deposits/withdrawals
	Recorded    Money // closest source-stated balance seen that day
	Diff        Money // Cash - Recorded after reconciliation
	MarginLoan  Money // outstanding financing loan principal
	Frozen      Money // funds earmarked but not yet spent
}

// BalanceLedger is the mutable per-account cash table of a replay run's
// working state.
type BalanceLedger struct {
	balances map[AccountType]*Balance
}

// NewBalanceLedger creates an empty balance table.
func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{balances: make(map[AccountType]*Balance)}
}

// Clone returns an independent copy, the seed for the next settlement date.
func (l *BalanceLedger) Clone() *BalanceLedger {
	c := NewBalanceLedger()
	for account, bal := range l.balances {
		b := *bal
		c.balances[account] = &b
	}
	return c
}

// Stamp sets the working date on every account balance.
func (l *BalanceLedger) Stamp(on Date) {
	for _, bal := range l.balances {
		bal.Date = on
	}
}

// Get returns the balance of an account, if any.
func (l *BalanceLedger) Get(account AccountType) (*Balance, bool) {
	bal, ok := l.balances[account]
	return bal, ok
}

// Seed installs an opening balance, replacing any previous state for the account.
func (l *BalanceLedger) Seed(b Balance) {
	bal := b
	l.balances[b.Account] = &bal
}

// Apply books one classified transaction's cash effects: the signed amount
// moves the cash balance, the signed bank flow moves the cumulative external
// transfer, and the flagged flows move the loan and frozen balances.
func (l *BalanceLedger) Apply(on Date, account AccountType, amount, bankFlow Money, marginLoan, frozen bool) {
	bal, ok := l.balances[account]
	if !ok {
		bal = &Balance{Date: on, Account: account, Cash: M(0, amount.Currency()), NetTransfer: M(0, amount.Currency())}
		l.balances[account] = bal
	}
	bal.Cash = bal.Cash.Add(amount)
	bal.NetTransfer = bal.NetTransfer.Add(bankFlow)
	if marginLoan {
		bal.MarginLoan = bal.MarginLoan.Add(amount)
	}
	if frozen {
		bal.Frozen = bal.Frozen.Add(amount)
	}
}

// Reconcile picks, among the stated balances seen on the account's rows that
// day, the one closest to the computed cash balance, and books the gap. With
// several rows per day the source gives no ordering guarantee, so only the
// closest value is trusted; on a tie the first seen wins. An empty list skips
// reconciliation entirely: no claim is made for that account-day.
func (l *BalanceLedger) Reconcile(account AccountType, recorded []Money) {
	if len(recorded) == 0 {
		return
	}
	bal, ok := l.balances[account]
	if !ok {
		return
	}
	closest := recorded[0]
	gap := bal.Cash.Sub(closest).Abs()
	for _, v := range recorded[1:] {
		if g := bal.Cash.Sub(v).Abs(); g.LessThan(gap) {
			closest, gap = v, g
		}
	}
	bal.Recorded = closest
	bal.Diff = bal.Cash.Sub(closest)
}

// FlushNoise zeroes verification diffs and loan balances that are below
// [Epsilon] in magnitude, across all accounts.
func (l *BalanceLedger) FlushNoise() {
	for _, bal := range l.balances {
		bal.Diff = bal.Diff.ZeroIfNegligible()
		bal.MarginLoan = bal.MarginLoan.ZeroIfNegligible()
	}
}

// All returns the account balances sorted by account.
func (l *BalanceLedger) All() []Balance {
	all := make([]Balance, 0, len(l.balances))
	for _, bal := range l.balances {
		all = append(all, *bal)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Account < all[j].Account })
	return all
}

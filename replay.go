package gxledger

import (
	"fmt"
	"log"
	"sort"
)

// History is the authoritative output of a replay run: one balance row per
// account per settlement date, one holdings row per live position per date,
// and one realized-profit record per position closeout. Rows are ordered by
// date and never mutated once appended.
type History struct {
	Balances []Balance
	Holdings []Position
	Profits  []RealizedProfitRecord
}

// LastDate returns the most recent settlement date present in the history.
func (h *History) LastDate() Date {
	var last Date
	for _, b := range h.Balances {
		if b.Date.After(last) {
			last = b.Date
		}
	}
	return last
}

// BalancesOn returns the balance rows snapshotted for one date.
func (h *History) BalancesOn(on Date) []Balance {
	var rows []Balance
	for _, b := range h.Balances {
		if b.Date == on {
			rows = append(rows, b)
		}
	}
	return rows
}

// HoldingsOn returns the holdings rows snapshotted for one date.
func (h *History) HoldingsOn(on Date) []Position {
	var rows []Position
	for _, p := range h.Holdings {
		if p.Date == on {
			rows = append(rows, p)
		}
	}
	return rows
}

// Diagnostic is one non-fatal reconciliation warning collected during a
// replay. Warnings never abort the run: the engine's job is to produce the
// best-effort ledger for human review.
type Diagnostic struct {
	Date    Date
	Account AccountType
	Code    string
	Message string
}

func (d Diagnostic) String() string {
	if d.Code != "" {
		return fmt.Sprintf("%s %s %s: %s", d.Date, d.Account, d.Code, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Date, d.Account, d.Message)
}

// Engine replays a settlement log date by date, carrying each day's closing
// state forward as the next day's opening state. It exclusively owns its
// working tables during a run; the snapshots it appends to history are
// independent copies.
type Engine struct {
	table     *Table
	positions *PositionLedger
	balances  *BalanceLedger
	opening   Date
	history   History
	diags     []Diagnostic
}

// NewEngine creates an engine seeded with an opening state. The
// classification table is explicit configuration: the engine has no
// process-wide state.
func NewEngine(table *Table, opening OpeningState) *Engine {
	return &Engine{
		table:     table,
		positions: opening.Positions.Clone(),
		balances:  opening.Balances.Clone(),
		opening:   opening.Date,
	}
}

// Replay processes every record after the opening date, in settlement-date
// order, and returns the accumulated history and diagnostics. A label the
// classification table cannot resolve is fatal and aborts the whole run: a
// partial history is not to be trusted.
func (e *Engine) Replay(records []TransactionRecord) (*History, []Diagnostic, error) {
	if err := e.table.Validate(Labels(records)); err != nil {
		return nil, nil, fmt.Errorf("classification table is out of date: %w", err)
	}

	ordered := make([]TransactionRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	for _, day := range groupByDate(ordered, e.opening) {
		if err := e.replayDate(day); err != nil {
			return nil, nil, err
		}
	}
	return &e.history, e.diags, nil
}

// replayDate runs the four phases of one settlement date: carry-forward,
// transaction application, reconciliation, closing.
func (e *Engine) replayDate(day []TransactionRecord) error {
	on := day[0].Date

	// Carry forward the previous date's closing state as this date's opening.
	e.positions = e.positions.Clone()
	e.balances = e.balances.Clone()
	e.positions.Stamp(on)
	e.balances.Stamp(on)

	recorded := make(map[AccountType][]Money)
	for _, group := range groupByCode(day) {
		if err := e.applyCodeGroup(on, group, recorded); err != nil {
			return err
		}
	}

	accounts := make([]AccountType, 0, len(recorded))
	for account := range recorded {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	for _, account := range accounts {
		e.balances.Reconcile(account, recorded[account])
	}
	e.balances.FlushNoise()

	profits := e.positions.CloseZeroPositions(on)
	e.history.Profits = append(e.history.Profits, profits...)
	e.history.Holdings = append(e.history.Holdings, e.positions.All()...)
	e.history.Balances = append(e.history.Balances, e.balances.All()...)
	return nil
}

// applyCodeGroup applies every transaction of one (date, code) group in
// source row order, after deciding whether the group holds a recognized
// pledge/transfer pair.
func (e *Engine) applyCodeGroup(on Date, group []TransactionRecord, recorded map[AccountType][]Money) error {
	paired := hasTransferPair(group)

	for _, rec := range group {
		rule, err := e.table.Lookup(rec.Label)
		if err != nil {
			return err
		}

		quantity := rec.Quantity.Abs().Mul(Q(rule.QuantitySign))
		amount := rec.Amount.Mul(Q(rule.AmountSign))
		bankFlow := rec.Amount.Mul(Q(rule.BankFlowSign))

		// Only rows naming a real security can touch holdings.
		if isDigits(rec.Code) && rec.Name != "-" {
			e.applyPosition(on, rec, rule, paired, amount, quantity)
		}

		e.balances.Apply(on, rec.Account, amount, bankFlow, rule.MarginLoan, rule.FrozenFunds)
		recorded[rec.Account] = append(recorded[rec.Account], rec.StatedBalance)
	}
	return nil
}

// applyPosition books one row's holdings effect, honoring the transfer-pair
// special case and cost suppression for financing and freeze flows.
func (e *Engine) applyPosition(on Date, rec TransactionRecord, rule Rule, paired bool, amount Money, quantity Quantity) {
	if paired {
		switch rec.Label {
		case LabelCollateralIn, LabelShareIn:
			// The economic effect is realized by the paired outbound leg.
			return
		case LabelShareOut:
			e.transfer(on, rec, rec.Account, AccountMargin)
			return
		case LabelCollateralOut:
			e.transfer(on, rec, rec.Account, AccountCash)
			return
		}
	} else if rec.Label == LabelShareOut || rec.Label == LabelShareIn {
		// An unpaired share transfer is a temporary freeze of the shares
		// (special-situation financing or a tender offer), not a movement.
		return
	}

	cost := amount
	if rule.CostSuppressed() {
		// Financing draws/repayments and fund freezes carry an amount but no
		// genuine price.
		cost = M(0, amount.Currency())
	}
	e.positions.ApplyTrade(on, rec.Account, rec.Code, rec.Name, cost, quantity)
}

// transfer moves quantity and proportional cost between sub-accounts; a
// missing or empty source position is a reconciliation warning, not a crash.
func (e *Engine) transfer(on Date, rec TransactionRecord, from, to AccountType) {
	if err := e.positions.TransferCost(on, from, to, rec.Code, rec.Name, rec.Quantity); err != nil {
		log.Printf("%s: transfer %s: %v", on, rec.Code, err)
		e.diags = append(e.diags, Diagnostic{
			Date:    on,
			Account: from,
			Code:    rec.Code,
			Message: err.Error(),
		})
	}
}

// hasTransferPair reports whether a same-day, same-code group contains one of
// the two recognized pledge/transfer pairs. Containment is on the set of
// labels: both legs must occur, other labels may too.
func hasTransferPair(group []TransactionRecord) bool {
	labels := make(map[string]bool, len(group))
	for _, rec := range group {
		labels[rec.Label] = true
	}
	return (labels[LabelCollateralIn] && labels[LabelShareOut]) ||
		(labels[LabelShareIn] && labels[LabelCollateralOut])
}

// groupByDate splits records into per-date groups in ascending date order,
// skipping anything at or before the opening date so that an incremental
// replay never double-applies a day.
func groupByDate(records []TransactionRecord, opening Date) [][]TransactionRecord {
	var days [][]TransactionRecord
	skipped := 0
	for _, rec := range records {
		if !rec.Date.After(opening) {
			skipped++
			continue
		}
		if n := len(days); n > 0 && days[n-1][0].Date == rec.Date {
			days[n-1] = append(days[n-1], rec)
			continue
		}
		days = append(days, []TransactionRecord{rec})
	}
	if skipped > 0 {
		log.Printf("skipped %d settlement rows dated on or before the opening date %s", skipped, opening)
	}
	return days
}

// groupByCode splits one date's records into per-code groups, preserving the
// original row order within each group and the first-seen order of codes.
func groupByCode(day []TransactionRecord) [][]TransactionRecord {
	index := make(map[string]int)
	var groups [][]TransactionRecord
	for _, rec := range day {
		i, ok := index[rec.Code]
		if !ok {
			i = len(groups)
			index[rec.Code] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], rec)
	}
	return groups
}

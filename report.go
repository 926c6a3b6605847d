package gxledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ReportDiscrepancies walks the balance history and surfaces every
// verification diff beyond [Epsilon] as a warning. It is a pure read: it
// never blocks or alters a replay.
func ReportDiscrepancies(h *History) []Diagnostic {
	var warnings []Diagnostic
	for _, bal := range h.Balances {
		if bal.Diff.IsZero() {
			continue
		}
		warnings = append(warnings, Diagnostic{
			Date:    bal.Date,
			Account: bal.Account,
			Message: fmt.Sprintf("computed balance %s differs from recorded %s by %s", bal.Cash, bal.Recorded, bal.Diff),
		})
	}
	return warnings
}

// TradeSummary aggregates the whole history of one security code: cumulative
// buy and sell legs, the net position they imply, and the overall profit of
// having traded it.
type TradeSummary struct {
	Code       string
	Name       string
	Bought     Quantity // cumulative quantity of buy-side legs
	Sold       Quantity // cumulative quantity of sell-side legs (negative)
	NetShares  Quantity
	BuySpend   Money            // cumulative buy outlay, as a positive number
	Profit     Money            // cumulative signed amount over all legs
	ProfitRate decimal.Decimal  // Profit / BuySpend, zero when nothing was bought
	BuyDetail  map[string]Money // buy-side amount totals per type label
	SellDetail map[string]Money // sell-side amount totals per type label
}

// SummarizeTrades classifies every record and aggregates per-code totals,
// sorted by code. It fails on an unknown label, like the replay engine does.
func SummarizeTrades(table *Table, records []TransactionRecord) ([]TradeSummary, error) {
	byCode := make(map[string]*TradeSummary)
	var order []string

	for _, rec := range records {
		rule, err := table.Lookup(rec.Label)
		if err != nil {
			return nil, err
		}
		s, ok := byCode[rec.Code]
		if !ok {
			s = &TradeSummary{
				Code:       rec.Code,
				Name:       rec.Name,
				BuyDetail:  make(map[string]Money),
				SellDetail: make(map[string]Money),
			}
			byCode[rec.Code] = s
			order = append(order, rec.Code)
		}

		quantity := rec.Quantity.Abs().Mul(Q(rule.QuantitySign))
		amount := rec.Amount.Mul(Q(rule.AmountSign))

		switch rule.QuantitySign {
		case 1:
			s.Bought = s.Bought.Add(quantity)
			s.BuyDetail[rec.Label] = s.BuyDetail[rec.Label].Add(amount)
			s.BuySpend = s.BuySpend.Sub(amount)
		case -1:
			s.Sold = s.Sold.Add(quantity)
			s.SellDetail[rec.Label] = s.SellDetail[rec.Label].Add(amount)
		}
		s.Profit = s.Profit.Add(amount)
	}

	summaries := make([]TradeSummary, 0, len(order))
	for _, code := range order {
		s := byCode[code]
		s.NetShares = s.Bought.Add(s.Sold)
		if !s.BuySpend.IsZero() {
			s.ProfitRate = s.Profit.Decimal().Div(s.BuySpend.Decimal())
		}
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Code < summaries[j].Code })
	return summaries, nil
}

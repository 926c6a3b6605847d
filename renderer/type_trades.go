package renderer

import (
	"github.com/shopspring/decimal"

	"github.com/luoqi/gxledger"
)

// TradeRow is the display form of one security's cumulative trading summary.
type TradeRow struct {
	Code       string
	Name       string
	Bought     string
	Sold       string
	NetShares  string
	BuySpend   string
	Profit     string
	ProfitRate string
}

// ProfitRow is the display form of one closed-out position.
type ProfitRow struct {
	Date    string
	Account string
	Code    string
	Name    string
	Profit  string
}

// Trades is the view model of the trading summary report.
type Trades struct {
	Rows    []TradeRow
	Profits []ProfitRow
}

// NewTrades builds the view model from per-security summaries and the
// realized-profit history.
func NewTrades(summaries []gxledger.TradeSummary, profits []gxledger.RealizedProfitRecord) *Trades {
	tr := &Trades{}
	for _, s := range summaries {
		tr.Rows = append(tr.Rows, TradeRow{
			Code:       s.Code,
			Name:       s.Name,
			Bought:     s.Bought.String(),
			Sold:       s.Sold.String(),
			NetShares:  s.NetShares.String(),
			BuySpend:   s.BuySpend.String(),
			Profit:     s.Profit.String(),
			ProfitRate: percent(s.ProfitRate),
		})
	}
	for _, r := range profits {
		tr.Profits = append(tr.Profits, ProfitRow{
			Date:    r.Date.String(),
			Account: string(r.Account),
			Code:    r.Code,
			Name:    r.Name,
			Profit:  r.Profit.String(),
		})
	}
	return tr
}

func percent(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "-"
	}
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

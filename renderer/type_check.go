package renderer

import "github.com/luoqi/gxledger"

// CheckRow is one reconciliation warning in display form.
type CheckRow struct {
	Date    string
	Account string
	Code    string
	Message string
}

// Check is the view model of the reconciliation check report.
type Check struct {
	Rows []CheckRow
}

// NewCheck builds the view model from the collected warnings.
func NewCheck(diags []gxledger.Diagnostic) *Check {
	c := &Check{}
	for _, d := range diags {
		c.Rows = append(c.Rows, CheckRow{
			Date:    d.Date.String(),
			Account: string(d.Account),
			Code:    d.Code,
			Message: d.Message,
		})
	}
	return c
}

// Clean reports whether every balance reconciled exactly.
func (c *Check) Clean() bool { return len(c.Rows) == 0 }

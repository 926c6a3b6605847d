package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.NoError(t, ExportCSV(dir, sampleHistory()))

	read := func(name string) [][]string {
		f, err := os.Open(filepath.Join(dir, name))
		assert.NoError(t, err)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		assert.NoError(t, err)
		return rows
	}

	balances := read("balances.csv")
	assert.Len(t, balances, 3) // header + 2 rows
	assert.Equal(t, []string{"date", "account", "currency", "cash", "net_transfer", "recorded", "diff", "margin_loan", "frozen"}, balances[0])
	assert.Equal(t, "2014-01-02", balances[1][0])
	assert.Equal(t, "90000", balances[1][3])
	assert.Equal(t, "-0.03", balances[2][6])

	holdings := read("holdings.csv")
	assert.Len(t, holdings, 2)
	assert.Equal(t, "600100", holdings[1][2])
	assert.Equal(t, "同方股份", holdings[1][3])

	profits := read("profits.csv")
	assert.Len(t, profits, 2)
	assert.Equal(t, "2000", profits[1][6])
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHelpDescribesRupeeFallback(t *testing.T) {
	assert.Contains(t, renderCmd.Long, `"₹" is printed as`)
	assert.Contains(t, renderCmd.Long, "Rs.3660.00")
	assert.Contains(t, renderCmd.Long, "pdf.regular_font")
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Input", "Receipts"},
		[][]string{{"june.csv", "3"}, {"july.yaml"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	assert.Contains(t, out, "INPUT")
	assert.Contains(t, out, "june.csv")
	assert.Contains(t, out, "july.yaml")
	assert.Empty(t, renderTable(nil, nil, nil))
}

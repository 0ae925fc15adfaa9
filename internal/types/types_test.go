package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSampleTransaction(t *testing.T) {
	rec := SampleTransaction()

	assert.Equal(t, "2024/06/08", rec.Date)
	assert.Equal(t, 12, rec.ItemCount())
	assert.True(t, rec.Total.Equal(decimal.NewFromInt(3660)))
	assert.True(t, rec.SumOfLineTotals().Equal(rec.Total))

	for _, item := range rec.Items {
		assert.True(t, item.ExpectedTotal().Equal(item.LineTotal), item.Name)
	}
}

func TestSampleTransaction_ReturnsFreshValue(t *testing.T) {
	a := SampleTransaction()
	a.Items[0].Name = "changed"
	a.CustomerName = "changed"

	b := SampleTransaction()
	assert.Equal(t, "Colouring Books", b.Items[0].Name)
	assert.Equal(t, "Tara Arjun", b.CustomerName)
}

func TestSumOfLineTotals_Empty(t *testing.T) {
	rec := TransactionRecord{}
	assert.True(t, rec.SumOfLineTotals().IsZero())
}

package types

import "github.com/shopspring/decimal"

// SampleTransaction builds the demonstration receipt: twelve stationery items
// bought on 2024/06/08, totalling 3660.00. Every call returns a fresh value.
func SampleTransaction() TransactionRecord {
	item := func(name string, qty int64, price int64) LineItem {
		unit := decimal.NewFromInt(price)
		return LineItem{
			Name:      name,
			Quantity:  int(qty),
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(qty)),
		}
	}

	return TransactionRecord{
		Date:         "2024/06/08",
		CustomerID:   "SS1256",
		CustomerName: "Tara Arjun",
		Items: []LineItem{
			item("Colouring Books", 3, 200),
			item("Canvas Board", 1, 500),
			item("Acrylic Paints", 2, 350),
			item("Sketches", 4, 150),
			item("Painting Brushes", 5, 100),
			item("Palettes", 2, 50),
			item("Stand for Pens Holding", 1, 150),
			item("Water Holder", 1, 75),
			item("Paper Clips", 10, 20),
			item("Pencils", 12, 15),
			item("Eraser", 5, 5),
			item("Sharpener", 3, 10),
		},
		Total: decimal.NewFromInt(3660),
	}
}

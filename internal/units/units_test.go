package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInches(t *testing.T) {
	tests := []struct {
		name   string
		inches float64
		want   Length
	}{
		{"zero", 0, 0},
		{"one inch", 1, 72},
		{"margin", 0.75, 54},
		{"row height", 0.25, 18},
		{"table header", 0.3, 21.6},
		{"price column", 4.5, 324},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, float64(tt.want), float64(Inches(tt.inches)), 1e-9)
		})
	}
}

func TestLength_Inches(t *testing.T) {
	assert.InDelta(t, 8.5, Letter.Width.Inches(), 1e-9)
	assert.InDelta(t, 11.0, Letter.Height.Inches(), 1e-9)
}

func TestLength_TimesHasNoDrift(t *testing.T) {
	row := Inches(0.25)
	anchor := Inches(10)

	walked := anchor
	for i := 0; i < 15; i++ {
		walked -= row
	}

	assert.Equal(t, anchor-row.Times(15), Inches(10-15*0.25))
	assert.InDelta(t, float64(walked), float64(anchor-row.Times(15)), 1e-9)
}

func TestPage_Geometry(t *testing.T) {
	page := NewPage(Letter, Inches(0.75))

	assert.Equal(t, Length(504), page.UsableWidth())
	assert.Equal(t, Length(738), page.Top())
	assert.Equal(t, Length(54), page.Bottom())
	assert.Equal(t, Length(54), page.Left())
	assert.Equal(t, Length(306), page.CenterX())
	assert.Equal(t, Cursor{X: 54, Y: 738}, page.Origin())
}

func TestCursor_Moves(t *testing.T) {
	c := Cursor{X: 10, Y: 100}

	assert.Equal(t, Cursor{X: 10, Y: 82}, c.Down(18))
	assert.Equal(t, Cursor{X: 60, Y: 100}, c.Right(50))
	assert.Equal(t, Cursor{X: 10, Y: 100}, c, "moves return new values")
}

func TestPageSizeByName(t *testing.T) {
	size, ok := PageSizeByName("letter")
	assert.True(t, ok)
	assert.Equal(t, Letter, size)

	size, ok = PageSizeByName("A4")
	assert.True(t, ok)
	assert.Equal(t, A4, size)

	_, ok = PageSizeByName("tabloid")
	assert.False(t, ok)
}

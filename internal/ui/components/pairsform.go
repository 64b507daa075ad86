package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"clipreplace/internal/replace"
)

// PairsForm is the grid of "Replace" / "With" entries.
type PairsForm struct {
	patterns     []*widget.Entry
	replacements []*widget.Entry
	container    *fyne.Container
}

func NewPairsForm(capacity int) *PairsForm {
	if capacity <= 0 {
		capacity = replace.DefaultCapacity
	}

	pf := &PairsForm{
		patterns:     make([]*widget.Entry, capacity),
		replacements: make([]*widget.Entry, capacity),
	}

	for i := 0; i < capacity; i++ {
		pf.patterns[i] = widget.NewEntry()
		pf.patterns[i].SetPlaceHolder(fmt.Sprintf("Text %d", i+1))
		pf.replacements[i] = widget.NewEntry()
		pf.replacements[i].SetPlaceHolder("Replacement")
	}

	return pf
}

func (pf *PairsForm) Create() fyne.CanvasObject {
	if pf.container == nil {
		grid := container.New(layout.NewFormLayout())
		for i := range pf.patterns {
			grid.Add(widget.NewLabel("Replace:"))
			grid.Add(container.NewGridWithColumns(3,
				pf.patterns[i],
				widget.NewLabelWithStyle("with", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
				pf.replacements[i],
			))
		}

		pf.container = container.NewVBox(
			widget.NewLabelWithStyle("Replacement Pairs", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			grid,
		)
	}
	return pf.container
}

func (pf *PairsForm) Capacity() int {
	return len(pf.patterns)
}

// Pairs returns every row in display order, including empty ones.
func (pf *PairsForm) Pairs() []replace.Pair {
	pairs := make([]replace.Pair, len(pf.patterns))
	for i := range pf.patterns {
		pairs[i] = replace.Pair{
			Pattern:     pf.patterns[i].Text,
			Replacement: pf.replacements[i].Text,
		}
	}
	return pairs
}

// Table snapshots the current rows into a replacement table.
func (pf *PairsForm) Table() (*replace.Table, error) {
	return replace.BuildTable(pf.Pairs(), pf.Capacity())
}

// SetPairs fills rows from the top and clears the rest. Pairs past capacity are ignored.
func (pf *PairsForm) SetPairs(pairs []replace.Pair) {
	for i := range pf.patterns {
		var p replace.Pair
		if i < len(pairs) {
			p = pairs[i]
		}
		pf.patterns[i].SetText(p.Pattern)
		pf.replacements[i].SetText(p.Replacement)
	}
}

func (pf *PairsForm) Clear() {
	pf.SetPairs(nil)
}

// Invert swaps the two columns in place.
func (pf *PairsForm) Invert() {
	pairs := pf.Pairs()
	replace.Invert(pairs)
	pf.SetPairs(pairs)
}

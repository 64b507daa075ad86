package components

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/replace"
)

func TestPairsForm(t *testing.T) {
	test.NewTempApp(t)

	pf := NewPairsForm(3)
	assert.NotNil(t, pf.Create())
	assert.Equal(t, 3, pf.Capacity())

	_, err := pf.Table()
	assert.True(t, errors.Is(err, replace.ErrNoPairs))

	pf.SetPairs([]replace.Pair{
		{Pattern: "a", Replacement: "b"},
		{Pattern: "", Replacement: "orphan"},
		{Pattern: "c", Replacement: ""},
		{Pattern: "past", Replacement: "capacity"},
	})
	assert.Equal(t, []replace.Pair{
		{Pattern: "a", Replacement: "b"},
		{Pattern: "", Replacement: "orphan"},
		{Pattern: "c", Replacement: ""},
	}, pf.Pairs())

	table, err := pf.Table()
	require.NoError(t, err)
	assert.Equal(t, []replace.Pair{{Pattern: "a", Replacement: "b"}, {Pattern: "c", Replacement: ""}}, table.Pairs())

	// Edits after the snapshot do not reach the table.
	pf.patterns[1].SetText("x")
	assert.Equal(t, 2, table.Len())

	pf.Invert()
	assert.Equal(t, []replace.Pair{
		{Pattern: "b", Replacement: "a"},
		{Pattern: "orphan", Replacement: "x"},
		{Pattern: "", Replacement: "c"},
	}, pf.Pairs())

	pf.Clear()
	assert.Equal(t, make([]replace.Pair, 3), pf.Pairs())
}

func TestToolbar_SetRunning(t *testing.T) {
	test.NewTempApp(t)

	toggled := false
	tb := NewToolbar(ToolbarActions{OnToggle: func() { toggled = true }})
	assert.NotNil(t, tb.Create())
	assert.Equal(t, "Start Monitoring", tb.ToggleText())

	test.Tap(tb.toggleButton)
	assert.True(t, toggled)

	tb.SetRunning(true)
	assert.Equal(t, "Stop Monitoring", tb.ToggleText())
	tb.SetRunning(false)
	assert.Equal(t, "Start Monitoring", tb.ToggleText())
}

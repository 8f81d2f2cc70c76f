package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixdo/internal/task"
)

func TestVisibleFilters(t *testing.T) {
	m := Model{
		tasks: []task.Task{
			{ID: "a", Completed: false},
			{ID: "b", Completed: true},
			{ID: "c", Completed: false},
		},
	}

	m.filter = "all"
	assert.Len(t, m.visible(), 3)

	m.filter = "active"
	require.Len(t, m.visible(), 2)
	assert.Equal(t, "a", m.visible()[0].ID)

	m.filter = "done"
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "b", m.visible()[0].ID)
}

func TestNextFilterCycles(t *testing.T) {
	assert.Equal(t, "active", nextFilter("all"))
	assert.Equal(t, "done", nextFilter("active"))
	assert.Equal(t, "all", nextFilter("done"))
	assert.Equal(t, "all", nextFilter("bogus"))
}

func TestTriStateRoundTrip(t *testing.T) {
	assert.Equal(t, "-", triToYN(nil))
	assert.Equal(t, "y", triToYN(task.Bool(true)))
	assert.Equal(t, "n", triToYN(task.Bool(false)))

	assert.Nil(t, ynToTri(""))
	assert.Nil(t, ynToTri("-"))
	require.NotNil(t, ynToTri("Y"))
	assert.True(t, *ynToTri("yes"))
	require.NotNil(t, ynToTri("no"))
	assert.False(t, *ynToTri("no"))
}

func TestParseFieldValidation(t *testing.T) {
	_, err := parseDateField("2026-02-30")
	assert.Error(t, err)
	v, err := parseDateField(" 2026-02-20 ")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-20", v)

	_, err = parseTimeField("25:00")
	assert.Error(t, err)

	d, err := parseDaysField("3")
	require.NoError(t, err)
	assert.Equal(t, 3, *d)
	d, err = parseDaysField("")
	require.NoError(t, err)
	assert.Nil(t, d)
	_, err = parseDaysField("-2")
	assert.Error(t, err)
}

func TestClampAndWrap(t *testing.T) {
	assert.Equal(t, 0, clampCursor(-1, 5))
	assert.Equal(t, 4, clampCursor(9, 5))
	assert.Equal(t, 0, clampCursor(3, 0))

	assert.Equal(t, 0, wrapIndex(8, 8))
	assert.Equal(t, 7, wrapIndex(-1, 8))
}

func TestShadeFor(t *testing.T) {
	assert.Equal(t, "·", shadeFor(0, 4))
	assert.Equal(t, "█", shadeFor(4, 4))
	assert.Equal(t, "█", shadeFor(1, 1))
	assert.NotEqual(t, "·", shadeFor(1, 100))
}

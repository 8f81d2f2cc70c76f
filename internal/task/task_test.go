package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFourQuadrants(t *testing.T) {
	assert.Equal(t, QuadrantDo, Classify(Bool(true), Bool(true)))
	assert.Equal(t, QuadrantSchedule, Classify(Bool(false), Bool(true)))
	assert.Equal(t, QuadrantDelegate, Classify(Bool(true), Bool(false)))
	assert.Equal(t, QuadrantDelete, Classify(Bool(false), Bool(false)))
}

func TestClassifyUnsetAxis(t *testing.T) {
	assert.Equal(t, QuadrantNone, Classify(nil, nil))
	assert.Equal(t, QuadrantNone, Classify(Bool(true), nil))
	assert.Equal(t, QuadrantNone, Classify(nil, Bool(true)))
}

func TestClassifyCoversWithoutOverlap(t *testing.T) {
	seen := map[Quadrant]bool{}
	for _, u := range []bool{true, false} {
		for _, i := range []bool{true, false} {
			q := Classify(Bool(u), Bool(i))
			assert.False(t, seen[q], "quadrant %s produced twice", q)
			seen[q] = true
		}
	}
	assert.Len(t, seen, 4)
}

func TestQuadrantIgnoresOtherFields(t *testing.T) {
	base := Task{Urgent: Bool(true), Important: Bool(false)}
	modified := base
	modified.Title = "changed"
	modified.Completed = true
	modified.DueDate = "2026-03-01"
	modified.GroupID = "g1"
	modified.UpdatedAt = time.Now()

	assert.Equal(t, base.Quadrant(), modified.Quadrant())
}

func TestQuadrantDisplayNames(t *testing.T) {
	assert.Equal(t, "Do First", QuadrantDo.DisplayName())
	assert.Equal(t, "Schedule", QuadrantSchedule.DisplayName())
	assert.Equal(t, "Delegate", QuadrantDelegate.DisplayName())
	assert.Equal(t, "Eliminate", QuadrantDelete.DisplayName())
	assert.Equal(t, "Unclassified", QuadrantNone.DisplayName())
}

func TestDueParsing(t *testing.T) {
	loc := time.UTC

	due, timed, ok := Task{DueDate: "2026-02-20"}.Due(loc)
	require.True(t, ok)
	assert.False(t, timed)
	assert.Equal(t, time.Date(2026, 2, 20, 0, 0, 0, 0, loc), due)

	due, timed, ok = Task{DueDate: "2026-02-20", DueTime: "14:30"}.Due(loc)
	require.True(t, ok)
	assert.True(t, timed)
	assert.Equal(t, time.Date(2026, 2, 20, 14, 30, 0, 0, loc), due)

	_, _, ok = Task{}.Due(loc)
	assert.False(t, ok)

	_, _, ok = Task{DueDate: "not-a-date"}.Due(loc)
	assert.False(t, ok)
}

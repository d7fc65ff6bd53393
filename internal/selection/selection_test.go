package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/internal/pathset"
	"github.com/oakwood-commons/treepick/internal/treetest"
	"github.com/oakwood-commons/treepick/pkg/tree"
)

var allScenario = []string{"root.a", "root.a.b", "root.a.c", "root.a.c.[0]", "root.a.c.[1]"}

func newScenario(t *testing.T) *State {
	t.Helper()
	return New(pathindex.Build(treetest.Scenario()))
}

func assertSelected(t *testing.T, s *State, want ...string) {
	t.Helper()
	assert.True(t, s.Selected().Equal(pathset.New(want...)), "selected = %v, want %v",
		s.Selected().Sorted(s.idx.Order), want)
}

func TestCascadeSelectScenario(t *testing.T) {
	s := newScenario(t)

	changed := s.ToggleSelect("root.a", true, true, nil)
	assert.Equal(t, allScenario, changed)
	assertSelected(t, s, allScenario...)

	s.ToggleSelect("root.a", false, true, nil)
	assertSelected(t, s)
}

func TestLeafSelectionRecomputesAncestors(t *testing.T) {
	s := newScenario(t)

	s.ToggleSelect("root.a.c.[0]", true, true, nil)
	assertSelected(t, s, "root.a.c.[0]")

	s.ToggleSelect("root.a.c.[1]", true, true, nil)
	assertSelected(t, s, "root.a.c", "root.a.c.[0]", "root.a.c.[1]")

	s.ToggleSelect("root.a.b", true, false, nil)
	assertSelected(t, s, allScenario...)

	s.ToggleSelect("root.a.c.[0]", false, false, nil)
	assertSelected(t, s, "root.a.b", "root.a.c.[1]")
}

func TestRootAndUnknownAreNoops(t *testing.T) {
	s := newScenario(t)
	assert.Nil(t, s.ToggleSelect(pathindex.Root, true, true, nil))
	assert.Nil(t, s.ToggleSelect("root.nope", true, true, nil))
	assert.Nil(t, s.Lock("root.nope", true))
	assert.Nil(t, s.Lock(pathindex.Root, true))
	assert.True(t, s.IsSelected(pathindex.Root))
	assertSelected(t, s)
}

func TestLockedPathIgnoresToggle(t *testing.T) {
	s := newScenario(t)
	s.ToggleSelect("root.a.b", true, false, nil)
	require.Equal(t, []string{"root.a.b"}, s.Lock("root.a.b", false))

	assert.Nil(t, s.ToggleSelect("root.a.b", false, true, nil))
	assert.True(t, s.IsSelected("root.a.b"))
}

func TestCascadeSkipsLockedDescendants(t *testing.T) {
	s := newScenario(t)
	s.Lock("root.a.b", false)

	s.ToggleSelect("root.a", true, true, nil)
	// b stays unselected, so a cannot be fully selected
	assertSelected(t, s, "root.a.c", "root.a.c.[0]", "root.a.c.[1]")
}

func TestCascadeRespectsFilter(t *testing.T) {
	s := newScenario(t)
	filtered := pathset.New("root", "root.a", "root.a.c", "root.a.c.[0]")

	// hidden children still count, so c and a stay partial
	changed := s.ToggleSelect("root.a", true, true, filtered)
	assert.Equal(t, []string{"root.a.c.[0]"}, changed)
	assertSelected(t, s, "root.a.c.[0]")
}

func TestFilteredCascadeAgreesWithLaterToggles(t *testing.T) {
	s := New(pathindex.Build(tree.ObjectOf("x", tree.ObjectOf("y", 1, "z", 2))))

	s.ToggleSelect("root.x", true, true, pathset.New("root", "root.x", "root.x.y"))
	assertSelected(t, s, "root.x.y")

	s.ToggleSelect("root.x.y", false, true, nil)
	s.ToggleSelect("root.x.y", true, true, nil)
	assertSelected(t, s, "root.x.y")

	s.ToggleSelect("root.x.z", true, true, nil)
	assertSelected(t, s, "root.x", "root.x.y", "root.x.z")
}

func lockedInterior(t *testing.T) *State {
	t.Helper()
	s := New(pathindex.Build(tree.ObjectOf("x", tree.ObjectOf("p", tree.ObjectOf("q", 1, "r", 2)))))
	s.ToggleSelect("root.x", true, true, nil)
	require.Equal(t, []string{"root.x.p"}, s.Lock("root.x.p", false))
	return s
}

func TestLockedInteriorSurvivesCascade(t *testing.T) {
	s := lockedInterior(t)
	assert.True(t, s.Frozen("root.x.p.q"))
	assert.False(t, s.Frozen("root.x"))

	// x has a single child, which is frozen selected
	assert.Nil(t, s.ToggleSelect("root.x", false, true, nil))
	assertSelected(t, s, "root.x", "root.x.p", "root.x.p.q", "root.x.p.r")

	assert.Nil(t, s.ToggleSelect("root.x.p.q", false, true, nil))
	assertSelected(t, s, "root.x", "root.x.p", "root.x.p.q", "root.x.p.r")
}

func TestLockedInteriorSurvivesBulk(t *testing.T) {
	for name, op := range map[string]func(*State, pathset.Set) []string{
		"deselect all": (*State).DeselectAll,
		"invert":       (*State).Invert,
		"select all":   (*State).SelectAll,
	} {
		t.Run(name, func(t *testing.T) {
			s := lockedInterior(t)
			op(s, nil)
			assertSelected(t, s, "root.x", "root.x.p", "root.x.p.q", "root.x.p.r")
		})
	}
}

func TestLockCascadeAndUnlock(t *testing.T) {
	s := newScenario(t)
	s.ToggleSelect("root.a", true, true, nil)

	changed := s.Lock("root.a.c", true)
	assert.Equal(t, []string{"root.a.c", "root.a.c.[0]", "root.a.c.[1]"}, changed)
	assertSelected(t, s, allScenario...)

	s.ToggleSelect("root.a", false, true, nil)
	assertSelected(t, s, "root.a.c", "root.a.c.[0]", "root.a.c.[1]")

	assert.Equal(t, []string{"root.a.c.[0]"}, s.Unlock("root.a.c.[0]", false))
	assert.True(t, s.IsLocked("root.a.c"))
	assert.False(t, s.IsLocked("root.a.c.[0]"))

	assert.Equal(t, []string{"root.a.c.[0]"}, s.ToggleLock("root.a.c.[0]", false))
	assert.True(t, s.IsLocked("root.a.c.[0]"))
}

func TestLockSelectedAndUnlockVisible(t *testing.T) {
	s := newScenario(t)
	s.ToggleSelect("root.a.c", true, true, nil)

	assert.Equal(t, []string{"root.a.c", "root.a.c.[0]", "root.a.c.[1]"}, s.LockSelected())
	assert.Equal(t, 3, s.LockedCount())

	changed := s.UnlockVisible(pathset.New("root", "root.a", "root.a.c", "root.a.c.[0]"))
	assert.Equal(t, []string{"root.a.c", "root.a.c.[0]"}, changed)
	assert.True(t, s.IsLocked("root.a.c.[1]"))

	assert.Equal(t, []string{"root.a.c.[1]"}, s.UnlockVisible(nil))
	assert.Equal(t, 0, s.LockedCount())
	// unlocking never changes selection
	assertSelected(t, s, "root.a.c", "root.a.c.[0]", "root.a.c.[1]")
}

func TestBulkOperations(t *testing.T) {
	s := newScenario(t)

	s.SelectAll(nil)
	assertSelected(t, s, allScenario...)
	assert.Nil(t, s.SelectAll(nil))

	s.DeselectAll(nil)
	assertSelected(t, s)

	s.ToggleSelect("root.a.b", true, false, nil)
	s.Invert(nil)
	assertSelected(t, s, "root.a.c", "root.a.c.[0]", "root.a.c.[1]")
}

func TestBulkScopeSkipsLocks(t *testing.T) {
	s := newScenario(t)
	s.Lock("root.a.c.[1]", false)

	s.SelectAll(pathset.New("root.a.c"))
	assertSelected(t, s, "root.a.c.[0]")

	s.SelectMatched([]string{"root.a.b"}, true)
	assertSelected(t, s, "root.a.b", "root.a.c.[0]")
}

func TestSelectPathsIgnoresUnknown(t *testing.T) {
	s := newScenario(t)
	changed := s.SelectPaths([]string{"root.zz", "root.a.c"}, true)
	assert.Equal(t, []string{"root.a.c", "root.a.c.[0]", "root.a.c.[1]"}, changed)
}

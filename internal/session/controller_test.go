package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/treepick/pkg/loader"
	"github.com/oakwood-commons/treepick/pkg/settings"
)

func TestControllerStartsEmpty(t *testing.T) {
	c := NewController(DefaultOptions(), logr.Discard())
	_, err := c.Current()
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestControllerKeepsSessionOnFailedLoad(t *testing.T) {
	c := NewController(DefaultOptions(), logr.Discard())
	first, err := c.Load([]byte(`{"a": {"b": 1}}`), stdin)
	require.NoError(t, err)
	first.ToggleSelect("root.a", true)

	_, err = c.Load([]byte("   "), stdin)
	assert.ErrorIs(t, err, loader.ErrEmptyInput)

	cur, err := c.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
	assert.True(t, cur.Selection().IsSelected("root.a.b"))
}

func TestControllerReplacesWholesale(t *testing.T) {
	c := NewController(DefaultOptions(), logr.Discard())
	first, err := c.Load([]byte(`{"a": 1}`), stdin)
	require.NoError(t, err)
	first.ToggleSelect("root.a", true)
	first.SetAutoSelectChildren(false)

	second, err := c.Load([]byte("a: 2\nb: 3\n"), stdin)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Zero(t, second.Stats().Selected)
	// toggles carry over, state does not
	assert.False(t, second.AutoSelectChildren())
}

func TestControllerLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 3]`), 0o600))

	c := NewController(DefaultOptions(), logr.Discard())
	s, err := c.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, settings.SourceFile, s.Source().Kind)
	assert.Equal(t, path, s.Source().Name())
	assert.Equal(t, 4, s.Stats().Nodes)

	_, err = c.LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
	cur, _ := c.Current()
	assert.Same(t, s, cur)
}

func TestSelectJSONPath(t *testing.T) {
	c := NewController(DefaultOptions(), logr.Discard())
	s, err := c.Load([]byte(`{"items":[{"id":1,"name":"one"},{"id":2,"name":"two"}],"x.y":true}`), stdin)
	require.NoError(t, err)

	paths, err := s.ResolveJSONPath("$.items[*].name")
	require.NoError(t, err)
	assert.Equal(t, []string{"root.items.[0].name", "root.items.[1].name"}, paths)

	paths, err = s.ResolveJSONPath(`$["x.y"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{`root.x\.y`}, paths)

	ch, err := s.SelectJSONPath("$.items[1]")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"root.items.[1]", "root.items.[1].id", "root.items.[1].name"}, ch.Paths)

	_, err = s.SelectJSONPath("$[")
	assert.Error(t, err)
}

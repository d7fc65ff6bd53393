package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneration(t *testing.T) {
	var g Generation
	assert.False(t, g.IsCurrent(0))

	first := g.Next()
	assert.True(t, g.IsCurrent(first))

	second := g.Next()
	assert.False(t, g.IsCurrent(first))
	assert.True(t, g.IsCurrent(second))

	g.Cancel()
	assert.False(t, g.IsCurrent(second))
}

func TestChunk(t *testing.T) {
	paths := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, Chunk(paths, 2))
	assert.Equal(t, [][]string{paths}, Chunk(paths, 0))
	assert.Nil(t, Chunk(nil, 3))
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkRowsStaysUnderVarLimit(t *testing.T) {
	chunks := chunkRows(2500, 6)

	total := 0
	for _, n := range chunks {
		assert.LessOrEqual(t, n*6, maxSQLVars)
		assert.Positive(t, n)
		total += n
	}
	assert.Equal(t, 2500, total)
}

func TestChunkRowsEmpty(t *testing.T) {
	assert.Empty(t, chunkRows(0, 6))
}

func TestChunkRowsSingle(t *testing.T) {
	assert.Equal(t, []int{1}, chunkRows(1, 9))
}

func TestRepeatValues(t *testing.T) {
	assert.Equal(t, "(?)", repeatValues(1, 1))
	assert.Equal(t, "(?, ?), (?, ?)", repeatValues(2, 2))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

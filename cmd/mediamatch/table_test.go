package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Kind", "Entries"},
		[][]string{{"movie", "12"}, {"anime"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "╭───────┬─────────╮", lines[0])
	assert.Equal(t, "│ KIND  │ ENTRIES │", lines[1])
	assert.Equal(t, "│ movie │      12 │", lines[3])
	assert.Equal(t, "│ anime │         │", lines[4])
	assert.Equal(t, "╰───────┴─────────╯", lines[5])
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, renderTable(nil, [][]string{{"x"}}, nil))
}

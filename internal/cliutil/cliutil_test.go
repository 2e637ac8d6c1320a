package cliutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	out := &bytes.Buffer{}
	tbl := NewTable(out)
	tbl.AppendHeader(table.Row{"app", "rows"})
	tbl.AppendRow(table.Row{"search", 2})
	tbl.Render()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[0], "╭"))
	require.Contains(t, lines[1], "APP")
	require.Contains(t, lines[3], "search")
}

package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/seedscout/founder-harvest/internal/harvest"
)

func TestXLSX_Publish_WritesWorkbook(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "founders.xlsx")
	s, err := NewXLSX(path)
	require.NoError(t, err)

	rows := [][]string{
		founderRow("Jane Doe", "https://www.ycombinator.com/founders/jane-doe"),
	}
	require.NoError(t, s.Publish(context.Background(), harvest.RecordHeader, rows))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sheet, ok := f.Sheet[sheetName]
	require.True(t, ok, "workbook must contain the %s sheet", sheetName)
	require.Len(t, sheet.Rows, 2)

	header := sheet.Rows[0]
	require.Equal(t, "name", header.Cells[0].String())
	require.Equal(t, "sourceUrl", header.Cells[7].String())

	data := sheet.Rows[1]
	require.Equal(t, "Jane Doe", data.Cells[0].String())
	require.Equal(t, "W22", data.Cells[5].String())
}

func TestXLSX_Publish_RewritesOnEachSnapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "founders.xlsx")
	s, err := NewXLSX(path)
	require.NoError(t, err)

	first := [][]string{founderRow("Jane Doe", "https://www.ycombinator.com/founders/jane-doe")}
	require.NoError(t, s.Publish(context.Background(), harvest.RecordHeader, first))

	second := [][]string{
		founderRow("Jane Doe", "https://www.ycombinator.com/founders/jane-doe"),
		founderRow("John Roe", "https://www.ycombinator.com/founders/john-roe"),
	}
	require.NoError(t, s.Publish(context.Background(), harvest.RecordHeader, second))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheet[sheetName].Rows, 3)
}

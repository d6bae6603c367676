package excelize_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	xlsx "github.com/xuri/excelize/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/excelize"
)

// writeWorkbook builds a spreadsheet whose first sheet holds the given
// rows and returns its path.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := xlsx.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "mantecas.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func newRecord(pairs ...string) *sacamantecas.Record {
	rec := sacamantecas.NewRecord()
	for i := 0; i < len(pairs); i += 2 {
		rec.Set(pairs[i], pairs[i+1])
	}
	return rec
}

func TestWorkbook_Items(t *testing.T) {
	t.Parallel()

	t.Run("reads one item per row with an accepted URI", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, [][]any{
			{"Signatura", "https://example.com/record/1", "notes"},
			{"no uri here", 42},
			{"ftp://example.com/x", "http://example.com/record/3"},
		})

		w, err := excelize.Open(path)
		require.NoError(t, err)
		defer w.Close()

		items, err := w.Items(context.Background())
		require.NoError(t, err)

		require.Len(t, items, 2)
		assert.Equal(t, sacamantecas.Item{URI: "https://example.com/record/1", Row: 1}, items[0])
		assert.Equal(t, sacamantecas.Item{URI: "http://example.com/record/3", Row: 3}, items[1])
	})

	t.Run("takes the first accepted URI of a row", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, [][]any{
			{"https://example.com/first", "https://example.com/second"},
		})

		w, err := excelize.Open(path)
		require.NoError(t, err)
		defer w.Close()

		items, err := w.Items(context.Background())
		require.NoError(t, err)

		require.Len(t, items, 1)
		assert.Equal(t, "https://example.com/first", items[0].URI)
	})
}

func TestWorkbook_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates the sink copy next to the source", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, [][]any{{"https://example.com/record/1"}})

		w, err := excelize.Open(path)
		require.NoError(t, err)
		defer w.Close()

		want := filepath.Join(filepath.Dir(path), "mantecas_out.xlsx")
		assert.Equal(t, want, w.SinkPath())

		_, err = os.Stat(w.SinkPath())
		assert.NoError(t, err)
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("missing source fails with EINVALID", func(t *testing.T) {
		t.Parallel()

		_, err := excelize.Open(filepath.Join(t.TempDir(), "missing.xlsx"))
		require.Error(t, err)
		assert.Equal(t, sacamantecas.EINVALID, sacamantecas.ErrorCode(err))
	})

	t.Run("garbage spreadsheet fails with EINVALID", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "garbage.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a spreadsheet"), 0644))

		_, err := excelize.Open(path)
		require.Error(t, err)
		assert.Equal(t, sacamantecas.EINVALID, sacamantecas.ErrorCode(err))
	})
}

func TestWorkbook_Write(t *testing.T) {
	t.Parallel()

	t.Run("writes metadata into new columns below the heading row", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, [][]any{
			{"Signatura", "https://example.com/record/1", "notes"},
			{"no uri here"},
			{"https://example.com/record/3"},
		})

		w, err := excelize.Open(path)
		require.NoError(t, err)

		items, err := w.Items(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)

		rec := newRecord("Autor", "Cervantes", "Título", "Don Quijote")
		require.NoError(t, w.Write(items[0], rec))
		require.NoError(t, w.Write(items[1], newRecord("Autor", "Avellaneda")))
		require.NoError(t, w.Close())

		sink, err := xlsx.OpenFile(w.SinkPath())
		require.NoError(t, err)
		defer sink.Close()
		sheet := sink.GetSheetName(0)

		cell := func(axis string) string {
			value, err := sink.GetCellValue(sheet, axis)
			require.NoError(t, err)
			return value
		}

		// The widest source row has three cells, so metadata starts at D.
		assert.Equal(t, "[sm] Autor", cell("D1"))
		assert.Equal(t, "[sm] Título", cell("E1"))

		// The heading row displaced the source rows by one.
		assert.Equal(t, "Signatura", cell("A2"))
		assert.Equal(t, "Cervantes", cell("D2"))
		assert.Equal(t, "Don Quijote", cell("E2"))

		// The second item reuses the Autor column opened by the first.
		assert.Equal(t, "Avellaneda", cell("D4"))
		assert.Equal(t, "", cell("E4"))
	})

	t.Run("styles and sizes the heading cells", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, [][]any{{"https://example.com/record/1"}})

		w, err := excelize.Open(path)
		require.NoError(t, err)
		require.NoError(t, w.Write(sacamantecas.Item{URI: "https://example.com/record/1", Row: 1}, newRecord("Autor", "Cervantes")))
		require.NoError(t, w.Close())

		sink, err := xlsx.OpenFile(w.SinkPath())
		require.NoError(t, err)
		defer sink.Close()
		sheet := sink.GetSheetName(0)

		headingStyle, err := sink.GetCellStyle(sheet, "B1")
		require.NoError(t, err)
		plainStyle, err := sink.GetCellStyle(sheet, "A2")
		require.NoError(t, err)
		assert.NotEqual(t, plainStyle, headingStyle)

		style, err := sink.GetStyle(headingStyle)
		require.NoError(t, err)
		assert.Equal(t, "Calibri", style.Font.Family)

		width, err := sink.GetColWidth(sheet, "B")
		require.NoError(t, err)
		assert.InDelta(t, 42, width, 0.01)
	})

	t.Run("empty records leave the sheet untouched", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, [][]any{{"https://example.com/record/1"}})

		w, err := excelize.Open(path)
		require.NoError(t, err)

		item := sacamantecas.Item{URI: "https://example.com/record/1", Row: 1}
		require.NoError(t, w.Write(item, sacamantecas.NewRecord()))
		require.NoError(t, w.Write(item, nil))
		require.NoError(t, w.Close())

		sink, err := xlsx.OpenFile(w.SinkPath())
		require.NoError(t, err)
		defer sink.Close()
		sheet := sink.GetSheetName(0)

		value, err := sink.GetCellValue(sheet, "B1")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})
}

package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/fs"
)

func TestSinkPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "text file",
			source: "urls.txt",
			want:   "urls_out.txt",
		},
		{
			name:   "spreadsheet",
			source: filepath.Join("data", "mantecas.xlsx"),
			want:   filepath.Join("data", "mantecas_out.xlsx"),
		},
		{
			name:   "no extension",
			source: "urls",
			want:   "urls_out",
		},
		{
			name:   "dotted stem",
			source: "urls.v2.txt",
			want:   "urls.v2_out.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, fs.SinkPath(tt.source))
		})
	}
}

func TestURIToFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uri  string
		want string
	}{
		{
			name: "replaces scheme and path separators",
			uri:  "https://example.com/record/1",
			want: "https___example_com_record_1",
		},
		{
			name: "replaces query characters",
			uri:  "http://x.com/cgi?id=42&v=2",
			want: "http___x_com_cgi_id_42_v_2",
		},
		{
			name: "keeps word characters",
			uri:  "abc_123",
			want: "abc_123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, fs.URIToFilename(tt.uri))
		})
	}
}

func TestTextSource_Items(t *testing.T) {
	t.Parallel()

	writeSource := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "urls.txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("reads one URI per line with line numbers", func(t *testing.T) {
		t.Parallel()

		path := writeSource(t, "https://example.com/record/1\nhttps://example.com/record/2\n")
		items, err := fs.NewTextSource(path).Items(context.Background())

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, sacamantecas.Item{URI: "https://example.com/record/1", Row: 1}, items[0])
		assert.Equal(t, sacamantecas.Item{URI: "https://example.com/record/2", Row: 2}, items[1])
	})

	t.Run("skips lines that are not accepted URIs", func(t *testing.T) {
		t.Parallel()

		path := writeSource(t, "# comment\n\nhttps://example.com/record/1\nftp://example.com/x\nnot a uri\n")
		items, err := fs.NewTextSource(path).Items(context.Background())

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Row)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		path := writeSource(t, "  https://example.com/record/1 \r\n")
		items, err := fs.NewTextSource(path).Items(context.Background())

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "https://example.com/record/1", items[0].URI)
	})

	t.Run("accepts file URIs", func(t *testing.T) {
		t.Parallel()

		path := writeSource(t, "file:///tmp/page.html\n")
		items, err := fs.NewTextSource(path).Items(context.Background())

		require.NoError(t, err)
		require.Len(t, items, 1)
	})

	t.Run("missing file fails with EINVALID", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewTextSource(filepath.Join(t.TempDir(), "missing.txt")).Items(context.Background())

		require.Error(t, err)
		assert.Equal(t, sacamantecas.EINVALID, sacamantecas.ErrorCode(err))
	})
}

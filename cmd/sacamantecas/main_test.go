package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DervishD/sacamantecas"
	main "github.com/DervishD/sacamantecas/cmd/sacamantecas"
	"github.com/DervishD/sacamantecas/fs"
)

func TestMain_Run_NoArguments(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := m.Run(context.Background(), nil, stdout, stderr)

	assert.Equal(t, main.ExitNoSources, code)
	assert.Contains(t, stdout.String(), "Usage:", "help should be shown")
	assert.Contains(t, stderr.String(), "no sources")
}

func TestMain_Run_SkimWithoutSources(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := m.Run(context.Background(), []string{"skim"}, stdout, stderr)

	assert.Equal(t, main.ExitNoSources, code)
	assert.Contains(t, stderr.String(), "no sources")
}

func TestMain_Run_Version(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := m.Run(context.Background(), []string{"--version"}, stdout, stderr)

	assert.Equal(t, main.ExitSuccess, code)
	assert.Contains(t, stdout.String(), sacamantecas.Version)
}

func TestMain_Run_UnknownFlag(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := m.Run(context.Background(), []string{"--no-such-flag"}, stdout, stderr)

	assert.Equal(t, main.ExitError, code)
	assert.Contains(t, stderr.String(), "error:")
}

func TestMain_Run_MissingProfilesFile(t *testing.T) {
	t.Chdir(t.TempDir()) // no sacamantecas.ini here

	m := main.NewMain()
	m.JournalPath = filepath.Join(t.TempDir(), "journal.db")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := m.Run(context.Background(), []string{"skim", "urls.txt"}, stdout, stderr)

	assert.Equal(t, main.ExitError, code)
	assert.Contains(t, stderr.String(), "--profiles")
}

func TestMain_Run_Check(t *testing.T) {
	t.Parallel()

	t.Run("valid profiles are listed", func(t *testing.T) {
		t.Parallel()

		profiles := filepath.Join(t.TempDir(), "profiles.ini")
		content := "[biblioteca]\nurl = catalogo\nk_class = titulo\nv_class = valor\n" +
			"[archivo]\nurl = archivo\nm_tag = dl\nm_attr = id\nm_value = metadata\n"
		require.NoError(t, os.WriteFile(profiles, []byte(content), 0o644))

		m := main.NewMain()
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		code := m.Run(context.Background(), []string{"check", "--profiles", profiles}, stdout, stderr)

		require.Equal(t, main.ExitSuccess, code, "stderr: %s", stderr.String())
		output := stdout.String()
		assert.Contains(t, output, "biblioteca")
		assert.Contains(t, output, "archivo")
		assert.Contains(t, output, "2 profiles")
	})

	t.Run("invalid profiles fail with the profile named", func(t *testing.T) {
		t.Parallel()

		profiles := filepath.Join(t.TempDir(), "profiles.ini")
		content := "[rota]\nurl = x\nk_class = a\n" // v_class missing
		require.NoError(t, os.WriteFile(profiles, []byte(content), 0o644))

		m := main.NewMain()
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		code := m.Run(context.Background(), []string{"check", "--profiles", profiles}, stdout, stderr)

		assert.Equal(t, main.ExitError, code)
		assert.Contains(t, stderr.String(), "rota")
	})
}

func TestMain_Run_SkimUnsupportedSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	profiles := filepath.Join(dir, "profiles.ini")
	content := "[biblioteca]\nurl = catalogo\nk_class = titulo\nv_class = valor\n"
	require.NoError(t, os.WriteFile(profiles, []byte(content), 0o644))

	m := main.NewMain()
	m.JournalPath = filepath.Join(dir, "journal.db")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := m.Run(context.Background(), []string{"skim", "--profiles", profiles, "notas.pdf"}, stdout, stderr)

	assert.Equal(t, main.ExitWarnings, code, "a bad source is a warning, not a fatal error")
	assert.Contains(t, stderr.String(), "unsupported source")
}

// TestMain_Run_SkimFileURL exercises the whole pipeline against a page
// on disk: profile matching, retrieval over file://, extraction, the
// terminal and file sinks, and the journal.
func TestMain_Run_SkimFileURL(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir) // single URL sinks are created in the working directory

	page := filepath.Join(dir, "registro.html")
	markup := `<html><head><meta charset="utf-8"><title>Registro</title></head><body>
<div class="titulo">Autor</div><div class="valor">Cervantes</div>
<div class="titulo">Título:</div><div class="valor">Don Quijote</div>
</body></html>`
	require.NoError(t, os.WriteFile(page, []byte(markup), 0o644))

	profiles := filepath.Join(dir, "profiles.ini")
	content := "[biblioteca]\nurl = registro\nk_class = titulo\nv_class = valor\n"
	require.NoError(t, os.WriteFile(profiles, []byte(content), 0o644))

	m := main.NewMain()
	m.JournalPath = filepath.Join(dir, "journal.db")

	uri := "file://" + filepath.ToSlash(page)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := m.Run(context.Background(), []string{"skim", "--profiles", profiles, uri}, stdout, stderr)
	require.Equal(t, main.ExitSuccess, code, "stderr: %s", stderr.String())

	output := stdout.String()
	assert.Contains(t, output, "Autor: Cervantes")
	assert.Contains(t, output, "Título: Don Quijote", "the trailing colon should be stripped from keys")
	assert.Contains(t, output, "skimmed 1")

	// The metadata also went to a file named after the URI.
	saved, err := os.ReadFile(fs.SinkPath(fs.URIToFilename(uri) + ".txt"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Autor: Cervantes")

	// And the run went into the journal.
	stdout.Reset()
	stderr.Reset()
	code = m.Run(context.Background(), []string{"runs"}, stdout, stderr)
	require.Equal(t, main.ExitSuccess, code, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "skimmed 1")
}

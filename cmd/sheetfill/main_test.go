package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PrintSheet/internal/engine"
	"github.com/piwi3910/PrintSheet/internal/project"
)

func writeList(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(path, []byte("kind,label,source,width,height,quantity\n"+body), 0644))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseOptions(t *testing.T, inputs ...string) options {
	return options{
		inputs:    inputs,
		preset:    "A5",
		bleed:     -1,
		padding:   -1,
		gutter:    -1,
		configDir: t.TempDir(),
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-list", "items.xlsx", "-preset", "A4", "-landscape", "-fill",
		"-pdf", "out.pdf", "-guides", "logo.svg"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, []string{"items.xlsx", "logo.svg"}, opts.inputs)
	assert.Equal(t, "A4", opts.preset)
	assert.True(t, opts.landscape)
	assert.True(t, opts.fill)
	assert.True(t, opts.guides)
	assert.Equal(t, "out.pdf", opts.pdfPath)
	assert.Equal(t, -1.0, opts.bleed)
}

func TestParseFlags_Errors(t *testing.T) {
	_, err := parseFlags(nil, io.Discard)
	assert.Error(t, err)

	_, err = parseFlags([]string{"-bogus"}, io.Discard)
	assert.Error(t, err)
}

func TestRun_FillAndExport(t *testing.T) {
	dir := t.TempDir()
	list := writeList(t, dir, "qr,Link,https://example.com,30,30,2\ntext,Hello,,40,20,1\n")

	opts := baseOptions(t, list)
	opts.fill = true
	opts.guides = true
	opts.pdfPath = filepath.Join(dir, "out.pdf")
	opts.report = filepath.Join(dir, "out.xlsx")
	opts.save = filepath.Join(dir, "out")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, quietLogger()))

	assert.Contains(t, out.String(), "3 items, 3 placed, 0 did not fit")
	assert.Contains(t, out.String(), "fill:")
	assert.FileExists(t, opts.pdfPath)
	assert.FileExists(t, opts.report)

	p, err := project.Load(filepath.Join(dir, "out"+project.FileExtension))
	require.NoError(t, err)
	assert.Equal(t, "A5", p.Sheet.Preset)
	assert.Greater(t, len(p.Items), 3)
}

func TestRun_LandscapeAndMargins(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(t, writeList(t, dir, "text,Wide,,180,20,1\n"))
	opts.landscape = true
	opts.bleed, opts.padding = 0, 0
	opts.save = filepath.Join(dir, "wide.printsheet")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, quietLogger()))

	p, err := project.Load(opts.save)
	require.NoError(t, err)
	assert.Equal(t, "landscape", string(p.Sheet.Orientation))
	assert.Zero(t, p.Sheet.Bleed)
	require.Len(t, p.Items, 1)
	assert.InDelta(t, 90, p.Items[0].CenterX, 1e-9)
	assert.InDelta(t, 10, p.Items[0].CenterY, 1e-9)
}

func TestRun_ImportErrorsFail(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(t, writeList(t, dir, "text,Fine,,20,10,1\ncircle,Bad,,10,10,1\n"))
	opts.report = filepath.Join(dir, "out.xlsx")

	var out bytes.Buffer
	err := run(context.Background(), opts, &out, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 import error")
	assert.Contains(t, out.String(), "Unknown item kind 'circle'")
	assert.FileExists(t, opts.report, "outputs are still written")
}

func TestRun_NothingFits(t *testing.T) {
	dir := t.TempDir()
	list := writeList(t, dir, "text,Huge,,500,500,1\n")

	err := run(context.Background(), baseOptions(t, list), io.Discard, quietLogger())
	assert.ErrorIs(t, err, engine.ErrNothingFits)

	opts := baseOptions(t, list)
	opts.fill = true
	err = run(context.Background(), opts, io.Discard, quietLogger())
	assert.ErrorIs(t, err, engine.ErrNothingFits)
}

func TestRun_UnknownPreset(t *testing.T) {
	opts := baseOptions(t, "whatever.csv")
	opts.preset = "B7"
	err := run(context.Background(), opts, io.Discard, quietLogger())
	assert.ErrorContains(t, err, "unknown preset")
}

func TestRun_MissingFile(t *testing.T) {
	opts := baseOptions(t, filepath.Join(t.TempDir(), "missing.csv"))
	err := run(context.Background(), opts, io.Discard, quietLogger())
	assert.ErrorContains(t, err, "no items")
}

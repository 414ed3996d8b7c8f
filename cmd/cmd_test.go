package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmuldo/recolor/match"
)

const (
	testPalette = `[{"label":"red","hex":"#ff0000"},{"label":"green","hex":"#00ff00"},{"label":"blue","hex":"#0000ff"}]`
	testColors  = `[{"hex":"#fe0100","weight":5},{"hex":"#010001","weight":1}]`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMapJSON(t *testing.T) {
	dir := t.TempDir()
	pal := writeFile(t, dir, "palette.json", testPalette)
	colors := writeFile(t, dir, "colors.json", testColors)

	out, _, err := run(t, "map", "--palette", pal, "--colors", colors, "--format", "json", "--k", "2", "--iter", "50")
	require.NoError(t, err)

	var res match.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res.Mapping["#fe0100"])
	assert.Equal(t, 2, res.ActiveCount)
	assert.Equal(t, 50, res.Refinement.Trials)
}

func TestMapTable(t *testing.T) {
	dir := t.TempDir()
	pal := writeFile(t, dir, "palette.json", testPalette)
	colors := writeFile(t, dir, "colors.json", testColors)

	out, _, err := run(t, "map", "-p", pal, "-c", colors)
	require.NoError(t, err)
	assert.Contains(t, out, "#fe0100 -> #ff0000 red")
	assert.Contains(t, out, "2 colours, 2 assigned one-to-one")
	assert.NotContains(t, out, "\033[")
}

func TestMapTemplateAndPreview(t *testing.T) {
	dir := t.TempDir()
	pal := writeFile(t, dir, "palette.json", testPalette)
	colors := writeFile(t, dir, "colors.json", testColors)
	tpl := writeFile(t, dir, "out.tpl", `{{ name }}{% for c in colors %} {{ c.hex }}:{{ c.palette_label }}{% endfor %}`)
	preview := filepath.Join(dir, "preview.png")
	outFile := filepath.Join(dir, "out.txt")

	_, _, err := run(t, "map", "-p", pal, "-c", colors, "-f", "template", "-t", tpl,
		"--set", "name=poster", "--preview", preview, "-o", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "poster #fe0100:red #010001:"))

	info, err := os.Stat(preview)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestMapErrors(t *testing.T) {
	dir := t.TempDir()
	pal := writeFile(t, dir, "palette.json", testPalette)
	colors := writeFile(t, dir, "colors.json", testColors)
	empty := writeFile(t, dir, "empty.json", `[]`)
	broken := writeFile(t, dir, "broken.json", `[{`)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "no colours", args: []string{"map", "-p", pal}},
		{name: "no palette flag", args: []string{"map", "-c", colors}},
		{name: "bad k", args: []string{"map", "-p", pal, "-c", colors, "--k", "0"}, want: match.ErrMalformedConfiguration},
		{name: "negative alpha", args: []string{"map", "-p", pal, "-c", colors, "--alpha", "-1"}, want: match.ErrMalformedConfiguration},
		{name: "empty palette", args: []string{"map", "-p", empty, "-c", colors}, want: match.ErrEmptyPalette},
		{name: "broken json", args: []string{"map", "-p", broken, "-c", colors}},
		{name: "unknown format", args: []string{"map", "-p", pal, "-c", colors, "-f", "xml"}},
		{name: "template without file", args: []string{"map", "-p", pal, "-c", colors, "-f", "template"}},
		{name: "both sources", args: []string{"map", "-p", pal, "-c", colors, "-i", "x.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestMapEmptyColours(t *testing.T) {
	dir := t.TempDir()
	pal := writeFile(t, dir, "palette.json", testPalette)
	empty := writeFile(t, dir, "empty.json", `[]`)

	out, _, err := run(t, "map", "-p", pal, "-c", empty, "-f", "json")
	require.NoError(t, err)

	var res match.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Mapping)
	assert.Equal(t, 0, res.ActiveCount)
}

func TestMapConfigSources(t *testing.T) {
	dir := t.TempDir()
	pal := writeFile(t, dir, "palette.json", testPalette)
	colors := writeFile(t, dir, "colors.json", testColors)
	cfgFile := writeFile(t, dir, "recolor.yaml", "iter: 7\nk: 1\n")

	out, _, err := run(t, "--config", cfgFile, "map", "-p", pal, "-c", colors, "-f", "json")
	require.NoError(t, err)
	var res match.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 7, res.Refinement.Trials)

	t.Setenv("RECOLOR_ITER", "11")
	out, _, err = run(t, "--config", cfgFile, "map", "-p", pal, "-c", colors, "-f", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 11, res.Refinement.Trials)

	out, _, err = run(t, "--config", cfgFile, "map", "-p", pal, "-c", colors, "-f", "json", "--iter", "3")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Refinement.Trials)

	t.Setenv("RECOLOR_K", "0")
	_, _, err = run(t, "map", "-p", pal, "-c", colors)
	assert.ErrorIs(t, err, match.ErrMalformedConfiguration)

	_, _, err = run(t, "--config", filepath.Join(dir, "missing.yaml"), "map", "-p", pal, "-c", colors)
	assert.Error(t, err)
}

func TestMapVerboseLogs(t *testing.T) {
	dir := t.TempDir()
	pal := writeFile(t, dir, "palette.json", testPalette)
	colors := writeFile(t, dir, "colors.json", testColors)

	_, stderr, err := run(t, "-v", "--log-json", "map", "-p", pal, "-c", colors)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"mapping computed"`)
	assert.Contains(t, stderr, `"component":"match"`)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	pal := writeFile(t, dir, "palette.json", testPalette)
	colors := writeFile(t, dir, "colors.json", testColors)
	mapping := filepath.Join(dir, "mapping.json")

	_, _, err := run(t, "map", "-p", pal, "-c", colors, "-f", "json", "-o", mapping)
	require.NoError(t, err)

	tpl := writeFile(t, dir, "theme.tpl", `{{ title }} {{ active_count }} {{ mapping|length }}`)
	out, _, err := run(t, "render", "-p", pal, "-m", mapping, "-t", tpl, "--set", "title=poster")
	require.NoError(t, err)
	assert.Equal(t, "poster 2 2", out)

	_, _, err = run(t, "render", "-p", pal, "-m", filepath.Join(dir, "missing.json"), "-t", tpl)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "recolor version "))
}

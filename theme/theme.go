// Package theme renders a colour mapping for people and for other programs.
package theme

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/flosch/pongo2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/mmuldo/recolor/match"
	"github.com/mmuldo/recolor/palette"
)

// Theme is the context handed to templates.
type Theme map[string]interface{}

//**exported functions**//

// Create builds the template context for res. pal is the palette res was
// computed against; opts are copied in verbatim and may override defaults.
func Create(res *match.Result, pal []palette.Entry, opts map[string]interface{}) Theme {
	t := make(Theme)

	colors := make([]map[string]interface{}, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		colors = append(colors, map[string]interface{}{
			"hex":           a.Hex,
			"label":         a.Label,
			"weight":        a.Weight,
			"palette_index": a.PaletteIndex,
			"palette_hex":   a.PaletteHex,
			"palette_label": a.PaletteLabel,
			"delta_e":       a.DeltaE,
			"overflow":      a.Overflow,
		})
	}
	t["colors"] = colors

	swatches := make([]map[string]interface{}, len(pal))
	for i, e := range pal {
		swatches[i] = map[string]interface{}{"index": i, "hex": e.Hex, "label": e.Label}
	}
	t["palette"] = swatches

	keys := make([]string, 0, len(res.Mapping))
	for k := range res.Mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	mapping := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		mapping[k] = res.Mapping[k]
	}
	t["mapping"] = mapping
	t["active_count"] = res.ActiveCount

	for k, v := range opts {
		t[k] = v
	}

	setDefaults(&t)

	return t
}

// Render executes the pongo2 template at path with t.
func Render(t Theme, path string) (string, error) {
	tpl, e := pongo2.FromFile(path)
	if e != nil {
		return "", fmt.Errorf("loading template %s: %w", path, e)
	}
	return execute(tpl, t)
}

// RenderString executes the pongo2 template source src with t.
func RenderString(t Theme, src string) (string, error) {
	tpl, e := pongo2.FromString(src)
	if e != nil {
		return "", fmt.Errorf("parsing template: %w", e)
	}
	return execute(tpl, t)
}

// WriteJSON writes res as indented JSON.
func WriteJSON(w io.Writer, res *match.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// ReadJSON reads a result previously written by WriteJSON.
func ReadJSON(r io.Reader) (*match.Result, error) {
	var res match.Result
	if e := json.NewDecoder(r).Decode(&res); e != nil {
		return nil, e
	}
	if res.Mapping == nil {
		res.Mapping = make(map[string]int)
	}
	return &res, nil
}

// WriteTable writes one line per assignment. With ansi set, each line starts
// with 24-bit colour swatches of the original and its replacement.
func WriteTable(w io.Writer, res *match.Result, ansi bool) error {
	for _, a := range res.Assignments {
		if ansi {
			if _, e := fmt.Fprintf(w, "%s %s ", swatch(a.Hex), swatch(a.PaletteHex)); e != nil {
				return e
			}
		}
		marker := ""
		if a.Overflow {
			marker = " (overflow)"
		}
		label := a.PaletteLabel
		if label == "" {
			label = fmt.Sprintf("#%d", a.PaletteIndex)
		}
		if _, e := fmt.Fprintf(w, "%s -> %s %-12s dE00 %6.2f%s\n", a.Hex, a.PaletteHex, label, a.DeltaE, marker); e != nil {
			return e
		}
	}
	_, e := fmt.Fprintf(w, "%d colours, %d assigned one-to-one, %d refinement swaps\n",
		len(res.Assignments), res.ActiveCount, res.Refinement.Swaps)
	return e
}

//**helper functions**//

func execute(tpl *pongo2.Template, t Theme) (string, error) {
	o, e := tpl.Execute(pongo2.Context(t))
	if e != nil {
		return "", fmt.Errorf("rendering template: %w", e)
	}
	return o, nil
}

// swatch is two spaces on a 24-bit background.
func swatch(hex string) string {
	c, e := colorful.Hex(hex)
	if e != nil {
		return "  "
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("\033[48;2;%d;%d;%dm  \033[0m", r, g, b)
}

func setDefaults(t *Theme) {
	if _, ok := (*t)["title"]; !ok {
		(*t)["title"] = "recolor"
	}

	if _, ok := (*t)["overflow_count"]; !ok {
		n := 0
		if colors, ok := (*t)["colors"].([]map[string]interface{}); ok {
			for _, c := range colors {
				if c["overflow"] == true {
					n++
				}
			}
		}
		(*t)["overflow_count"] = n
	}
}

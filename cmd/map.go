package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmuldo/recolor/image"
	"github.com/mmuldo/recolor/match"
	"github.com/mmuldo/recolor/palette"
	"github.com/mmuldo/recolor/theme"
)

type mapOptions struct {
	palettePath  string
	colorsPath   string
	imagePath    string
	count        int
	format       string
	templatePath string
	outPath      string
	previewPath  string
	vars         map[string]string
}

// configKeys maps viper keys to the flags that set them.
var configKeys = map[string]string{
	"alpha":     "alpha",
	"beta":      "beta",
	"gamma":     "gamma",
	"delta":     "delta",
	"c_neutral": "c-neutral",
	"k":         "k",
	"iter":      "iter",
	"seed":      "seed",
	"eps_tie":   "eps-tie",
}

func newMapCmd(a *app) *cobra.Command {
	opts := &mapOptions{}
	def := match.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map the colours of an image onto a palette",
		Long: `Map reads a palette and the colours used by an image, either as a JSON list
or sampled from a raster image, and prints the replacement chosen for every
colour.

Palette file:  [{"label": "red", "hex": "#ff0000"}, ...]
Colours file:  [{"hex": "#fe0100", "weight": 5, "label": "title"}, ...]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMap(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.palettePath, "palette", "p", "", "palette JSON file (required)")
	f.StringVarP(&opts.colorsPath, "colors", "c", "", "JSON file with the colours to map")
	f.StringVarP(&opts.imagePath, "image", "i", "", "raster image to sample colours from")
	f.IntVarP(&opts.count, "count", "n", 16, "number of colours to sample from --image")
	f.StringVarP(&opts.format, "format", "f", "table", "output format (table, json, template)")
	f.StringVarP(&opts.templatePath, "template", "t", "", "pongo2 template for --format template")
	f.StringVarP(&opts.outPath, "out", "o", "", "write output to file instead of stdout")
	f.StringVar(&opts.previewPath, "preview", "", "write a PNG swatch sheet of the mapping")
	f.StringToStringVar(&opts.vars, "set", nil, "extra template variables (key=value)")

	f.Float64("alpha", def.Alpha, "lightness-rank deviation weight")
	f.Float64("beta", def.Beta, "hue deviation weight")
	f.Float64("gamma", def.Gamma, "neutral chroma penalty weight")
	f.Float64("delta", def.Delta, "neighbour distortion weight")
	f.Float64("c-neutral", def.CNeutral, "chroma below which a colour is neutral")
	f.Int("k", def.K, "neighbours per colour")
	f.Int("iter", def.Iter, "refinement iterations")
	f.Uint64("seed", def.Seed, "refinement seed")
	f.Float64("eps-tie", def.EpsTie, "tie tolerance (currently unused)")

	_ = cmd.MarkFlagRequired("palette")
	cmd.MarkFlagsMutuallyExclusive("colors", "image")
	for key, flag := range configKeys {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}

	return cmd
}

func (a *app) runMap(cmd *cobra.Command, opts *mapOptions) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}

	pal, err := readEntries(opts.palettePath)
	if err != nil {
		return fmt.Errorf("reading palette: %w", err)
	}
	originals, err := a.originals(opts)
	if err != nil {
		return err
	}

	res, err := match.ComputeMapping(originals, pal, cfg, match.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"colours": len(res.Assignments),
		"active":  res.ActiveCount,
		"swaps":   res.Refinement.Swaps,
	}).Info("mapping computed")

	if opts.previewPath != "" {
		if err := writePreview(opts.previewPath, res); err != nil {
			return err
		}
	}

	return withOutput(cmd, opts.outPath, func(w io.Writer) error {
		switch opts.format {
		case "table":
			return theme.WriteTable(w, res, isTerminal(w))
		case "json":
			return theme.WriteJSON(w, res)
		case "template":
			if opts.templatePath == "" {
				return errors.New("--format template needs --template")
			}
			out, err := theme.Render(theme.Create(res, pal, templateVars(opts.vars)), opts.templatePath)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, out)
			return err
		default:
			return fmt.Errorf("unknown format %q (valid: table, json, template)", opts.format)
		}
	})
}

// config resolves the matcher configuration from flags, environment,
// config file and defaults, in that order.
func (a *app) config() (match.Config, error) {
	var cfg match.Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	a.log.WithFields(logrus.Fields{
		"alpha":     cfg.Alpha,
		"beta":      cfg.Beta,
		"gamma":     cfg.Gamma,
		"delta":     cfg.Delta,
		"c_neutral": cfg.CNeutral,
		"k":         cfg.K,
		"iter":      cfg.Iter,
		"seed":      cfg.Seed,
	}).Debug("configuration")
	return cfg, nil
}

func (a *app) originals(opts *mapOptions) ([]palette.Entry, error) {
	switch {
	case opts.colorsPath != "":
		entries, err := readEntries(opts.colorsPath)
		if err != nil {
			return nil, fmt.Errorf("reading colours: %w", err)
		}
		return entries, nil
	case opts.imagePath != "":
		img, err := image.Load(opts.imagePath)
		if err != nil {
			return nil, fmt.Errorf("loading image: %w", err)
		}
		entries, err := image.Originals(img, opts.count)
		if err != nil {
			return nil, fmt.Errorf("sampling %s: %w", opts.imagePath, err)
		}
		a.log.WithField("colours", len(entries)).Debug("sampled image")
		return entries, nil
	default:
		return nil, errors.New("one of --colors or --image is required")
	}
}

func readEntries(path string) ([]palette.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []palette.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func writePreview(path string, res *match.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, image.Preview(res.Assignments)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// withOutput calls fn with the file at path, or the command's output when
// path is empty.
func withOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func templateVars(vars map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

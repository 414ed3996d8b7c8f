package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmuldo/recolor/theme"
)

type renderOptions struct {
	palettePath  string
	mappingPath  string
	templatePath string
	outPath      string
	vars         map[string]string
}

func newRenderCmd(a *app) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved mapping through a template",
		Long: `Render loads a mapping written by "recolor map --format json" and executes a
pongo2 template with it. Templates see colors, palette, mapping,
active_count, overflow_count, title and any --set variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.palettePath, "palette", "p", "", "palette JSON file (required)")
	f.StringVarP(&opts.mappingPath, "mapping", "m", "", "mapping JSON file (required)")
	f.StringVarP(&opts.templatePath, "template", "t", "", "pongo2 template (required)")
	f.StringVarP(&opts.outPath, "out", "o", "", "write output to file instead of stdout")
	f.StringToStringVar(&opts.vars, "set", nil, "extra template variables (key=value)")
	_ = cmd.MarkFlagRequired("palette")
	_ = cmd.MarkFlagRequired("mapping")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func (a *app) runRender(cmd *cobra.Command, opts *renderOptions) error {
	pal, err := readEntries(opts.palettePath)
	if err != nil {
		return fmt.Errorf("reading palette: %w", err)
	}

	f, err := os.Open(opts.mappingPath)
	if err != nil {
		return err
	}
	defer f.Close()
	res, err := theme.ReadJSON(f)
	if err != nil {
		return fmt.Errorf("reading mapping %s: %w", opts.mappingPath, err)
	}

	out, err := theme.Render(theme.Create(res, pal, templateVars(opts.vars)), opts.templatePath)
	if err != nil {
		return err
	}
	a.log.WithField("template", opts.templatePath).Debug("rendered")

	return withOutput(cmd, opts.outPath, func(w io.Writer) error {
		_, err := io.WriteString(w, out)
		return err
	})
}

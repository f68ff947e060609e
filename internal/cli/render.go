package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/httputil"
	"github.com/matzehuels/sineshade/pkg/io"
	"github.com/matzehuels/sineshade/pkg/pipeline"
	"github.com/matzehuels/sineshade/pkg/sink"
	"github.com/matzehuels/sineshade/pkg/sinusoid"
)

// renderFlags holds the command-line flags shared by render and tune.
// Values only override the config file when the flag was set explicitly.
type renderFlags struct {
	shading        sinusoid.Config
	formats        string
	precision      int
	strokeWidth    float64
	scale          float64
	maxDim         int
	matchImage     bool
	xmlDeclaration bool
	noCache        bool
	refresh        bool
}

// bindShadingFlags registers the transform parameter flags.
func bindShadingFlags(cmd *cobra.Command, f *renderFlags) {
	d := sinusoid.DefaultConfig()
	flags := cmd.Flags()
	flags.IntVarP(&f.shading.Lines, "lines", "l", d.Lines, "number of sinusoid rows")
	flags.IntVar(&f.shading.Width, "width", d.Width, "output width in pixels")
	flags.IntVar(&f.shading.Height, "height", d.Height, "output height in pixels")
	flags.Float64Var(&f.shading.SampleFreq, "sample-freq", d.SampleFreq, "path points per source column")
	flags.Float64Var(&f.shading.MinFreq, "min-freq", d.MinFreq, "frequency of the lightest band")
	flags.Float64Var(&f.shading.MaxFreq, "max-freq", d.MaxFreq, "frequency of the darkest band")
	flags.Float64VarP(&f.shading.Amplitude, "amplitude", "a", d.Amplitude, "wave amplitude as a fraction of the row height")
	flags.IntVar(&f.maxDim, "max-dim", pipeline.DefaultMaxDimension, "downscale images whose longer side exceeds this (0 disables)")
	flags.BoolVar(&f.matchImage, "match-image", false, "size the document to the (fitted) image")
	flags.Float64Var(&f.strokeWidth, "stroke-width", pipeline.DefaultStrokeWidth, "stroke width")
	flags.IntVar(&f.precision, "precision", pipeline.DefaultPrecision, "decimals in SVG coordinates")
}

// options merges the config file with explicitly set flags.
func (c *CLI) options(cmd *cobra.Command, f *renderFlags) pipeline.Options {
	opts := c.cfg.PipelineOptions()
	changed := cmd.Flags().Changed

	if changed("lines") {
		opts.Shading.Lines = f.shading.Lines
	}
	if changed("width") {
		opts.Shading.Width = f.shading.Width
	}
	if changed("height") {
		opts.Shading.Height = f.shading.Height
	}
	if changed("sample-freq") {
		opts.Shading.SampleFreq = f.shading.SampleFreq
	}
	if changed("min-freq") {
		opts.Shading.MinFreq = f.shading.MinFreq
	}
	if changed("max-freq") {
		opts.Shading.MaxFreq = f.shading.MaxFreq
	}
	if changed("amplitude") {
		opts.Shading.Amplitude = f.shading.Amplitude
	}
	if changed("max-dim") {
		opts.MaxDimension = f.maxDim
		if f.maxDim == 0 {
			opts.MaxDimension = -1
		}
	}
	if changed("match-image") {
		opts.MatchImageSize = f.matchImage
	}
	if changed("stroke-width") {
		opts.StrokeWidth = f.strokeWidth
	}
	if changed("precision") {
		opts.SetPrecision(f.precision)
	}
	if changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	if changed("xml-declaration") {
		opts.XMLDeclaration = f.xmlDeclaration
	}
	opts.Refresh = f.refresh
	return opts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render <input|url> [output]",
		Short: "Render an image as sinusoid line art",
		Long: `Render an image as sinusoid line art.

The input is an image file or an http(s) URL. The output path defaults to the
input file name with its extension replaced by the output format. With several
formats, one file per format is written next to the output base path. An
output of "-" writes a single format to stdout.`,
		Example: `  sineshade render portrait.jpg
  sineshade render portrait.jpg art.svg --lines 96 --amplitude 0.5
  sineshade render portrait.jpg -f svg,png,pdf --scale 2
  sineshade render https://example.com/portrait.jpg -f pdf
  sineshade render portrait.jpg - > art.svg`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := ""
			if len(args) == 2 {
				output = args[1]
			}

			opts := c.options(cmd, &f)
			// An output extension picks the format when --format is absent.
			if !cmd.Flags().Changed("format") {
				if format := formatFromPath(output); format != "" {
					opts.Formats = []string{format}
				}
			}
			return c.runRender(cmd.Context(), input, output, opts, f.noCache)
		},
	}

	bindShadingFlags(cmd, &f)
	flags := cmd.Flags()
	flags.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	flags.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	flags.BoolVar(&f.xmlDeclaration, "xml-declaration", false, "start SVG output with an XML declaration")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	flags.BoolVar(&f.refresh, "refresh", false, "ignore cached artifacts and render again")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// stdoutPath as the output argument writes the single artifact to stdout.
const stdoutPath = "-"

// runRender transforms input and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	toStdout := output == stdoutPath
	if toStdout && len(opts.Formats) != 1 {
		return errors.New(errors.ErrCodeInvalidPath, "writing to stdout needs exactly one format, got %d", len(opts.Formats))
	}
	paths := outputPaths(input, output, opts.Formats)
	if !toStdout {
		for _, p := range paths {
			if err := errors.ValidateOutputPath(p); err != nil {
				return err
			}
		}
	}

	data, err := c.readInput(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	sp := newSpinner(ctx, c.status, "Shading "+inputName(input))
	sp.Start()
	result, err := runner.Execute(ctx, data, opts)
	sp.Stop()
	if err != nil {
		return err
	}
	prog.done("Shaded " + inputName(input))

	if toStdout {
		return io.WriteTo(c.stdout, result.Artifacts[opts.Formats[0]])
	}
	for _, format := range opts.Formats {
		path := paths[format]
		if err := io.ExportFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	return nil
}

// outputPaths maps each format to its output file.
//
//   - no output: the input path with its extension replaced by the format
//   - one format: output as given
//   - several formats: output without a known format extension, plus the format
//
// A derived path never equals the input; "-lines" is appended to the base
// name instead (rendering photo.png to png).
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}

	base := output
	if base == "" {
		if httputil.IsURL(input) {
			input = inputName(input)
		}
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else if formatFromPath(base) != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		p := base + sink.Extension(f)
		if output == "" && filepath.Clean(p) == filepath.Clean(input) {
			p = base + "-lines" + sink.Extension(f)
		}
		paths[f] = p
	}
	return paths
}

// readInput returns the bytes of a local file or, for an http(s) URL, the
// downloaded body.
func (c *CLI) readInput(ctx context.Context, input string) ([]byte, error) {
	if httputil.IsURL(input) {
		f := httputil.NewFetcher(nil)
		f.Logger = c.Logger
		return f.Fetch(ctx, input)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", input)
	}
	return data, nil
}

// inputName returns the file name of a local path or URL.
func inputName(input string) string {
	if u, err := url.Parse(input); err == nil && httputil.IsURL(input) {
		if name := path.Base(u.Path); name != "/" && name != "." {
			return name
		}
		return u.Hostname()
	}
	return filepath.Base(input)
}

// formatFromPath returns the output format named by path's extension, or ""
// when the extension is not a known format.
func formatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if slices.Contains(sink.Formats, ext) {
		return ext
	}
	return ""
}

// describeConfig prints the shading parameters of a run.
func describeConfig(cfg sinusoid.Config) {
	fmt.Println(shadingTable(cfg, -1))
}

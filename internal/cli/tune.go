package cli

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/io"
	"github.com/matzehuels/sineshade/pkg/pipeline"
	"github.com/matzehuels/sineshade/pkg/sink"
	"github.com/matzehuels/sineshade/pkg/sinusoid"
	"github.com/matzehuels/sineshade/pkg/vector"
)

// =============================================================================
// Parameters
// =============================================================================

// tuneParam is one adjustable shading parameter.
type tuneParam struct {
	name  string
	step  float64
	isInt bool
	get   func(sinusoid.Config) float64
	set   func(sinusoid.Config, float64) sinusoid.Config
}

func (p tuneParam) format(v float64) string {
	if p.isInt {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// tuneParams lists the parameters in display order.
var tuneParams = []tuneParam{
	{
		name: "lines", step: 1, isInt: true,
		get: func(c sinusoid.Config) float64 { return float64(c.Lines) },
		set: func(c sinusoid.Config, v float64) sinusoid.Config { return c.WithLines(int(v)) },
	},
	{
		name: "width", step: 16, isInt: true,
		get: func(c sinusoid.Config) float64 { return float64(c.Width) },
		set: func(c sinusoid.Config, v float64) sinusoid.Config { return c.WithSize(int(v), c.Height) },
	},
	{
		name: "height", step: 16, isInt: true,
		get: func(c sinusoid.Config) float64 { return float64(c.Height) },
		set: func(c sinusoid.Config, v float64) sinusoid.Config { return c.WithSize(c.Width, int(v)) },
	},
	{
		name: "sample_freq", step: 0.5,
		get: func(c sinusoid.Config) float64 { return c.SampleFreq },
		set: func(c sinusoid.Config, v float64) sinusoid.Config { return c.WithSampleFreq(v) },
	},
	{
		name: "min_freq", step: 0.01,
		get: func(c sinusoid.Config) float64 { return c.MinFreq },
		set: func(c sinusoid.Config, v float64) sinusoid.Config { return c.WithFrequencyRange(v, c.MaxFreq) },
	},
	{
		name: "max_freq", step: 0.1,
		get: func(c sinusoid.Config) float64 { return c.MaxFreq },
		set: func(c sinusoid.Config, v float64) sinusoid.Config { return c.WithFrequencyRange(c.MinFreq, v) },
	},
	{
		name: "amplitude", step: 0.05,
		get: func(c sinusoid.Config) float64 { return c.Amplitude },
		set: func(c sinusoid.Config, v float64) sinusoid.Config { return c.WithAmplitude(v) },
	},
}

// =============================================================================
// TuneModel - Interactive parameter editor
// =============================================================================

// TuneModel is the bubbletea model for interactive parameter tuning. Every
// accepted change reruns the transform; a change that fails validation is
// reported and the previous configuration is kept.
type TuneModel struct {
	Image  *image.Gray
	Config sinusoid.Config
	Doc    *vector.Document
	Cursor int
	Status string
	Err    error
	Save   bool
}

// NewTuneModel transforms img with cfg and returns the initial model.
func NewTuneModel(img *image.Gray, cfg sinusoid.Config) (TuneModel, error) {
	doc, err := sinusoid.Transform(img, cfg)
	if err != nil {
		return TuneModel{}, err
	}
	return TuneModel{Image: img, Config: cfg, Doc: doc}, nil
}

func (m TuneModel) Init() tea.Cmd {
	return nil
}

func (m TuneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "s", "enter":
		m.Save = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(tuneParams)-1 {
			m.Cursor++
		}
	case "right", "l":
		m = m.nudge(1)
	case "left", "h":
		m = m.nudge(-1)
	case "L", "shift+right":
		m = m.nudge(10)
	case "H", "shift+left":
		m = m.nudge(-10)
	}
	return m, nil
}

// nudge moves the selected parameter by steps and reruns the transform.
func (m TuneModel) nudge(steps float64) TuneModel {
	p := tuneParams[m.Cursor]
	v := p.get(m.Config) + steps*p.step
	return m.apply(p.set(m.Config, v))
}

// apply accepts cfg if it validates and transforms; otherwise the current
// configuration and document stay.
func (m TuneModel) apply(cfg sinusoid.Config) TuneModel {
	if err := cfg.Validate(); err != nil {
		m.Err = err
		m.Status = errors.UserMessage(err)
		return m
	}
	doc, err := sinusoid.Transform(m.Image, cfg)
	if err != nil {
		m.Err = err
		m.Status = errors.UserMessage(err)
		return m
	}
	m.Config, m.Doc, m.Err = cfg, doc, nil
	m.Status = printer.Sprintf("%d rows, %d points", len(doc.Paths), doc.PointCount())
	return m
}

func (m TuneModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Tune Shading"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ select  ←/→ adjust  H/L ×10  s save  q quit"))
	b.WriteString("\n\n")
	b.WriteString(shadingTable(m.Config, m.Cursor))
	b.WriteString("\n\n")

	switch {
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + StyleWarning.Render(m.Status))
	case m.Status != "":
		b.WriteString(styleIconInfo.Render(iconInfo) + " " + StyleDim.Render(m.Status))
	default:
		b.WriteString(styleIconInfo.Render(iconInfo) + " " +
			StyleDim.Render(printer.Sprintf("%d rows, %d points", len(m.Doc.Paths), m.Doc.PointCount())))
	}
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// tuneCommand creates the interactive tune command.
func (c *CLI) tuneCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "tune <input|url> [output]",
		Short: "Adjust shading parameters interactively",
		Long: `Adjust shading parameters interactively.

Select a parameter with the arrow keys and change it with left and right; the
image is transformed again after every change. Press s or enter to write the
SVG, q to quit without saving.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := ""
			if len(args) == 2 {
				output = args[1]
			}
			opts := c.options(cmd, &f)
			opts.Formats = []string{sink.FormatSVG}
			return c.runTune(cmd.Context(), args[0], output, opts)
		},
	}

	bindShadingFlags(cmd, &f)
	return cmd
}

func (c *CLI) runTune(ctx context.Context, input, output string, opts pipeline.Options) error {
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	path := outputPaths(input, output, opts.Formats)[sink.FormatSVG]
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}

	data, err := c.readInput(ctx, input)
	if err != nil {
		return err
	}
	prep, err := pipeline.NewRunner(nil, nil, c.Logger).Prepare(ctx, data, opts)
	if err != nil {
		return err
	}

	model, err := NewTuneModel(prep.Image, prep.Config)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("tune: %w", err)
	}
	m, ok := final.(TuneModel)
	if !ok || !m.Save {
		printInfo("Nothing saved")
		return nil
	}

	opts.Shading = m.Config
	artifacts, err := pipeline.RenderDocument(m.Doc, opts)
	if err != nil {
		return err
	}
	if err := io.ExportFile(path, artifacts[sink.FormatSVG]); err != nil {
		return err
	}
	printSuccess("Saved %s", filepath.Base(path))
	printFile(path)
	describeConfig(m.Config)
	return nil
}

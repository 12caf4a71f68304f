// Command sheetfill lays out items on a print sheet without the desktop UI.
//
//	sheetfill -list items.xlsx -preset A4 -landscape -fill -pdf out.pdf -report out.xlsx -guides
//
// Extra arguments are imported as well, so images and symbols can be given
// directly. The exit status is 1 when any input fails to import or nothing
// fits on the sheet, and 2 for usage errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/piwi3910/PrintSheet/internal/engine"
	"github.com/piwi3910/PrintSheet/internal/export"
	"github.com/piwi3910/PrintSheet/internal/importer"
	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/piwi3910/PrintSheet/internal/project"
	"github.com/piwi3910/PrintSheet/internal/workspace"
)

type options struct {
	inputs    []string
	open      string
	preset    string
	landscape bool
	bleed     float64
	padding   float64
	gutter    float64
	dpi       float64
	fill      bool
	pdfPath   string
	report    string
	save      string
	guides    bool
	verbose   bool
	configDir string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetfill: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "sheetfill: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("sheetfill", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sheetfill [flags] [files...]\n")
		fs.PrintDefaults()
	}
	list := fs.String("list", "", "CSV or Excel item list to import")
	fs.StringVar(&opts.open, "project", "", "Start from a saved .printsheet project")
	fs.StringVar(&opts.preset, "preset", "", "Sheet preset (default from preferences)")
	fs.BoolVar(&opts.landscape, "landscape", false, "Use landscape orientation")
	fs.Float64Var(&opts.bleed, "bleed", -1, "Bleed in mm (negative keeps the default)")
	fs.Float64Var(&opts.padding, "padding", -1, "Padding in mm (negative keeps the default)")
	fs.Float64Var(&opts.gutter, "gutter", -1, "Gutter between items in mm (negative keeps the default)")
	fs.Float64Var(&opts.dpi, "dpi", 0, "Resolution used to size raster images (default from preferences)")
	fs.BoolVar(&opts.fill, "fill", false, "Fill the sheet with copies of the items")
	fs.StringVar(&opts.pdfPath, "pdf", "", "Write the sheet as PDF")
	fs.StringVar(&opts.report, "report", "", "Write an XLSX report of the layout")
	fs.StringVar(&opts.save, "save", "", "Save the result as a .printsheet project")
	fs.BoolVar(&opts.guides, "guides", false, "Draw bleed and safe-area guides in the PDF")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	fs.StringVar(&opts.configDir, "config", project.DefaultConfigDir(), "Directory holding preferences and custom presets")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *list != "" {
		opts.inputs = append(opts.inputs, *list)
	}
	opts.inputs = append(opts.inputs, fs.Args()...)
	if len(opts.inputs) == 0 && opts.open == "" {
		fs.Usage()
		return options{}, errors.New("nothing to lay out: give -list, -project or input files")
	}
	return opts, nil
}

func hasPreset(name string) bool {
	for _, n := range model.GetPresetNames() {
		if n == name {
			return true
		}
	}
	return false
}

// sheetFor resolves the sheet from preferences, a loaded project and flags.
func sheetFor(opts options, cfg model.AppConfig, base *model.SheetSettings) model.SheetSettings {
	var sheet model.SheetSettings
	if base != nil {
		sheet = *base
	} else {
		sheet = model.DefaultSheet()
		cfg.ApplyToSheet(&sheet)
	}
	if opts.preset != "" {
		p := model.GetPreset(opts.preset)
		sheet.Preset, sheet.Width, sheet.Height = p.Name, p.Width, p.Height
	}
	if opts.landscape {
		sheet.Orientation = model.Landscape
	}
	if opts.bleed >= 0 {
		sheet.Bleed = opts.bleed
	}
	if opts.padding >= 0 {
		sheet.Padding = opts.padding
	}
	if opts.gutter >= 0 {
		sheet.Gutter = opts.gutter
	}
	return sheet
}

func run(ctx context.Context, opts options, out io.Writer, logger *slog.Logger) error {
	cfg, err := project.LoadAppConfig(project.ConfigPath(opts.configDir))
	if err != nil {
		logger.Warn("config unreadable, using defaults", "err", err)
		cfg = model.DefaultAppConfig()
	}
	if err := project.InstallCustomPresets(project.PresetsPath(opts.configDir)); err != nil {
		logger.Warn("custom presets unreadable", "err", err)
	}
	if opts.preset != "" && !hasPreset(opts.preset) {
		return fmt.Errorf("unknown preset %q", opts.preset)
	}

	var start *model.Project
	if opts.open != "" {
		p, err := project.Load(opts.open)
		if err != nil {
			return err
		}
		start = &p
	}

	var base *model.SheetSettings
	if start != nil {
		base = &start.Sheet
	}
	sheet := sheetFor(opts, cfg, base)

	ws, err := workspace.New(sheet, cfg, logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	if start != nil {
		start.Sheet = sheet
		if err := ws.LoadProject(ctx, *start); err != nil {
			return err
		}
	}

	iopts := importer.DefaultOptions()
	iopts.DPI = cfg.DefaultDPI
	if opts.dpi > 0 {
		iopts.DPI = opts.dpi
	}

	var importErrs int
	for _, path := range opts.inputs {
		res := importer.ImportFile(path, iopts)
		for _, w := range res.Warnings {
			logger.Debug("import warning", "file", path, "msg", w)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(out, "%s: %s\n", path, e)
		}
		importErrs += len(res.Errors)
		if len(res.Items) == 0 {
			continue
		}
		placed, failed := ws.AddItems(res.Items)
		fmt.Fprintf(out, "%s: %d items, %d placed, %d did not fit\n", path, placed+failed, placed, failed)
	}

	items := ws.Items()
	if len(items) == 0 {
		return errors.New("no items to lay out")
	}

	var runErr error
	if opts.fill {
		res, err := ws.FillSheet(ctx)
		switch {
		case errors.Is(err, engine.ErrNothingFits):
			runErr = err
		case err != nil:
			return fmt.Errorf("fill: %w", err)
		default:
			fmt.Fprintf(out, "fill: %d copies in %d rounds\n", res.Clones, res.Rounds)
			if w := res.Warning(); w != "" {
				fmt.Fprintf(out, "fill: %s\n", w)
			}
		}
	} else if !anyInside(ws.Items(), ws.SafeArea()) {
		runErr = engine.ErrNothingFits
	}

	p := ws.Project()
	fmt.Fprintf(out, "sheet: %s %s, %d items, %.1f%% coverage\n",
		p.Sheet.Preset, p.Sheet.Orientation, len(p.Items), p.Coverage())

	if opts.pdfPath != "" {
		warnings, err := export.ExportPDF(opts.pdfPath, p, export.PDFOptions{Guides: opts.guides})
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(out, "pdf: %s\n", w)
		}
		fmt.Fprintf(out, "pdf: wrote %s\n", opts.pdfPath)
	}
	if opts.report != "" {
		if err := export.ExportReport(opts.report, p); err != nil {
			return err
		}
		fmt.Fprintf(out, "report: wrote %s\n", opts.report)
	}
	if opts.save != "" {
		path, err := project.Save(opts.save, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "project: wrote %s\n", path)
	}

	if runErr != nil {
		return runErr
	}
	if importErrs > 0 {
		return fmt.Errorf("%d import error(s)", importErrs)
	}
	return nil
}

func anyInside(items []*model.Item, safe model.Rect) bool {
	for _, it := range items {
		if safe.Contains(it.BoundingBox()) {
			return true
		}
	}
	return false
}

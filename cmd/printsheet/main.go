// PrintSheet lays out images, text, vector symbols and QR codes on a print
// sheet, fills it with copies and exports a print-ready PDF.
//
// Build:
//   go build -o printsheet ./cmd/printsheet
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o printsheet.exe ./cmd/printsheet
//   GOOS=darwin  GOARCH=amd64 go build -o printsheet-darwin ./cmd/printsheet
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/piwi3910/PrintSheet/internal/ui"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	application := app.NewWithID("com.piwi3910.printsheet")
	window := application.NewWindow("PrintSheet")

	appUI, err := ui.NewApp(application, window, logger)
	if err != nil {
		logger.Error("cannot start", "err", err)
		os.Exit(1)
	}
	defer appUI.Close()

	appUI.SetupMenus()
	window.SetContent(fynetooltip.AddWindowToolTipLayer(appUI.Build(), window.Canvas()))
	window.Resize(fyne.NewSize(1400, 900))
	window.CenterOnScreen()
	window.ShowAndRun()
}

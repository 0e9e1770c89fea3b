package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"petvision/internal/config"
	"petvision/internal/logger"
	"petvision/internal/models"
	"petvision/internal/ui/cwidget"
	"petvision/processing/capture"
	processing "petvision/processing/detector"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	AppTitle = "Cat & Dog Detector"

	errorTitle  = "API Error"
	resultTitle = "Detection Result"
)

var detectorSchemes = []string{"http", "https", "ws", "wss"}

var errNoDetector = errors.New("no detection service configured")

type DetectApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	config  *config.Config
	log     *logger.Logger
	session *processing.Session

	detMu    sync.RWMutex
	detector processing.Detector
	inflight sync.WaitGroup

	display     *cwidget.TappableImage
	urlInput    *cwidget.Input[string]
	statusLabel *widget.Label
	modeButtons map[models.Mode]*widget.Button

	// alert and alertError show modal messages; replaced in tests.
	alert      func(title, message string)
	alertError func(title, message string)
}

func CreateApp(cfg *config.Config, det processing.Detector, session *processing.Session, log *logger.Logger) *DetectApp {
	return newDetectApp(app.New(), cfg, det, session, log)
}

func newDetectApp(a fyne.App, cfg *config.Config, det processing.Detector, session *processing.Session, log *logger.Logger) *DetectApp {
	w := a.NewWindow(AppTitle)

	width, height := cfg.GetWindowSize()
	w.Resize(fyne.NewSize(float32(width), float32(height)))

	d := &DetectApp{
		fyneApp:  a,
		mainWin:  w,
		config:   cfg,
		log:      log,
		session:  session,
		detector: det,
	}
	d.alert = func(title, message string) {
		dialog.ShowInformation(title, message, d.mainWin)
	}
	d.alertError = func(title, message string) {
		content := container.NewHBox(widget.NewIcon(theme.ErrorIcon()), widget.NewLabel(message))
		dialog.ShowCustom(title, "OK", content, d.mainWin)
	}

	d.mainWin.SetContent(d.buildContent())

	return d
}

func (a *DetectApp) Run() {
	a.mainWin.SetCloseIntercept(func() {
		if err := a.config.SaveByDefault(); err != nil {
			a.log.Warning("save config: %v", err)
		}
		a.mainWin.Close()
	})

	a.mainWin.CenterOnScreen()
	a.mainWin.Show()
	a.promptOpen()
	a.fyneApp.Run()
}

func (a *DetectApp) buildContent() fyne.CanvasObject {
	a.display = cwidget.NewTappableImage(fyne.NewSize(640, 480), a.promptOpen)

	a.statusLabel = widget.NewLabel("Click the picture area to choose an image")

	a.modeButtons = map[models.Mode]*widget.Button{
		models.ModeCat:  widget.NewButton("Cats", func() { a.SetMode(models.ModeCat) }),
		models.ModeDog:  widget.NewButton("Dogs", func() { a.SetMode(models.ModeDog) }),
		models.ModeBoth: widget.NewButton("Both", func() { a.SetMode(models.ModeBoth) }),
	}
	a.refreshModeButtons()

	a.urlInput = cwidget.NewURLInput(
		"Detector URL",
		config.DefaultDetectorURL,
		a.config.GetDetectorURL(),
		detectorSchemes,
		a.setDetectorURL,
	)

	toolbar := container.NewHBox(
		widget.NewButtonWithIcon("Open Image", theme.FolderOpenIcon(), a.promptOpen),
		widget.NewSeparator(),
		a.modeButtons[models.ModeCat],
		a.modeButtons[models.ModeDog],
		a.modeButtons[models.ModeBoth],
	)

	sidebar := container.NewVBox(
		widget.NewLabelWithStyle("Configuration", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewSeparator(),
		a.urlInput,
	)

	view := container.NewBorder(toolbar, a.statusLabel, nil, nil, a.display)

	split := container.NewHSplit(
		container.NewPadded(sidebar),
		container.NewPadded(view),
	)
	split.SetOffset(0.25)

	return split
}

func (a *DetectApp) promptOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.alertError(errorTitle, fmt.Sprintf("Error: %v", err))
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		pic, err := capture.Read(reader.URI().Name(), reader)
		if err != nil {
			a.log.Error("load %s: %v", reader.URI().Name(), err)
			a.alertError(errorTitle, fmt.Sprintf("Error: %v", err))
			return
		}

		if path := reader.URI().Path(); path != "" {
			a.config.SetLastDir(filepath.Dir(path))
		}

		a.SelectPicture(pic)
	}, a.mainWin)

	fd.SetFilter(storage.NewExtensionFileFilter(capture.Extensions))

	if dir := a.config.GetLastDir(); dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(lister)
		}
	}

	fd.Show()
}

// SelectPicture shows the raw picture right away and sends it for detection.
// The result is applied on the UI thread whenever it arrives.
func (a *DetectApp) SelectPicture(pic *capture.Picture) {
	a.log.Info("selected %s (%d bytes)", pic.Name, len(pic.Data))

	a.session.Load(pic.Image)
	a.redraw()

	det := a.currentDetector()
	if det == nil {
		a.applyResult(pic, nil, fmt.Errorf("%w: %w", processing.ErrRequestFailed, errNoDetector))
		return
	}

	a.statusLabel.SetText(fmt.Sprintf("Detecting %s...", pic.Name))

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()

		dets, err := det.Detect(context.Background(), pic)

		fyne.DoAndWait(func() {
			a.applyResult(pic, dets, err)
		})
	}()
}

func (a *DetectApp) applyResult(pic *capture.Picture, dets []models.Detection, err error) {
	if err != nil {
		a.log.Error("detect %s: %v", pic.Name, err)
		a.statusLabel.SetText(fmt.Sprintf("Detection failed for %s", pic.Name))
		a.alertError(errorTitle, fmt.Sprintf("Error: %v", err))
		return
	}

	a.log.Info("detect %s: %d detections", pic.Name, len(dets))

	a.session.SetDetections(dets)
	a.redraw()
}

// SetMode switches the class filter and redraws without a new request.
func (a *DetectApp) SetMode(m models.Mode) {
	a.session.SetMode(m)
	a.refreshModeButtons()

	if !a.session.HasImage() {
		a.statusLabel.SetText(fmt.Sprintf("Showing %s once a picture is chosen", m))
		return
	}
	a.redraw()
}

func (a *DetectApp) redraw() {
	frame, ok := a.session.Redraw()
	if !ok {
		return
	}

	a.display.SetImage(frame.Image)

	if frame.Pending {
		return
	}

	a.mainWin.SetTitle(formatTitle(frame.Counts))
	a.statusLabel.SetText(fmt.Sprintf("Showing %d of %d detections (%s)",
		len(frame.Drawn), len(a.session.Detections()), a.session.Mode()))

	if frame.Notice != "" {
		a.alert(resultTitle, frame.Notice)
	}
}

func (a *DetectApp) refreshModeButtons() {
	active := a.session.Mode()
	for m, btn := range a.modeButtons {
		if m == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

func (a *DetectApp) setDetectorURL(u string) {
	det, err := processing.NewDetector(u)
	if err != nil {
		if a.urlInput != nil {
			a.urlInput.SetError(err)
		}
		return
	}

	a.detMu.Lock()
	a.detector = det
	a.detMu.Unlock()

	a.config.SetDetectorURL(u)
}

func (a *DetectApp) currentDetector() processing.Detector {
	a.detMu.RLock()
	defer a.detMu.RUnlock()
	return a.detector
}

// waitIdle blocks until every started detection has been applied.
func (a *DetectApp) waitIdle() {
	a.inflight.Wait()
}

func formatTitle(c models.Counts) string {
	return fmt.Sprintf("%s  |  Cats: %d  Dogs: %d", AppTitle, c.Cats, c.Dogs)
}

// Package window implements the webhub main window: the list of webapps
// toggled by the main-window shortcut.
package window

import (
	"context"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/rs/zerolog"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/webkit"
	"github.com/bnema/webhub/internal/logging"
	"github.com/bnema/webhub/internal/ui/mainloop"
)

const (
	defaultWidth  = 420
	defaultHeight = 560
	windowTitle   = "webhub"
)

// Controller is the part of the hub the main window drives.
type Controller interface {
	GetConfig(ctx context.Context) *entity.AppConfig
	ListWebApps(ctx context.Context) []entity.WebApp
	Windows(ctx context.Context) []entity.WindowState
	OpenWebApp(ctx context.Context, id string) error
}

// MainWindow lists the webapps. GTK widgets are only touched on the main thread.
type MainWindow struct {
	ctx        context.Context
	controller Controller
	logger     zerolog.Logger
	coalescer  *mainloop.Coalescer
	onQuit     func()

	window *gtk.Window
	list   *gtk.ListBox
	empty  *gtk.Label

	mu   sync.Mutex
	rows []Row
}

var _ port.MainWindow = (*MainWindow)(nil)

// New builds the main window, hidden. Main thread only.
func New(ctx context.Context, controller Controller, onQuit func()) *MainWindow {
	log := logging.FromContext(ctx)
	mw := &MainWindow{
		ctx:        logging.WithComponent(ctx, "main-window"),
		controller: controller,
		logger:     log.With().Str("component", "main-window").Logger(),
		coalescer:  mainloop.NewCoalescer(webkit.Post),
		onQuit:     onQuit,
	}

	mw.window = gtk.NewWindow()
	mw.window.SetTitle(windowTitle)
	mw.window.SetDefaultSize(defaultWidth, defaultHeight)

	mw.list = gtk.NewListBox()
	mw.list.SetSelectionMode(gtk.SelectionSingle)
	mw.list.ConnectRowActivated(mw.onRowActivated)

	mw.empty = gtk.NewLabel("No webapps yet. Add one with `webhub add <name> <url>`.")
	mw.empty.SetWrap(true)
	mw.empty.SetMarginTop(24)
	mw.empty.AddCSSClass("dim-label")

	scroller := gtk.NewScrolledWindow()
	scroller.SetVExpand(true)
	scroller.SetChild(mw.list)

	root := gtk.NewBox(gtk.OrientationVertical, 0)
	root.Append(mw.empty)
	root.Append(scroller)
	mw.window.SetChild(root)

	mw.window.ConnectCloseRequest(mw.onCloseRequest)
	mw.apply(nil)
	mw.Refresh()
	return mw
}

// ToggleVisibility shows the window when hidden and hides it otherwise.
// It must not be called from the main thread.
func (mw *MainWindow) ToggleVisibility(ctx context.Context) error {
	rows := mw.collect()
	return webkit.Invoke(ctx, func() {
		if mw.window.IsVisible() {
			mw.window.SetVisible(false)
			return
		}
		mw.apply(rows)
		mw.window.Present()
	})
}

// Present shows and focuses the window with fresh rows.
// It must not be called from the main thread.
func (mw *MainWindow) Present(ctx context.Context) error {
	rows := mw.collect()
	return webkit.Invoke(ctx, func() {
		mw.apply(rows)
		mw.window.Present()
	})
}

// Show presents the window. Main thread only.
func (mw *MainWindow) Show() {
	mw.window.Present()
	mw.Refresh()
}

// Refresh reads the controller's state off the main thread and schedules a redraw.
func (mw *MainWindow) Refresh() {
	go func() {
		rows := mw.collect()
		mw.coalescer.Post("refresh", func() { mw.apply(rows) })
	}()
}

// Select highlights the row of webappID.
func (mw *MainWindow) Select(webappID string) {
	mw.coalescer.Post("select-row", func() { mw.selectRow(webappID) })
}

// FollowSwitches selects the row of every webapp reached by a shortcut until
// events is closed.
func (mw *MainWindow) FollowSwitches(events <-chan string) {
	for id := range events {
		mw.Select(id)
		mw.Refresh()
	}
}

// Close drops pending redraws and destroys the window.
func (mw *MainWindow) Close(ctx context.Context) error {
	mw.coalescer.Stop()
	return webkit.Invoke(ctx, func() {
		mw.window.Destroy()
	})
}

// collect queries the controller. Window snapshots reach the main thread for
// geometry, so this never runs there.
func (mw *MainWindow) collect() []Row {
	return BuildRows(mw.controller.ListWebApps(mw.ctx), mw.controller.Windows(mw.ctx))
}

// apply redraws the list from rows. Main thread only.
func (mw *MainWindow) apply(rows []Row) {
	mw.mu.Lock()
	mw.rows = rows
	mw.mu.Unlock()

	for {
		child := mw.list.FirstChild()
		if child == nil {
			break
		}
		mw.list.Remove(child)
	}
	for _, row := range rows {
		mw.list.Append(newRowWidget(row))
	}
	mw.empty.SetVisible(len(rows) == 0)
}

func newRowWidget(row Row) *gtk.Box {
	box := gtk.NewBox(gtk.OrientationHorizontal, 12)
	box.SetMarginTop(8)
	box.SetMarginBottom(8)
	box.SetMarginStart(12)
	box.SetMarginEnd(12)

	text := gtk.NewBox(gtk.OrientationVertical, 2)
	text.SetHExpand(true)
	name := gtk.NewLabel(row.Name)
	name.SetXAlign(0)
	text.Append(name)
	host := gtk.NewLabel(row.Host)
	host.SetXAlign(0)
	host.AddCSSClass("dim-label")
	text.Append(host)
	box.Append(text)

	if row.Status != "" {
		status := gtk.NewLabel(row.Status)
		status.AddCSSClass("dim-label")
		box.Append(status)
	}
	if row.Shortcut != "" {
		box.Append(gtk.NewLabel(row.Shortcut))
	}
	return box
}

func (mw *MainWindow) selectRow(webappID string) {
	mw.mu.Lock()
	idx := IndexOf(mw.rows, webappID)
	mw.mu.Unlock()
	if idx < 0 {
		return
	}
	if row := mw.list.RowAtIndex(idx); row != nil {
		mw.list.SelectRow(row)
	}
}

func (mw *MainWindow) onRowActivated(row *gtk.ListBoxRow) {
	mw.mu.Lock()
	idx := row.Index()
	var id string
	if idx >= 0 && idx < len(mw.rows) {
		id = mw.rows[idx].ID
	}
	mw.mu.Unlock()
	if id == "" {
		return
	}

	go func() {
		if err := mw.controller.OpenWebApp(mw.ctx, id); err != nil {
			mw.logger.Error().Err(err).Str("webapp_id", id).Msg("failed to open webapp")
		}
		mw.Refresh()
	}()
}

// onCloseRequest hides the window when minimize_to_tray is set and quits otherwise.
func (mw *MainWindow) onCloseRequest() bool {
	if mw.minimizeToTray() {
		mw.window.SetVisible(false)
		return true
	}
	if mw.onQuit != nil {
		go mw.onQuit()
	}
	return false
}

func (mw *MainWindow) minimizeToTray() bool {
	cfg := mw.controller.GetConfig(mw.ctx)
	return cfg != nil && cfg.MinimizeToTray
}

package hub_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

func testContext() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

// stepClock advances one second on every reading so recency is strictly ordered.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func fixedClock() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

// gate holds a native call until the test opens it.
type gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) pass() {
	if g == nil {
		return
	}
	g.once.Do(func() { close(g.entered) })
	<-g.release
}

func (g *gate) open() { close(g.release) }

type fakeWindow struct {
	factory *fakeFactory
	spec    port.WindowSpec
	cb      port.WindowCallbacks

	mu         sync.Mutex
	visible    bool
	destroyed  bool
	shows      int
	hides      int
	scripts    []string
	destroyErr error
	evalErr    error

	hideGate    *gate
	destroyGate *gate
}

func (w *fakeWindow) Show(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.destroyed {
		w.visible = true
		w.shows++
	}
	return nil
}

func (w *fakeWindow) Hide(context.Context) error {
	w.mu.Lock()
	g := w.hideGate
	w.mu.Unlock()
	g.pass()

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.destroyed {
		w.visible = false
		w.hides++
	}
	return nil
}

func (w *fakeWindow) Destroy(context.Context) error {
	w.mu.Lock()
	g := w.destroyGate
	w.mu.Unlock()
	g.pass()

	w.mu.Lock()
	if w.destroyErr != nil {
		err := w.destroyErr
		w.mu.Unlock()
		return err
	}
	already := w.destroyed
	w.destroyed = true
	w.visible = false
	w.mu.Unlock()

	w.factory.released(w.spec.WebAppID, already)
	return nil
}

func (w *fakeWindow) EvaluateScript(_ context.Context, script string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.evalErr != nil {
		return w.evalErr
	}
	if !w.destroyed {
		w.scripts = append(w.scripts, script)
	}
	return nil
}

func (w *fakeWindow) Geometry(context.Context) entity.Geometry {
	return w.spec.Geometry
}

func (w *fakeWindow) finishLoad() { w.cb.OnLoadFinished() }
func (w *fakeWindow) focus()      { w.cb.OnFocus() }

// userClose simulates the window manager closing the window.
func (w *fakeWindow) userClose() {
	w.mu.Lock()
	w.destroyed = true
	w.visible = false
	w.mu.Unlock()
	w.factory.released(w.spec.WebAppID, false)
	w.cb.OnClosed()
}

func (w *fakeWindow) isVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *fakeWindow) isDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

func (w *fakeWindow) scriptCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.scripts)
}

func (w *fakeWindow) setDestroyErr(err error) {
	w.mu.Lock()
	w.destroyErr = err
	w.mu.Unlock()
}

func (w *fakeWindow) holdHide() *gate {
	g := newGate()
	w.mu.Lock()
	w.hideGate = g
	w.mu.Unlock()
	return g
}

func (w *fakeWindow) holdDestroy() *gate {
	g := newGate()
	w.mu.Lock()
	w.destroyGate = g
	w.mu.Unlock()
	return g
}

func (w *fakeWindow) setEvalErr(err error) {
	w.mu.Lock()
	w.evalErr = err
	w.mu.Unlock()
}

// fakeFactory records every window it creates and checks the native-level
// invariants: live windows never exceed a cap and never exceed one per webapp.
type fakeFactory struct {
	mu        sync.Mutex
	windows   []*fakeWindow
	createErr error
	delay     time.Duration

	live          int
	maxLive       int
	liveByID      map[string]int
	violations    []string
	doubleDestroy bool
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{liveByID: make(map[string]int)}
}

func (f *fakeFactory) CreateWindow(_ context.Context, spec port.WindowSpec, cb port.WindowCallbacks) (port.NativeWindow, error) {
	f.mu.Lock()
	err, delay := f.createErr, f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}

	w := &fakeWindow{factory: f, spec: spec, cb: cb, visible: true}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, w)
	f.live++
	if f.live > f.maxLive {
		f.maxLive = f.live
	}
	f.liveByID[spec.WebAppID]++
	if f.liveByID[spec.WebAppID] > 1 {
		f.violations = append(f.violations, fmt.Sprintf("two live windows for %s", spec.WebAppID))
	}
	return w, nil
}

func (f *fakeFactory) released(id string, already bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if already {
		f.doubleDestroy = true
		return
	}
	f.live--
	f.liveByID[id]--
}

func (f *fakeFactory) setCreateErr(err error) {
	f.mu.Lock()
	f.createErr = err
	f.mu.Unlock()
}

// latest returns the most recent window created for id.
func (f *fakeFactory) latest(id string) *fakeWindow {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.windows) - 1; i >= 0; i-- {
		if f.windows[i].spec.WebAppID == id {
			return f.windows[i]
		}
	}
	return nil
}

func (f *fakeFactory) created(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.windows {
		if w.spec.WebAppID == id {
			n++
		}
	}
	return n
}

func (f *fakeFactory) stats() (live, maxLive int, violations []string, doubleDestroy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live, f.maxLive, append([]string(nil), f.violations...), f.doubleDestroy
}

// fakeHotkeys records registrations and lets tests press a shortcut.
type fakeHotkeys struct {
	mu      sync.Mutex
	fires   map[string]func()
	failOn  map[string]error
	closed  bool
	history []string
}

func newFakeHotkeys() *fakeHotkeys {
	return &fakeHotkeys{fires: make(map[string]func()), failOn: make(map[string]error)}
}

func (k *fakeHotkeys) Register(_ context.Context, acc entity.Accelerator, fire func()) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err, ok := k.failOn[acc.String()]; ok {
		return err
	}
	k.fires[acc.String()] = fire
	k.history = append(k.history, "+"+acc.String())
	return nil
}

func (k *fakeHotkeys) Unregister(_ context.Context, acc entity.Accelerator) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.fires, acc.String())
	k.history = append(k.history, "-"+acc.String())
	return nil
}

func (k *fakeHotkeys) Close() error {
	k.mu.Lock()
	k.closed = true
	k.mu.Unlock()
	return nil
}

// press fires the OS callback of a registered accelerator, like the X server would.
func (k *fakeHotkeys) press(shortcut string) bool {
	key, err := entity.NormalizeShortcut(shortcut)
	if err != nil {
		return false
	}
	k.mu.Lock()
	fire, ok := k.fires[key]
	k.mu.Unlock()
	if ok {
		fire()
	}
	return ok
}

func (k *fakeHotkeys) registered() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, 0, len(k.fires))
	for s := range k.fires {
		out = append(out, s)
	}
	return out
}

func testApp(id string, order int) entity.WebApp {
	return entity.WebApp{
		ID:       id,
		Name:     "app-" + id,
		URL:      "https://" + id + ".example.com",
		Width:    entity.DefaultWindowWidth,
		Height:   entity.DefaultWindowHeight,
		UseProxy: true,
		Order:    order,
	}
}

func testConfig(maxActive int, apps ...entity.WebApp) *entity.AppConfig {
	cfg := entity.DefaultAppConfig()
	cfg.MaxActiveWindows = maxActive
	cfg.WebApps = apps
	return cfg
}

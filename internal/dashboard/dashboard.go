// Package dashboard is the application context: it owns the loaded dataset,
// the country list, the chart profile and the bubble animation, and hands
// them to the HTTP layer and the CLI.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"eurostat/internal/animation"
	"eurostat/internal/engine"
	"eurostat/internal/models"
)

// ErrNotLoaded is returned before the first successful load.
var ErrNotLoaded = errors.New("dataset not loaded yet")

type Options struct {
	Source      string
	LoadTimeout time.Duration
	Interval    time.Duration
	Countries   []string
	Profile     engine.BubbleProfile
}

type Dashboard struct {
	opts Options
	data *engine.Holder
	anim *animation.Controller

	frameMu sync.RWMutex
	frame   *models.BubbleFrame

	subsMu sync.Mutex
	subs   map[chan animation.Event]struct{}
}

func New(opts Options) *Dashboard {
	if len(opts.Countries) == 0 {
		opts.Countries = engine.EU27
	}
	if opts.Profile == (engine.BubbleProfile{}) {
		opts.Profile = engine.DefaultBubbleProfile()
	}
	if opts.Interval <= 0 {
		opts.Interval = 800 * time.Millisecond
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 30 * time.Second
	}
	d := &Dashboard{
		opts: opts,
		data: engine.NewHolder(),
		subs: make(map[chan animation.Event]struct{}),
	}
	d.anim = animation.New(opts.Interval, d.onFrame)
	return d
}

// Reload fetches and normalizes the source, then swaps the dataset in.
// On failure the previous dataset stays in place.
func (d *Dashboard) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.LoadTimeout)
	defer cancel()

	ds, err := engine.Load(ctx, d.opts.Source)
	if err != nil {
		slog.Error("dataset load failed", "source", d.opts.Source, "error", err)
		return err
	}
	d.SetDataset(ds)
	return nil
}

// SetDataset replaces the dataset wholesale and rewinds the animation.
func (d *Dashboard) SetDataset(ds *engine.Dataset) {
	d.data.Store(ds)
	d.anim.Reset()
	d.setFrame(nil)
}

// Dataset returns the current dataset or ErrNotLoaded.
func (d *Dashboard) Dataset() (*engine.Dataset, error) {
	ds := d.data.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

func (d *Dashboard) Countries() []string {
	return d.opts.Countries
}

func (d *Dashboard) Profile() engine.BubbleProfile {
	return d.opts.Profile
}

func (d *Dashboard) LineSeries(ind models.Indicator, country string) (models.LineSeries, error) {
	ds, err := d.Dataset()
	if err != nil {
		return models.LineSeries{}, err
	}
	return engine.LineSeries(ds, ind, country)
}

func (d *Dashboard) BubbleFrame(year int) (models.BubbleFrame, error) {
	ds, err := d.Dataset()
	if err != nil {
		return models.BubbleFrame{}, err
	}
	return engine.BuildBubbleFrame(ds, year, d.opts.Countries, d.opts.Profile), nil
}

func (d *Dashboard) Table(year int) (models.SummaryTable, error) {
	ds, err := d.Dataset()
	if err != nil {
		return models.SummaryTable{}, err
	}
	return engine.BuildSummaryTable(ds, year, d.opts.Countries), nil
}

// StartAnimation steps the bubble chart through every available year.
func (d *Dashboard) StartAnimation() (string, error) {
	ds, err := d.Dataset()
	if err != nil {
		return "", err
	}
	return d.anim.Start(ds.Years())
}

func (d *Dashboard) StopAnimation() {
	d.anim.Stop()
}

// ResetAnimation stops, rewinds to the first year and clears the canvas.
func (d *Dashboard) ResetAnimation() {
	d.anim.Reset()
	d.setFrame(nil)
}

func (d *Dashboard) AnimationStatus() animation.Status {
	return d.anim.Status()
}

// WaitAnimation blocks until the running animation ends.
func (d *Dashboard) WaitAnimation(ctx context.Context) error {
	return d.anim.Wait(ctx)
}

// CurrentFrame is the frame drawn by the last animation tick.
func (d *Dashboard) CurrentFrame() (models.BubbleFrame, bool) {
	d.frameMu.RLock()
	defer d.frameMu.RUnlock()
	if d.frame == nil {
		return models.BubbleFrame{}, false
	}
	return *d.frame, true
}

func (d *Dashboard) setFrame(f *models.BubbleFrame) {
	d.frameMu.Lock()
	d.frame = f
	d.frameMu.Unlock()
}

// Subscribe returns a channel of animation events and a function that
// unsubscribes. Slow subscribers miss events rather than block the timer.
func (d *Dashboard) Subscribe() (<-chan animation.Event, func()) {
	ch := make(chan animation.Event, 16)
	d.subsMu.Lock()
	d.subs[ch] = struct{}{}
	d.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.subsMu.Lock()
			delete(d.subs, ch)
			d.subsMu.Unlock()
		})
	}
}

func (d *Dashboard) onFrame(ev animation.Event) {
	frame, err := d.BubbleFrame(ev.Year)
	if err != nil {
		slog.Warn("animation tick without dataset", "year", ev.Year)
		return
	}
	d.setFrame(&frame)

	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	for ch := range d.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

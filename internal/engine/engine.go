// Package engine wires discovery, parsing, icon resolution, the shard caches
// and the matcher into a live search pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/quantmind-br/appseek/internal/cache"
	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/quantmind-br/appseek/internal/desktop"
	"github.com/quantmind-br/appseek/internal/discovery"
	"github.com/quantmind-br/appseek/internal/icons"
	"github.com/quantmind-br/appseek/internal/logging"
	"github.com/quantmind-br/appseek/internal/matcher"
	"github.com/quantmind-br/appseek/internal/paths"
	"github.com/quantmind-br/appseek/internal/query"
	"github.com/quantmind-br/appseek/internal/shard"
)

const (
	defaultPollInterval = 50 * time.Millisecond
	defaultRefreshRate  = 10
	shardBuffer         = 64
)

var (
	ErrAlreadyStarted = errors.New("engine already started")
	ErrNotStarted     = errors.New("engine not started")
	ErrClosed         = errors.New("engine closed")
)

// Options configures an Engine
type Options struct {
	DataDirs  []string
	PathDirs  []string
	IconRoots []string

	Workers int
	Matcher matcher.Matcher

	// Watch follows directories for new entries after the initial walk.
	// It always uses the operating system filesystem.
	Watch    bool
	Debounce time.Duration

	// RefreshRate bounds re-evaluations per second triggered by cache growth
	RefreshRate  float64
	PollInterval time.Duration
}

// NewOptions builds engine options from the loaded configuration
func NewOptions(cfg *config.Config, res *paths.Resolver) Options {
	return Options{
		DataDirs:    res.DataDirs(),
		PathDirs:    res.PathDirs(),
		IconRoots:   res.IconRoots(),
		Workers:     cfg.Search.Workers,
		Matcher:     matcher.New(cfg.Search),
		Watch:       cfg.Watch.Enabled,
		Debounce:    cfg.Watch.Debounce,
		RefreshRate: cfg.Watch.RefreshRate,
	}
}

// Update is one evaluation of the current query
type Update struct {
	Query   string
	Results []core.RankedResult
	// Indexed is true once the initial walk has been fully processed
	Indexed bool
	// Total is the number of cached entries the query was evaluated against
	Total int
}

// Engine runs the discovery pipeline and answers queries against it
type Engine struct {
	opts     Options
	log      *zerolog.Logger
	watchLog *zerolog.Logger

	source    *discovery.Source
	parser    core.EntryParser
	icons     *icons.Memo
	partition shard.Partitioner
	caches    cache.Set
	inputs    []chan string
	queries   *query.Channel
	limiter   *rate.Limiter
	match     func(q string, caches cache.Set) []core.RankedResult

	workers  conc.WaitGroup
	loops    conc.WaitGroup
	inflight sync.WaitGroup

	// lifeMu orders Start against Close
	lifeMu    sync.Mutex
	started   atomic.Bool
	closed    bool
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error

	indexed     chan struct{}
	indexedOnce sync.Once
	walkDone    atomic.Bool
	walkErr     error
	watching    atomic.Bool

	latest atomic.Pointer[Update]
	subsMu sync.Mutex
	subs   []chan Update
	ended  bool

	stats counters
}

// New creates an engine over fs. Nothing runs until Start.
func New(fs afero.Fs, opts Options, log *zerolog.Logger) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.RefreshRate <= 0 {
		opts.RefreshRate = defaultRefreshRate
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	inputs := make([]chan string, opts.Workers)
	for i := range inputs {
		inputs[i] = make(chan string, shardBuffer)
	}

	e := &Engine{
		opts:      opts,
		log:       logging.Component(log, "engine"),
		watchLog:  logging.Component(log, "watcher"),
		source:    discovery.NewSource(fs, opts.DataDirs, opts.PathDirs, logging.Component(log, "discovery")),
		parser:    desktop.NewParser(fs),
		icons:     icons.NewMemo(icons.NewResolver(fs, opts.IconRoots)),
		partition: shard.New(opts.Workers),
		caches:    cache.NewSet(opts.Workers),
		inputs:    inputs,
		queries:   query.NewChannel(),
		limiter:   rate.NewLimiter(rate.Limit(opts.RefreshRate), 1),
		indexed:   make(chan struct{}),
	}
	e.match = opts.Matcher.Match
	return e
}

// Start launches the shard workers, the discovery coordinator and the query
// loop. The pipeline stops when ctx is cancelled or Close is called.
func (e *Engine) Start(ctx context.Context) error {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()

	switch {
	case e.closed:
		return ErrClosed
	case e.started.Load():
		return ErrAlreadyStarted
	}

	ctx, e.cancel = context.WithCancel(ctx)
	e.started.Store(true)

	for i := range e.inputs {
		in, c := e.inputs[i], e.caches[i]
		e.workers.Go(func() {
			e.runWorker(ctx, i, in, c)
		})
	}
	e.loops.Go(func() {
		e.coordinate(ctx)
	})
	e.loops.Go(func() {
		e.queryLoop(ctx)
	})

	e.log.Debug().
		Int("workers", len(e.inputs)).
		Int("data_dirs", len(e.opts.DataDirs)).
		Int("path_dirs", len(e.opts.PathDirs)).
		Msg("engine started")
	return nil
}

// Submit replaces the current query. It never blocks.
func (e *Engine) Submit(q string) error {
	return e.queries.Submit(q)
}

// Subscribe returns a channel receiving every published update. The channel
// holds only the most recent update; slow readers skip intermediate ones. It
// is closed when the engine stops.
func (e *Engine) Subscribe() <-chan Update {
	ch := make(chan Update, 1)

	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	if e.ended {
		close(ch)
		return ch
	}
	if u := e.latest.Load(); u != nil {
		ch <- *u
	}
	e.subs = append(e.subs, ch)
	return ch
}

// Results returns the most recent update, if any has been published
func (e *Engine) Results() (Update, bool) {
	u := e.latest.Load()
	if u == nil {
		return Update{}, false
	}
	return *u, true
}

// WaitIndexed blocks until the initial walk has been fully processed
func (e *Engine) WaitIndexed(ctx context.Context) error {
	if !e.started.Load() {
		return ErrNotStarted
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.indexed:
		if e.walkDone.Load() {
			return nil
		}
		return e.walkErr
	}
}

// Indexed reports whether the initial walk has been fully processed
func (e *Engine) Indexed() bool {
	return e.walkDone.Load()
}

// Search waits for the initial walk and evaluates q once, bypassing the
// query channel
func (e *Engine) Search(ctx context.Context, q string) ([]core.RankedResult, error) {
	if err := e.WaitIndexed(ctx); err != nil {
		return nil, err
	}
	e.stats.evaluations.Add(1)
	return e.match(q, e.caches), nil
}

// Caches exposes the shard caches for read-only listing
func (e *Engine) Caches() cache.Set {
	return e.caches
}

// Close stops the pipeline and waits for every goroutine to exit. A pending
// query is still evaluated before subscribers are released.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.lifeMu.Lock()
		e.closed = true
		cancel := e.cancel
		e.lifeMu.Unlock()

		e.queries.Close()
		if cancel == nil {
			e.finishSubscribers()
			return
		}

		cancel()

		var errs []error
		if r := e.loops.WaitAndRecover(); r != nil {
			errs = append(errs, fmt.Errorf("engine loop panicked: %w", r.AsError()))
		}
		if r := e.workers.WaitAndRecover(); r != nil {
			errs = append(errs, fmt.Errorf("shard worker panicked: %w", r.AsError()))
		}
		e.closeErr = errors.Join(errs...)
	})
	return e.closeErr
}

func (e *Engine) runWorker(ctx context.Context, idx int, in <-chan string, c *cache.Cache) {
	log := e.log.With().Int("shard", idx).Logger()

	for path := range in {
		if ctx.Err() == nil {
			e.process(ctx, &log, c, path)
		}
		e.inflight.Done()
	}
}

func (e *Engine) process(ctx context.Context, log *zerolog.Logger, c *cache.Cache, path string) {
	entry, err := e.parser.Parse(path)
	if err != nil {
		e.stats.drop(err)
		log.Debug().Err(err).Str("path", path).Msg("dropping candidate")
		return
	}

	if resolved, ok := e.icons.Resolve(ctx, entry.IconName); ok {
		entry.SetIconPath(resolved)
		e.stats.iconsResolved.Add(1)
	} else {
		e.stats.iconsMissing.Add(1)
		log.Debug().
			Err(core.ErrIconNotFound).
			Str("icon", entry.IconName).
			Str("path", path).
			Msg("icon left unresolved")
	}

	seq := c.Append(entry)
	e.stats.parsed.Add(1)
	log.Trace().Str("path", path).Int("seq", seq).Msg("entry cached")
}

func (e *Engine) coordinate(ctx context.Context) {
	defer func() {
		for _, in := range e.inputs {
			close(in)
		}
	}()
	defer e.markIndexed()

	start := time.Now()
	walkStats, err := e.route(ctx, func(out chan<- string) error {
		_, err := e.source.Walk(ctx, out)
		return err
	})
	e.stats.setWalk(walkStats)
	if err != nil {
		e.walkErr = err
		e.log.Debug().Err(err).Msg("initial walk interrupted")
		return
	}

	e.inflight.Wait()
	e.walkDone.Store(true)
	e.markIndexed()

	e.log.Info().
		Int64("discovered", walkStats.Emitted).
		Int64("skipped", walkStats.Skipped).
		Int("cached", e.caches.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("initial index complete")

	if !e.opts.Watch {
		return
	}

	watcher, err := discovery.NewWatcher(e.source.WatchDirs(), e.source.PathDirs(), e.opts.Debounce, e.watchLog)
	if err != nil {
		e.log.Warn().Err(err).Msg("live discovery unavailable")
		return
	}
	e.watching.Store(true)
	defer e.watching.Store(false)

	_, err = e.route(ctx, func(out chan<- string) error {
		return watcher.Run(ctx, out)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		e.log.Warn().Err(err).Msg("watcher stopped")
	}
}

// route runs produce and forwards every path it emits to its shard
func (e *Engine) route(ctx context.Context, produce func(out chan<- string) error) (discovery.Stats, error) {
	found := make(chan string)

	var router conc.WaitGroup
	var routed int64
	router.Go(func() {
		for path := range found {
			e.inflight.Add(1)
			select {
			case e.inputs[e.partition.Partition(path)] <- path:
				routed++
				e.stats.discovered.Add(1)
			case <-ctx.Done():
				e.inflight.Done()
			}
		}
	})

	err := produce(found)
	close(found)
	router.Wait()

	return discovery.Stats{Emitted: routed, Skipped: e.source.Stats().Skipped}, err
}

func (e *Engine) markIndexed() {
	e.indexedOnce.Do(func() {
		close(e.indexed)
	})
}

func (e *Engine) queryLoop(ctx context.Context) {
	defer e.finishSubscribers()

	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	var (
		active      bool
		lastVersion uint64
		lastIndexed bool
	)

	evaluate := func(q string) {
		lastVersion = e.caches.Version()
		lastIndexed = e.Indexed()
		e.evaluate(q)
	}

	for {
		select {
		case <-ctx.Done():
			if q, ok := e.queries.Take(); ok {
				evaluate(q)
			}
			return

		case <-e.queries.Done():
			if q, ok := e.queries.Take(); ok {
				evaluate(q)
			}
			return

		case <-e.queries.Ready():
			q, ok := e.queries.Take()
			if !ok {
				continue
			}
			active = true
			evaluate(q)

		case <-ticker.C:
			if !active {
				continue
			}
			if e.caches.Version() == lastVersion && e.Indexed() == lastIndexed {
				continue
			}
			// skipped growth is picked up on a later tick
			if !e.limiter.Allow() {
				continue
			}
			evaluate(e.queries.Current())
		}
	}
}

func (e *Engine) evaluate(q string) {
	total := e.caches.Len()
	results := e.match(q, e.caches)
	e.stats.evaluations.Add(1)

	if e.queries.Pending() {
		e.stats.superseded.Add(1)
		return
	}

	u := Update{
		Query:   q,
		Results: results,
		Indexed: e.Indexed(),
		Total:   total,
	}
	e.latest.Store(&u)
	e.publish(u)
}

func (e *Engine) publish(u Update) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	for _, ch := range e.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

func (e *Engine) finishSubscribers() {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	if e.ended {
		return
	}
	e.ended = true
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
}

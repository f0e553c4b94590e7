package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/fxpool/internal/config"
	"github.com/udisondev/fxpool/internal/effect"
	"github.com/udisondev/fxpool/internal/pool"
	"github.com/udisondev/fxpool/internal/render/terminal"
	"github.com/udisondev/fxpool/internal/scene"
	"github.com/udisondev/fxpool/internal/schedule"
	"github.com/udisondev/fxpool/internal/status"
	"github.com/udisondev/fxpool/internal/vfx"
)

const ConfigPath = "config/fxdemo.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("FXPOOL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadFXDemo(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal backend owns stdout, so logs go to a file.
	var logOut io.Writer = os.Stdout
	if cfg.Renderer == config.RendererTerminal {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("fxdemo starting",
		"log_level", cfg.LogLevel,
		"renderer", cfg.Renderer,
		"catalog", cfg.CatalogSource,
		"tick_rate", cfg.TickRate)

	defs, cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading effect catalog: %w", err)
	}
	registry, err := effect.LoadRegistry(defs)
	if err != nil {
		return fmt.Errorf("building effect registry: %w", err)
	}

	lib := scene.NewLibrary(resourceRefs(defs, cat)...)
	sched := schedule.New()
	stage := scene.NewNode("fx_container", scene.Zero)

	var (
		loader pool.Loader = pool.SceneLoader(lib)
		screen tcell.Screen
		view   *terminal.Renderer
	)
	if cfg.Renderer == config.RendererTerminal {
		screen, err = tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("creating screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("initializing screen: %w", err)
		}
		defer screen.Fini()

		tl := terminal.NewLoader(lib, terminal.Sprites(cat.Sprites))
		_, h := screen.Size()
		view = terminal.NewRenderer(screen, tl, terminal.Viewport{OriginX: 0, OriginY: h / 2, CellsPerUnit: 1})
		loader = tl
	}

	mgr := vfx.NewManager(registry, loader, sched, stage, vfx.WithInitialPoolSize(cfg.InitialPoolSize))
	defer mgr.Close()
	if err := mgr.Prewarm(cfg.Prewarm...); err != nil {
		slog.Warn("pre-warming pools", "err", err)
	}

	tracker := status.NewTracker(mgr, sched)
	dir := newDirector(mgr, tracker)

	if cfg.RunDuration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, cfg.RunDuration)
		defer stop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hooks := []schedule.FrameHook{dir.Frame}
	var loop *schedule.Loop
	if view != nil {
		hooks = append(hooks, func(dt time.Duration) {
			view.SetStatus(statusLine(mgr.Stats(), loop.Frames(), tracker.ActiveEffectCount(dir.target)))
			view.Frame(dt)
		})
		go pollInput(screen, cancel)
	}
	loop = schedule.NewLoop(sched, cfg.FrameInterval(), hooks...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := loop.Run(gctx); err != nil && !isShutdown(err) {
			return fmt.Errorf("frame loop: %w", err)
		}
		return nil
	})

	if cfg.StatsInterval > 0 {
		g.Go(func() error {
			slog.Info("starting stats reporter", "interval", cfg.StatsInterval)
			reportStats(gctx, mgr, cfg.StatsInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logStats(mgr.Stats())
	slog.Info("fxdemo stopped", "frames", loop.Frames())
	return nil
}

func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// pollInput cancels on Esc, q or Ctrl-C. It returns once the screen is
// finalized.
func pollInput(screen tcell.Screen, cancel context.CancelFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				cancel()
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

func reportStats(ctx context.Context, mgr *vfx.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logStats(mgr.Stats())
		}
	}
}

func logStats(stats map[string]pool.Stats) {
	for _, name := range slices.Sorted(maps.Keys(stats)) {
		s := stats[name]
		slog.Info("effect pool", "effect", name, "available", s.Available, "in_use", s.InUse, "total", s.Total)
	}
}

// statusLine summarizes pool occupancy for the terminal header.
func statusLine(stats map[string]pool.Stats, frames uint64, overlays int) string {
	var total, inUse int
	for _, s := range stats {
		total += s.Total
		inUse += s.InUse
	}
	return fmt.Sprintf(" fxpool  frame %d  pools %d  instances %d  active %d  overlays %d  (q to quit) ",
		frames, len(stats), total, inUse, overlays)
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

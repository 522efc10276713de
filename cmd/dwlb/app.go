package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pkt.systems/pslog"

	"github.com/brendandebeasi/dwlb/pkg/audio"
	"github.com/brendandebeasi/dwlb/pkg/backend"
	"github.com/brendandebeasi/dwlb/pkg/backend/headless"
	"github.com/brendandebeasi/dwlb/pkg/bar"
	"github.com/brendandebeasi/dwlb/pkg/click"
	"github.com/brendandebeasi/dwlb/pkg/colors"
	"github.com/brendandebeasi/dwlb/pkg/config"
	"github.com/brendandebeasi/dwlb/pkg/daemon"
	"github.com/brendandebeasi/dwlb/pkg/fonts"
	"github.com/brendandebeasi/dwlb/pkg/layout"
	"github.com/brendandebeasi/dwlb/pkg/loop"
	"github.com/brendandebeasi/dwlb/pkg/markup"
	"github.com/brendandebeasi/dwlb/pkg/paths"
	"github.com/brendandebeasi/dwlb/pkg/render"
	"github.com/brendandebeasi/dwlb/pkg/stats"
)

const measureCacheSize = 256

// app holds what a config reload can change.
type app struct {
	opts     *options
	cfg      *config.Config
	face     fonts.Face
	renderer *render.Renderer
	router   *click.Router
	handler  *daemon.Handler
}

func renderOptions(cfg *config.Config) render.Options {
	return render.Options{
		Tags:       cfg.Tags,
		HideVacant: cfg.HideVacant,
		Modules:    cfg.Modules,
		TimeFormat: cfg.TimeFormat,
		DateFormat: cfg.DateFormat,
	}
}

func volumeCommands(cfg *config.Config) click.VolumeCommands {
	v := cfg.Volume
	return click.VolumeCommands{
		PlaybackToggle: v.PlaybackToggle,
		PlaybackUp:     v.PlaybackUp,
		PlaybackDown:   v.PlaybackDown,
		CaptureToggle:  v.CaptureToggle,
		CaptureUp:      v.CaptureUp,
		CaptureDown:    v.CaptureDown,
	}
}

// barHeight is the font height plus vertical padding, in buffer pixels.
func barHeight(face fonts.Face, cfg *config.Config) int {
	return face.Metrics().Height + 2*cfg.VerticalPadding*cfg.BufferScale
}

// reload applies a changed config file. Settings that fix the bar's
// shape (tags, font, scale) need a restart and make the reload fail.
func (a *app) reload(ctx context.Context) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	a.opts.applyOverrides(cfg)
	switch {
	case len(cfg.Tags) != len(a.cfg.Tags):
		return fmt.Errorf("tag count changed from %d to %d, restart to apply", len(a.cfg.Tags), len(cfg.Tags))
	case cfg.Font != a.cfg.Font || cfg.BufferScale != a.cfg.BufferScale || cfg.VerticalPadding != a.cfg.VerticalPadding:
		return fmt.Errorf("font or scale changed, restart to apply")
	}
	pal, err := cfg.Palette()
	if err != nil {
		return err
	}
	a.renderer.SetPalette(pal)
	a.renderer.SetOptions(renderOptions(cfg))
	a.router.FloatingLayout = cfg.Floating()
	a.router.Volume = volumeCommands(cfg)
	a.handler.Parser = markup.NewParser(a.face, pal.Inactive)
	a.cfg = cfg
	pslog.Ctx(ctx).Debug("palette applied",
		"theme", cfg.Theme,
		"time", pairHex(pal.Time),
		"active", pairHex(pal.Active),
		"occupied", pairHex(pal.Occupied),
		"inactive", pairHex(pal.Inactive),
		"urgent", pairHex(pal.Urgent),
		"middle", pairHex(pal.Middle),
		"middle_sel", pairHex(pal.MiddleSel),
	)
	return nil
}

func pairHex(p colors.Pair) string {
	return colors.Hex(p.Fg) + "/" + colors.Hex(p.Bg)
}

func newBackend(opts *options, tags int) (backend.Backend, error) {
	switch opts.backend {
	case "headless":
		return headless.New(headless.Options{
			Outputs:     opts.outputs,
			TagCount:    tags,
			SnapshotDir: opts.snapshots,
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", errUnknownBackend, opts.backend)
}

// reloads merges config file changes and SIGUSR1 into one signal.
func reloads(ctx context.Context, path string) <-chan struct{} {
	log := pslog.Ctx(ctx)
	out := make(chan struct{}, 1)
	changed, err := config.Watch(ctx, path)
	if err != nil {
		log.Warn("config watcher unavailable", "path", path, "err", err)
	}
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	go func() {
		defer signal.Stop(usr1)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changed:
				if !ok {
					changed = nil
					continue
				}
			case <-usr1:
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out
}

func run(ctx context.Context, opts *options) error {
	log := pslog.Ctx(ctx)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.applyOverrides(cfg)
	pal, err := cfg.Palette()
	if err != nil {
		return err
	}

	face, err := fonts.Open(fonts.Options{
		Path: cfg.Font.Path,
		Size: cfg.Font.Size * float64(cfg.BufferScale),
		DPI:  cfg.Font.DPI,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	st := &stats.GlobalStats{}
	var mixer audio.Mixer = audio.Static{}
	if cfg.HasModule(config.ModuleVolume) {
		amixer := audio.NewAmixer(cfg.Volume.PlaybackControl, cfg.Volume.CaptureControl, cfg.Interval)
		go amixer.Run(ctx)
		mixer = amixer
	}
	renderer := render.New(layout.NewEngine(face, measureCacheSize), pal, renderOptions(cfg), st, mixer)

	be, err := newBackend(opts, len(cfg.Tags))
	if err != nil {
		return err
	}
	defer be.Close()

	dir, err := paths.EnsureRuntimeDir()
	if err != nil {
		return err
	}
	server := daemon.NewServer(dir)
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer server.Stop()
	log.Info("dwlb started", "socket", server.SocketPath(), "backend", opts.backend, "config", opts.configPath)

	reg := bar.NewRegistry()
	a := &app{
		opts:     opts,
		cfg:      cfg,
		face:     face,
		renderer: renderer,
		router:   &click.Router{FloatingLayout: cfg.Floating(), Volume: volumeCommands(cfg)},
		handler: &daemon.Handler{
			Registry: reg,
			Backend:  be,
			Parser:   markup.NewParser(face, pal.Inactive),
		},
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	l := &loop.Loop{
		Backend:  be,
		Registry: reg,
		Renderer: renderer,
		Router:   a.router,
		Spawner:  click.ShellSpawner{},
		Handler:  a.handler,
		Messages: server.Messages(),
		Ticks:    ticker.C,
		Sampler:  &stats.PSUtil{Interface: cfg.NetInterface, Sensor: cfg.TempSensor},
		Stats:    st,
		Mixer:    mixer,
		Reload:   reloads(ctx, opts.configPath),
		OnReload: a.reload,
		Opts: loop.Options{
			Tags:           len(cfg.Tags),
			Height:         barHeight(face, cfg),
			Hidden:         cfg.Hidden,
			Bottom:         cfg.Bottom,
			MaxBufferBytes: cfg.MaxBufferBytes,
		},
	}
	return l.Run(ctx)
}

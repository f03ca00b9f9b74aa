// Command cubesculpt runs a cube sculpting session on the desktop simulator or replays a
// scripted session headless.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinzhu/copier"

	"cubesculpt/internal/app"
	"cubesculpt/internal/commands"
	"cubesculpt/internal/config"
	"cubesculpt/internal/desktop"
	"cubesculpt/internal/env"
	"cubesculpt/internal/logger"
	"cubesculpt/internal/replay"
	"cubesculpt/internal/world"
	"cubesculpt/internal/xr"
)

func main() {
	if _, err := env.Load(env.DefaultPath); err != nil {
		fmt.Fprintln(os.Stderr, "cubesculpt: reading .env:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := commands.NewRegistry("run")
	registerCommands(ctx, reg)
	if err := reg.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, commands.ErrUnknown) {
			reg.Usage(os.Stderr)
		}
		fmt.Fprintln(os.Stderr, "cubesculpt:", err)
		os.Exit(1)
	}
}

// sessionFlags are shared by run and replay.
type sessionFlags struct {
	config  *string
	runtime *string
	script  *string
}

func addSessionFlags(fs *flag.FlagSet, withScript bool) sessionFlags {
	f := sessionFlags{
		config:  fs.String("config", defaultConfigPath(), "config file"),
		runtime: fs.String("runtime", "", "runtime: desktop or replay (overrides the config)"),
	}
	if withScript {
		f.script = fs.String("script", "", "replay script (overrides the config)")
	}
	return f
}

func defaultConfigPath() string {
	if p := os.Getenv(config.EnvConfig); p != "" {
		return p
	}
	return config.ConfigPath
}

// resolve loads the config file, then applies environment and flag overrides in that order.
func (f sessionFlags) resolve() (config.Config, error) {
	cfg, err := config.Load(*f.config)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if *f.runtime != "" {
		cfg.Runtime = *f.runtime
	}
	if f.script != nil && *f.script != "" {
		cfg.Replay.Script = *f.script
	}
	return cfg, cfg.Validate()
}

func registerCommands(ctx context.Context, reg *commands.Registry) {
	runFS := flag.NewFlagSet("run", flag.ContinueOnError)
	runFlags := addSessionFlags(runFS, true)
	reg.Register("run", "run a sculpting session (default)", runFS, func(args []string) error {
		cfg, err := runFlags.resolve()
		if err != nil {
			return err
		}
		return runSessions(ctx, cfg)
	})

	replayFS := flag.NewFlagSet("replay", flag.ContinueOnError)
	replayFlags := addSessionFlags(replayFS, false)
	reg.Register("replay", "replay a scripted session: replay <script.yaml>", replayFS, func(args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("replay: want exactly one script, got %d arguments", len(args))
		}
		cfg, err := replayFlags.resolve()
		if err != nil {
			return err
		}
		cfg.Runtime = config.RuntimeReplay
		cfg.Replay.Script = args[0]
		if cfg.Supervisor.MaxAttempts == 0 {
			cfg.Supervisor.MaxAttempts = 1
		}
		return runSessions(ctx, cfg)
	})

	configFS := flag.NewFlagSet("config", flag.ContinueOnError)
	path := configFS.String("config", defaultConfigPath(), "config file to write")
	force := configFS.Bool("force", false, "overwrite an existing file")
	reg.Register("config", "config init: write the default config file", configFS, func(args []string) error {
		if len(args) != 1 || args[0] != "init" {
			return fmt.Errorf("config: unknown action %v (want init)", args)
		}
		if _, err := os.Stat(*path); err == nil && !*force {
			return fmt.Errorf("%s already exists (use -force to overwrite)", *path)
		}
		if err := config.Save(*path, config.Default()); err != nil {
			return err
		}
		fmt.Println("wrote", *path)
		return nil
	})
}

func runSessions(ctx context.Context, cfg config.Config) error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	l, err := logger.New(cfg.Log.File, level)
	if err != nil {
		return err
	}
	defer l.Close()
	log := l.Logger
	log.Info("starting", "runtime", cfg.Runtime, "log", cfg.Log.File)

	sup := &supervisor{
		opts:        app.Options{Near: cfg.Session.Near, Far: cfg.Session.Far},
		backoff:     cfg.Supervisor.Backoff,
		maxAttempts: cfg.Supervisor.MaxAttempts,
		log:         log,
	}
	switch cfg.Runtime {
	case config.RuntimeReplay:
		script, err := replay.Load(cfg.Replay.Script)
		if err != nil {
			return err
		}
		sup.open = replayOpener(script, cfg.Replay, log)
		sup.report = func(a *app.App) { logWorld(log, a.World()) }
	default:
		sup.open = desktopOpener(cfg.Desktop, l)
	}
	return sup.run(ctx)
}

func replayOpener(script *replay.Script, cfg config.Replay, log *slog.Logger) opener {
	return func(ctx context.Context) (*session, error) {
		rt := replay.New(script, replay.Options{Hz: cfg.Hz, Realtime: cfg.Realtime}, log)
		return &session{
			rt:       &interruptible{Runtime: rt, ctx: ctx},
			finished: rt.Done,
			close:    func() error { return nil },
		}, nil
	}
}

// interruptible reports ctx cancellation to the session as instance loss, the way the
// desktop runtime does, so a long realtime replay stops on a signal.
type interruptible struct {
	*replay.Runtime
	ctx  context.Context
	lost bool
}

func (r *interruptible) PollEvent() (xr.Event, bool) {
	if !r.lost && r.ctx.Err() != nil {
		r.lost = true
		r.Push(xr.Event{Type: xr.EventInstanceLossPending, Time: r.Now()})
	}
	return r.Runtime.PollEvent()
}

func desktopOpener(cfg config.Desktop, l *logger.Logger) opener {
	return func(ctx context.Context) (*session, error) {
		opts, err := desktopOptions(cfg, l.Lines)
		if err != nil {
			return nil, err
		}
		rt, err := desktop.New(ctx, opts, l.Logger)
		if err != nil {
			return nil, err
		}
		return &session{rt: rt, finished: rt.Quit, close: rt.Close}, nil
	}
}

// desktopOptions copies the window settings field by field; zero values are copied too.
func desktopOptions(cfg config.Desktop, lines func() []string) (desktop.Options, error) {
	var opts desktop.Options
	if err := copier.Copy(&opts, &cfg); err != nil {
		return opts, fmt.Errorf("desktop options: %w", err)
	}
	opts.LogLines = lines
	return opts, nil
}

// logWorld writes a summary of the sculpted world.
func logWorld(log *slog.Logger, w *world.World) {
	log.Info("world", "cubes", w.Len())
	for _, id := range xr.Hands {
		h := w.Hand(id)
		log.Info("hand", "hand", id, "color", h.Color.Hex(), "scale", h.Scale, "type", h.Type)
	}
	for i, c := range w.Cubes() {
		log.Debug("cube", "index", i, "at", c.Translation, "scale", c.Scale, "color", c.Color.Hex(), "type", c.Type)
	}
}

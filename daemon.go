package main

import (
	"codeberg.org/smarttype/smarttype/pkg/config"
	"codeberg.org/smarttype/smarttype/pkg/correctionstore"
	"codeberg.org/smarttype/smarttype/pkg/correctionstore/memory"
	"codeberg.org/smarttype/smarttype/pkg/correctionstore/sqlite"
	"codeberg.org/smarttype/smarttype/pkg/inputdev"
	"codeberg.org/smarttype/smarttype/pkg/oracle"
	"codeberg.org/smarttype/smarttype/pkg/smarttype"
	"context"
	"errors"
	"fmt"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

type historyStore interface {
	smarttype.CorrectionStore
	Close() error
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	table, err := newOracle(cfg)
	if err != nil {
		return fmt.Errorf("load typos: %w", err)
	}
	enabled := atomic.NewBool(cfg.Enabled)

	store, err := openHistory(cfg, log.Named("history"))
	if err != nil {
		return err
	}
	defer store.Close()
	recorder := correctionstore.NewAsyncRecorder(store, correctionstore.DefaultQueueSize, log.Named("history"))

	devices, err := inputdev.NewRegistry(cfg.IgnoreDevices, log.Named("registry")).Discover()
	if err != nil {
		return fmt.Errorf("discover devices: %w", err)
	}
	if len(devices) == 0 {
		return inputdev.ErrNoDevices
	}

	engine := smarttype.NewEngine(
		inputdev.Sources(devices),
		table,
		inputdev.VirtualKeyboardFactory,
		enabled,
		smarttype.Options{
			IdleTimeout:    cfg.IdleTimeout,
			KeystrokeDelay: cfg.KeystrokeDelay,
			Recorder:       recorder,
		},
		log.Named("engine"),
	)
	defer engine.Close()

	watcher, err := config.NewWatcher(cfgPath, log.Named("config"))
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	r := &reloader{
		path:    cfgPath,
		startup: cfg,
		current: cfg,
		table:   table,
		enabled: enabled,
		engine:  engine,
		log:     log.Named("reload"),
	}

	log.Infow("started smarttype",
		"version", Version,
		"devices", len(devices),
		"enabled", cfg.Enabled,
		"typos", table.Len(),
	)

	errChan := make(chan error, 5)
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		err := engine.Run(ctx)
		switch {
		case err == nil:
			// Nothing left to read from. Keep serving reloads and signals until
			// asked to stop; a restart picks up replugged devices.
			log.Warn("all input devices are gone, restart smarttype to pick up new ones")
		default:
			errChan <- fmt.Errorf("run engine: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := recorder.SaveLooper(ctx)
		if err != nil {
			errChan <- fmt.Errorf("save corrections: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := watcher.Run(ctx, r.apply)
		if err != nil {
			errChan <- fmt.Errorf("watch config: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := reloadOnHangup(ctx, r.reload)
		if err != nil {
			errChan <- fmt.Errorf("handle SIGHUP: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx, engine)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	err = <-errChan
	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
		wg.Wait()
		log.Infow("session finished", "corrections", engine.Stats().Corrections)
		return nil
	case err != nil:
		stop()
		wg.Wait()
		return err
	}

	return nil
}

func openHistory(cfg *config.Config, log *zap.SugaredLogger) (historyStore, error) {
	if !cfg.History {
		return memory.NewCorrectionStore(), nil
	}

	path, err := historyPath()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewCorrectionStore(path, log)
	if err != nil {
		return nil, fmt.Errorf("open correction history: %w", err)
	}
	return store, nil
}

// reloader applies new config versions to the running daemon. Settings that
// only take effect on startup are reported and left alone.
type reloader struct {
	lock sync.Mutex
	path string

	// startup holds the settings that need a restart, current what was
	// applied last.
	startup *config.Config
	current *config.Config

	table   *oracle.Table
	enabled *atomic.Bool
	engine  *smarttype.Engine

	log *zap.SugaredLogger
}

func (r *reloader) reload() {
	cfg, err := config.Read(r.path)
	if err != nil {
		r.log.Warnw("ignoring SIGHUP, config is not usable", "path", r.path, "error", err)
		return
	}
	r.apply(cfg)
}

func (r *reloader) apply(cfg *config.Config) {
	r.lock.Lock()
	defer r.lock.Unlock()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReloading)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyReady) }()

	applied := *cfg
	custom, err := typos(cfg)
	if err != nil {
		r.log.Warnw("keeping previous typo table", "error", err)
		r.table.SetMinWordLength(cfg.MinWordLength)
		applied.TypoFiles = r.current.TypoFiles
		applied.CustomTypos = r.current.CustomTypos
	} else {
		r.table.Swap(custom, cfg.MinWordLength)
	}

	if cfg.Enabled != r.current.Enabled {
		// text typed before the switch must not be corrected after it
		r.engine.ResetBuffer()
	}
	r.enabled.Store(cfg.Enabled)
	r.engine.SetIdleTimeout(cfg.IdleTimeout)

	if cfg.KeystrokeDelay != r.startup.KeystrokeDelay || cfg.History != r.startup.History || !sameStrings(cfg.IgnoreDevices, r.startup.IgnoreDevices) {
		r.log.Info("keystroke_delay, history and ignore_devices take effect after a restart")
	}

	r.current = &applied
	r.log.Infow("config applied", "enabled", cfg.Enabled, "typos", r.table.Len())
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reloadOnHangup(ctx context.Context, reload func()) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-hup:
			reload()
		}
	}
}

func systemdNotifyLoop(ctx context.Context, engine *smarttype.Engine) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, fmt.Sprintf("STATUS=Correcting typos on %d input devices", engine.Stats().Devices))

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

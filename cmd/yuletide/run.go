package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/yuletide/internal/app"
	"github.com/ayusman/yuletide/internal/config"
	"github.com/ayusman/yuletide/internal/dashboard"
	"github.com/ayusman/yuletide/internal/hook"
	"github.com/ayusman/yuletide/internal/server"
	"github.com/ayusman/yuletide/internal/store"
	"github.com/ayusman/yuletide/internal/tray"
)

type runOptions struct {
	configPath string
	tui        bool
	tray       bool
}

func newRunCmd(logger func() *log.Logger) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the camera, the scene and the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			l := logger()
			if opts.tui {
				// The dashboard owns the terminal.
				l.SetOutput(io.Discard)
			}
			return run(cmd.Context(), opts, l)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.yuletide/config.toml)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show the terminal dashboard")
	cmd.Flags().BoolVar(&opts.tray, "tray", false, "show the system tray menu")
	cmd.MarkFlagsMutuallyExclusive("tui", "tray")
	return cmd
}

func run(ctx context.Context, opts runOptions, logger *log.Logger) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Server.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hooks := hook.NewManager(cfg.Hooks.Dir)
	if err := hooks.Discover(); err != nil {
		logger.Warn("hook discovery failed", "dir", cfg.Hooks.Dir, "err", err)
	}
	for _, h := range hooks.List() {
		logger.Info("hook loaded", "name", h.Manifest.Name, "events", h.Manifest.Events)
	}

	a := app.New(app.Options{
		Settings: cfg,
		Store:    st,
		Hooks:    hook.NewDispatcher(hooks, hook.NewExecutor(cfg.Hooks.Timeout), logger),
		Logger:   logger,
	})
	defer a.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	webDir := cfg.Server.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.Server.DataDir)
	}
	if webDir != "" {
		logger.Info("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
		Logger:    logger,
		SceneFPS:  server.DefaultSceneFPS,
	})
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(ctx, cfg.Server.Addr)
		cancel()
	}()

	// A failed Init leaves the server up so the journal explains why.
	go func() {
		if err := a.Init(ctx); err != nil {
			logger.Error("initialization failed", "err", err)
			return
		}
		if err := a.Start(ctx); err != nil {
			logger.Error("start failed", "err", err)
		}
	}()

	switch {
	case opts.tui:
		if err := dashboard.Run(a); err != nil {
			return err
		}
		cancel()
	case opts.tray:
		t := tray.New(a.Machine().Snapshot)
		t.OnToggle(a.SetEnabled)
		t.OnOpen(func() { openBrowser(viewerURL(cfg.Server.Addr), logger) })
		t.OnQuit(cancel)
		t.Run(ctx)
		cancel()
	default:
		<-ctx.Done()
	}

	if err := <-srvErr; err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string, logger *log.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("opening browser", "url", url, "err", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and dataDir/web, returning the
// first existing directory or an empty string.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

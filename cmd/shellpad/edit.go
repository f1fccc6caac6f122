package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/shellpad/internal/action"
	"github.com/dshills/shellpad/internal/asset"
	"github.com/dshills/shellpad/internal/backend"
	"github.com/dshills/shellpad/internal/config"
	"github.com/dshills/shellpad/internal/coordinator"
	"github.com/dshills/shellpad/internal/form"
	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/loop"
	"github.com/dshills/shellpad/internal/notify"
	"github.com/dshills/shellpad/internal/panel"
	"github.com/dshills/shellpad/internal/tool"
	"github.com/dshills/shellpad/internal/tui"
)

var (
	editLogFile string
	editGroups  []string
	editSlug    string
)

// panelFields binds each panel kind to the form field carrying its code.
var panelFields = []struct {
	kind  backend.Kind
	field string
}{
	{backend.KindMarkup, form.FieldHTML},
	{backend.KindStyle, form.FieldCSS},
	{backend.KindScript, form.FieldJS},
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the fiddle workspace in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logOut := io.Discard
		if editLogFile != "" {
			f, err := os.OpenFile(editLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer f.Close()
			logOut = f
		}
		lcfg := cfg.LoggerConfig()
		lcfg.Output = logOut
		logger := logging.New(lcfg)

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("creating screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("initializing screen: %w", err)
		}
		defer screen.Fini()

		ws, err := buildWorkspace(cfg, screen, logger)
		if err != nil {
			return err
		}
		defer ws.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return ws.ui.Run(ctx)
	},
}

func init() {
	editCmd.Flags().StringVar(&editLogFile, "log-file", "", "write logs to this file")
	editCmd.Flags().StringSliceVar(&editGroups, "library-groups", []string{"1", "2"}, "library groups cycled by Alt+G")
	editCmd.Flags().StringVar(&editSlug, "slug", "", "fiddle to update on save")
	rootCmd.AddCommand(editCmd)
}

// workspace is the wired editor.
type workspace struct {
	ui   *tui.UI
	host *tool.Host
	loop *loop.Loop
	sub  *notify.Subscription
}

func (w *workspace) close() {
	w.sub.Unsubscribe()
	w.loop.Close()
	if err := w.host.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: closing tool host: %v\n", err)
	}
}

// buildWorkspace wires every component of the editor onto screen.
func buildWorkspace(cfg *config.Config, screen tcell.Screen, logger *logging.Logger) (*workspace, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, fmt.Errorf("request timeout: %w", err)
	}
	keymap, err := cfg.Keymap()
	if err != nil {
		return nil, err
	}

	lp := loop.New(0)
	lp.PanicHandler = func(r any) { logger.Error("panic on ui loop: %v", r) }

	host := tool.NewHost(tool.WithCallTimeout(timeout), tool.WithLogger(logger))
	fetcher, err := assetFetcher(cfg, timeout)
	if err != nil {
		return nil, err
	}
	loader := asset.NewLoader(fetcher, host,
		asset.WithPaths(cfg.AssetPaths()),
		asset.WithPoster(lp),
		asset.WithTimeout(timeout),
		asset.WithLogger(logger),
	)

	coord := coordinator.New(keymap, coordinator.WithLogger(logger))
	reg := backend.DefaultRegistry()
	fm := form.New()
	langs := cfg.PanelLanguages()
	for _, pf := range panelFields {
		p := panel.New(pf.kind, reg, panel.WithLogger(logger))
		p.Rebind(langs[string(pf.kind)])
		if err := coord.Register(p); err != nil {
			return nil, err
		}
		fm.BindSource(pf.field, p)
	}
	coord.Seal()
	if editSlug != "" {
		fm.Set(form.FieldSlug, editSlug)
	}

	sub, err := form.NewHTTPSubmitter(cfg.Server.BaseURL, timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("creating submitter: %w", err)
	}
	notifier := notify.New()

	ui := tui.New(screen, tui.Options{
		Coordinator:   coord,
		Form:          fm,
		Loop:          lp,
		Logger:        logger,
		LibraryGroups: editGroups,
	})
	pipe := action.New(action.Deps{
		Coordinator: coord,
		Form:        fm,
		Loader:      loader,
		Tools:       host,
		Submitter:   sub,
		Presenter:   ui,
		Confirmer:   ui,
		Navigator:   ui,
		Notifier:    notifier,
		Poster:      lp,
		Logger:      logger,
	}, cfg.PipelineSettings())
	ui.SetPipeline(pipe)
	pipe.Attach()

	return &workspace{
		ui:   ui,
		host: host,
		loop: lp,
		sub:  notifier.Subscribe(ui.Observe),
	}, nil
}

// assetFetcher returns the fetcher for the configured asset source.
func assetFetcher(cfg *config.Config, timeout time.Duration) (asset.Fetcher, error) {
	switch cfg.Assets.Source {
	case config.AssetsEmbedded, "":
		return asset.FSFetcher{FS: tool.DefaultAssets()}, nil
	case config.AssetsDir:
		return asset.FSFetcher{FS: os.DirFS(cfg.Assets.Dir)}, nil
	case config.AssetsHTTP:
		return asset.NewHTTPFetcher(cfg.Assets.BaseURL, timeout), nil
	default:
		return nil, fmt.Errorf("unknown asset source %q", cfg.Assets.Source)
	}
}

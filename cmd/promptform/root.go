package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-promptform"
	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/orchestrator"
	"github.com/goliatone/go-promptform/pkg/render"
	"github.com/goliatone/go-promptform/pkg/render/template/pongo"
)

// app carries the global flags and the logger built from them.
type app struct {
	configPath   string
	storeDSN     string
	templatesDir string
	debug        bool
	logger       *zap.Logger
	renderers    *render.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "promptform",
		Short:        "Style-driven prompt builder for image generation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "registry document (YAML or JSON); the embedded catalog when empty")
	flags.StringVar(&a.storeDSN, "store", defaultStoreDSN(), "autosave storage DSN (memory://, file://, sqlite://, postgres://)")
	flags.StringVar(&a.templatesDir, "templates", "", "directory whose markdown.tpl or html.tpl override the embedded prompt templates")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		stylesCmd(a),
		presetsCmd(a),
		synthesizeCmd(a),
		exportCmd(a),
		importCmd(a),
		editCmd(a),
		watchCmd(a),
		serveCmd(a),
		resetCmd(a),
		versionCmd(),
	)
	return root
}

func (a *app) initLogger() error {
	if a.logger != nil {
		return nil
	}
	cfg := zap.NewProductionConfig()
	if a.debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *app) registry() (*config.Registry, error) {
	reg, err := promptform.LoadRegistry(a.configPath)
	if err != nil {
		return nil, err
	}
	for _, issue := range reg.Issues {
		a.log().Warn("registry issue", zap.String("issue", issue.String()))
	}
	return reg, nil
}

// formats builds the prompt format registry once, honoring --templates.
func (a *app) formats() (*render.Registry, error) {
	if a.renderers != nil {
		return a.renderers, nil
	}
	renderers, err := render.NewDefaultRegistry(pongo.WithDir(a.templatesDir))
	if err != nil {
		return nil, err
	}
	a.renderers = renderers
	return renderers, nil
}

func (a *app) options() ([]orchestrator.Option, error) {
	renderers, err := a.formats()
	if err != nil {
		return nil, err
	}
	return []orchestrator.Option{
		orchestrator.WithLogger(a.log()),
		orchestrator.WithVersion(version),
		orchestrator.WithRenderers(renderers),
		orchestrator.WithErrorHandler(func(err error) {
			a.log().Warn("form error", zap.Error(err))
		}),
	}, nil
}

// session opens the configured store and restores the saved form.
func (a *app) session(ctx context.Context) (*promptform.Session, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	return promptform.Open(ctx, reg, a.storeDSN, opts...)
}

// scratch builds a controller that never persists.
func (a *app) scratch(ctx context.Context) (*orchestrator.Controller, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	return promptform.NewController(ctx, reg, opts...)
}

func defaultStoreDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return "file://" + filepath.Join(dir, "promptform")
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to the command output when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := io.WriteString(out, "\n")
			return err
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

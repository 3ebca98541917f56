// Package cli is the flavorlab command line. Every command runs against a
// ledger.Service built from the loaded configuration.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"flavorlab/internal/config"
	"flavorlab/internal/db"
	"flavorlab/internal/db/mock"
	"flavorlab/internal/ledger"
	applog "flavorlab/internal/log"
	"flavorlab/internal/store"
	"flavorlab/models"
)

// Opener connects to the database described by cfg. The returned func
// releases it.
type Opener func(ctx context.Context, cfg config.Config) (*store.Store, func() error, error)

// OpenDatabase opens the configured database, or a seeded in-memory one when
// the mock is enabled.
func OpenDatabase(ctx context.Context, cfg config.Config) (*store.Store, func() error, error) {
	var (
		database *gorm.DB
		err      error
	)
	if cfg.Database.UseMock {
		database, err = mock.New(ctx)
	} else {
		database, err = db.Configure(cfg.Database)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return store.New(database), func() error { return db.Close(database) }, nil
}

type app struct {
	open       Opener
	configFile string
	jsonOutput bool

	cfg     config.Config
	service *ledger.Service
	closeDB func() error
}

type Option func(*app)

// WithOpener replaces the database opener.
func WithOpener(open Opener) Option {
	return func(a *app) {
		if open != nil {
			a.open = open
		}
	}
}

func newApp(opts ...Option) *app {
	a := &app{open: OpenDatabase}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewRootCmd creates the flavorlab root command.
func NewRootCmd(opts ...Option) *cobra.Command {
	return newRootCmd(newApp(opts...))
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flavorlab",
		Short: "Flavorlab keeps the formulation and production ledger",
		Long: `Flavorlab keeps the formulation and production ledger for a soda lab.
It resolves regulatory limits, checks recipes, scales and costs batches,
tracks compound stock and prints nutrition labels.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to a YAML config file (overrides FLAVORLAB_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&a.jsonOutput, "json", "j", false, "Output in JSON format")

	cmd.AddCommand(
		newLimitCmd(a),
		newValidateCmd(a),
		newHistoryCmd(a),
		newBatchCmd(a),
		newInventoryCmd(a),
		newLabelCmd(a),
		newTasteCmd(a),
		newSettingsCmd(a),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, opts ...Option) int {
	a := newApp(opts...)
	root := newRootCmd(a)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); closeErr != nil {
		applog.Warn(ctx, "closing database failed", "error", closeErr)
	}
	if err != nil {
		if a.jsonOutput {
			_ = printJSON(os.Stdout, map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || a.service != nil {
		return nil
	}

	path := a.configFile
	if path == "" {
		path = os.Getenv("FLAVORLAB_CONFIG")
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}

	ctx := applog.WithRunID(cmd.Context(), uuid.NewString())
	cmd.SetContext(ctx)

	st, closeDB, err := a.open(ctx, cfg)
	if err != nil {
		return err
	}
	applog.Debug(ctx, "command started", "command", cmd.CommandPath())

	a.cfg = cfg
	a.closeDB = closeDB
	a.service = ledger.New(st, ledger.WithContainerML(cfg.Production.LabelContainerML))
	return nil
}

func (a *app) close() error {
	if a.closeDB == nil {
		return nil
	}
	closeDB := a.closeDB
	a.closeDB = nil
	return closeDB()
}

// render writes value as JSON when --json is set and calls text otherwise.
func (a *app) render(cmd *cobra.Command, value any, text func(w io.Writer) error) error {
	if a.jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"result": 1,
			"value":  value,
		})
	}
	return text(cmd.OutOrStdout())
}

func printJSON(w io.Writer, data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// versionFlag parses an optional --version value. An empty value means the
// latest version.
func versionFlag(value string) (*models.Version, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	v, err := models.ParseVersion(value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Sena-ops/sentrius/internal/config"
	"github.com/Sena-ops/sentrius/internal/logging"
)

// app is the state shared by every subcommand once the root pre-run has
// resolved configuration and logging.
type app struct {
	v   *viper.Viper
	cfg config.Config
	log *zap.SugaredLogger

	configPath string
}

// NewRootCmd builds a fresh command tree. Execute uses it; tests build their
// own so flag state never leaks between runs.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New(), log: zap.NewNop().Sugar()}

	root := &cobra.Command{
		Use:   "sentrius",
		Short: "Sentrius - filter, aggregate and export security scan findings",
		Long: `Sentrius loads findings from a scan service or from scanner reports,
narrows them by severity, tool and free-text search, counts them per severity
and exports them as CSV, SARIF or to a remote log ingestion endpoint.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $HOME/.sentrius.yaml)")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	root.PersistentFlags().String("mode", "", "Data source: demo or live (overrides config)")
	_ = a.v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	_ = a.v.BindPFlag("mode", root.PersistentFlags().Lookup("mode"))

	root.AddCommand(
		newScanCmd(a),
		newLoadCmd(a),
		newExportCmd(a),
		newToolsCmd(a),
	)
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(NewRootCmd().ExecuteContext(ctx))
}

func (a *app) init() error {
	if err := config.Read(a.v, a.configPath); err != nil {
		return err
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	l, err := logging.InitLogger(cfg.Debug)
	if err != nil {
		return err
	}
	a.log = l
	a.log.Debugw("configuration loaded", "mode", cfg.Mode, "backend", cfg.Backend.URL, "sink", cfg.Export.Sink, "file", a.v.ConfigFileUsed())
	return nil
}

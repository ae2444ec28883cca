package commands

import (
	"github.com/spf13/cobra"

	"kyro/internal/app"
)

var (
	wire *app.Wire

	logLevel     string
	maxSkipped   int
	maxSkipAhead int
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kyro",
		Short:        "End-to-end encrypted collaboration channels",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("max-skipped") {
				cfg.MaxSkipped = maxSkipped
			}
			if flags.Changed("max-skip-ahead") {
				cfg.MaxSkipAhead = maxSkipAhead
			}
			wire, err = app.NewWire(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	root.PersistentFlags().IntVar(&maxSkipped, "max-skipped", 1000, "skipped-key cache capacity")
	root.PersistentFlags().IntVar(&maxSkipAhead, "max-skip-ahead", 65536, "largest gap a single message may skip")

	root.AddCommand(rootKeyCmd(), sealCmd(), openCmd(), demoCmd())
	return root
}

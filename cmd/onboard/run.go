package main

import (
	"log/slog"
	"os"

	"github.com/aretw0/onboard/internal/cli"
	"github.com/aretw0/onboard/internal/config"
	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultSessionID = "local"

var runCmd = &cobra.Command{
	Use:   "run [session-id]",
	Short: "Run the registration wizard in the terminal",
	Long: `Walks the registration wizard interactively. Passwords and banking details
are read without echo when stdin is a terminal. Use --resume with a durable
store to continue a wizard left mid-way.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		resume, _ := cmd.Flags().GetBool("resume")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		// Logs go to stderr only when asked for, so they do not interleave
		// with the prompt.
		logger := logging.NewNop()
		if debug {
			logger = logging.New(slog.LevelDebug)
		}

		sessionID := defaultSessionID
		if len(args) > 0 {
			sessionID = args[0]
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Stop()

		a, err := build(sc, cfg, logger, modeTerminal)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := []cli.Option{
			cli.WithInput(cmd.InOrStdin()),
			cli.WithOutput(cmd.OutOrStdout()),
			cli.WithLogger(logger),
			cli.WithResume(resume),
		}
		if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
			opts = append(opts, cli.WithSecretReader(cli.TerminalSecret(fd)), cli.WithRenderer(tui.NewRenderer()))
		}

		if !noBanner {
			tui.PrintBanner(tui.NewOutput(cmd.OutOrStdout()))
		}
		return cli.NewPrompt(a.service.Host, opts...).Run(sc, sessionID)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("debug", false, "Write debug logs to stderr")
	runCmd.Flags().Bool("resume", false, "Continue a stored wizard instead of starting over")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")
	runCmd.Flags().String("preview-dir", "", "Directory for image previews (default: a temporary one)")
}

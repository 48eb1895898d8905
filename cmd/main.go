package main

import (
	"fmt"
	"io"
	"os"

	"github.com/caio-ishikawa/bountyboard/shared/client"
	"github.com/caio-ishikawa/bountyboard/shared/config"
	"github.com/caio-ishikawa/bountyboard/shared/logging"
	"github.com/caio-ishikawa/bountyboard/shared/recon"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg       config.Config
	apiClient client.Client
	logger    = zerolog.Nop()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "bountyboard",
	Short: "Track bug bounty programs, targets and vulnerabilities",
	Long: `bountyboard is a terminal dashboard for a bug bounty recon API. Run it without a
subcommand for the interactive dashboard, or use the subcommands for scripting.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().String("api-url", config.DefaultAPIURL, "Base URL of the recon API")
	rootCmd.PersistentFlags().String("theme", config.DefaultTheme, "Dashboard theme (everforest, purple, midnight)")
	rootCmd.PersistentFlags().Int("timeout", config.DefaultTimeout, "Request timeout in seconds")
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		loaded.Client.APIURL, _ = flags.GetString("api-url")
	}
	if flags.Changed("theme") {
		loaded.Client.Theme, _ = flags.GetString("theme")
	}
	if flags.Changed("timeout") {
		loaded.Client.Timeout, _ = flags.GetInt("timeout")
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	fileLogger, closer, err := logging.NewFile(cfg.Client.LogFile, cfg.LogLevel)
	if err != nil {
		pterm.Warning.Printfln("Logging disabled: %s", err.Error())
	} else {
		logger = fileLogger
		logCloser = closer
	}

	apiClient = client.New(cfg.Client.APIURL, cfg.RequestTimeout())

	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	fingerprinter, err := recon.NewFingerprinter(cfg.RequestTimeout())
	if err != nil {
		logger.Error().Err(err).Msg("Fingerprinting disabled")
	}

	cli := NewCLI(apiClient, fingerprinter, themeByName(cfg.Client.Theme), logger)
	if _, err := tea.NewProgram(cli, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("Error rendering dashboard: %w", err)
	}

	return nil
}

func main() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

// closeLog releases the log file whether or not the command succeeded.
func closeLog() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

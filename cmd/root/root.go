// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/internal/config"
	"fjacquet/sms-ledger/internal/container"
	"fjacquet/sms-ledger/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	Bank       string
	User       string
	ConfigFile string
	LogLevel   string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "sms-ledger",
		Short: "Turn Indian bank SMS alerts and PDF statements into categorized transactions.",
		Long: `sms-ledger extracts transactions from pasted bank SMS text and PDF
statements, normalizes and categorizes them, and stores them without
duplicates. It can run as an HTTP upload service or convert files to CSV.`,
		SilenceUsage:      true,
		PersistentPreRunE: initContainer,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer == nil {
				return
			}
			if err := appContainer.Close(); err != nil {
				appContainer.GetLogger().WithError(err).Warn("Failed to close resources")
			}
			appContainer = nil
		},
	}

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file (- for stdin)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output CSV file (default stdout)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Bank, "bank", "b", "", "Bank the input comes from, e.g. HDFC or SBI")
	Cmd.PersistentFlags().StringVar(&SharedFlags.User, "user", "", "User id to import for (default demo user)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches ./config.yaml and ~/.sms-ledger)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Override the configured log level")
}

// LoadConfig reads configuration from the --config file or the default
// locations, then applies flag overrides.
func LoadConfig() (*config.Config, error) {
	config.LoadEnv(logging.NewDiscardLogger())

	var (
		cfg *config.Config
		err error
	)
	if SharedFlags.ConfigFile != "" {
		cfg, err = config.InitializeConfigFromFile(SharedFlags.ConfigFile)
	} else {
		cfg, err = config.InitializeConfig()
	}
	if err != nil {
		return nil, err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func initContainer(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	c, err := container.NewContainer(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	appContainer = c
	return nil
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return appContainer
}

// UserID returns the --user flag or the configured demo user.
func UserID() string {
	if SharedFlags.User != "" {
		return SharedFlags.User
	}
	if appContainer != nil {
		return appContainer.GetConfig().DemoUserID
	}
	return ""
}

// Bank returns the --bank flag or the configured default bank.
func Bank() string {
	if SharedFlags.Bank != "" {
		return SharedFlags.Bank
	}
	if appContainer != nil {
		return appContainer.GetConfig().Ingest.DefaultBank
	}
	return ""
}

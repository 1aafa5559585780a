package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vey/vey-go/internal/config"
	"github.com/vey/vey-go/pkg/vey"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vey",
	Short: "Address validation client",
	Long:  "Validates and normalizes postal addresses against the Vey API, encodes place identifiers, and serves the framework adapters over HTTP.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newClient builds an API client from the loaded configuration.
func newClient(mode string) (vey.Client, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	return vey.NewClient(cfg.Vey.APIKey, cfg.Vey.ClientOptions()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tokentrail",
	Short: "ERC-20 transfer history tracker",
	Long: `tokentrail tracks a watchlist of wallet addresses and retrieves their
ERC-20 transfer history on demand, querying Etherscan first and falling back
to Covalent. Transfer records are fetched fresh every time and never stored;
only the watchlist itself is persisted to PostgreSQL.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

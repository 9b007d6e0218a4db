package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cryptoscope",
	Short: "Inspect API traffic whose payloads are AES encrypted",
	Long: `Cryptoscope collects captured API exchanges and shows their encrypted
headers, query tokens and bodies decrypted with the key of the selected
environment.

Keys come from KEY_<ENV> variables or a YAML/TOML file named by KEYS_FILE.

Examples:
  cryptoscope serve                      # Start the web API and live feed
  cryptoscope decrypt 'q83vASNF...'      # Decrypt one value
  echo '{"a":1}' | cryptoscope encrypt   # Produce a test fixture
  cryptoscope inspect session.har -f payload`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Flags shared by decrypt, encrypt and inspect
var flagEnv string

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagEnv, "env", "e", "", "environment whose key is used (default: KEYS_DEFAULT_ENV)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(inspectCmd)
}

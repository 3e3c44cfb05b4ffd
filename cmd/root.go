/*
Copyright © 2025 vuongle
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docquery-be",
	Short: "Document question answering backend",
	Long: `docquery-be answers natural-language questions about uploaded
documents. Documents are chunked, embedded and indexed per document;
queries are routed to a task-specific response strategy over the
retrieved passages.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	noColor bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:           "skillmap",
	Short:         "Volunteer skill map server and client",
	Long:          "skillmap records volunteering activities, maps them to skills, and gives growth advice.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before environment overrides")

	rootCmd.AddCommand(serveCmd, stopCmd, statusCmd)
	rootCmd.AddCommand(configCmd, classifyCmd, loginCmd, chatCmd, analysisCmd, activityCmd, adminCmd, skillAPICmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// outf writes to the command's stdout.
func outf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

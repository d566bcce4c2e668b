package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "maurodc",
	Short: "Mauro Data Collector",
	Long: `maurodc moves metadata into a Mauro Data Mapper catalog.

  import     write per-column properties from CSV files onto catalog nodes
  extract    read table and column metadata from SQL Server or PostgreSQL
             into a Simple Excel Model workbook
  reformat   turn a "Data Specifications" sheet into a Simple Excel Model

Every run writes a log file under --log-path. The console shows warnings
and errors only, unless --verbose is set.

Exit Codes:
  0  - Success (rows or files may have been skipped, see the log)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration (API URL, API key, config file)
  12 - Source database connection or query failed`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

type globalFlagValues struct {
	verbose    bool
	logLevel   string
	logPath    string
	configPath string
}

var globalFlags globalFlagValues

// Execute runs the root command and reports a failure once on stderr.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.verbose, "verbose", "v", false,
		"Log DEBUG to the log file and INFO to the console")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logLevel, "log-level", "",
		"Log file level: DEBUG|INFO|WARNING|ERROR|CRITICAL (default INFO)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logPath, "log-path", "",
		"Directory for log files (default logs/)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.configPath, "config", "",
		"Path to mauro.yaml or the directory containing it (default: working directory)")
}

// flagChanged reports whether name was set on the command line. It also
// finds persistent flags of parent commands.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunspark/MauroDataCollector/internal/catalog"
	"github.com/Sunspark/MauroDataCollector/internal/config"
	"github.com/Sunspark/MauroDataCollector/internal/files/filesystem"
	"github.com/Sunspark/MauroDataCollector/internal/files/scanner"
	"github.com/Sunspark/MauroDataCollector/internal/importer"
	"github.com/Sunspark/MauroDataCollector/internal/logging"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import entity properties from CSV files into the catalog",
	Long: `Import reads CSV files whose columns describe catalog nodes and writes
each remaining column as a property of the node the row addresses.

Hierarchy columns:
  db, schema, table, field    Address the node as dm:db|dc:schema|dc:table|de:field.
                              Empty or "null" ends the path. --db/--schema/--table/--field
                              replace the file's value for every row.
  description                 Sets the node description.

Every other column is a property. The header names it namespace.name; a
header without a dot uses --default-namespace.

Rows whose node is missing, ambiguous or unreachable are skipped and
logged. Finalised nodes are branched before they are updated.

API key:
  Use $MAURO_API_KEY (or a .env file) rather than --api-key so the key
  stays out of shell history. The key is never read from mauro.yaml.

Examples:
  # One file
  maurodc import --file owners.csv --api-url https://mauro.example.org/api

  # Every .csv in a directory, all rows in one database
  maurodc import --dir ./exports --db Sales

  # Resolve and plan without writing
  maurodc import --dir ./exports --dry-run -v`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

type importFlagValues struct {
	file, dir, extension             string
	db, schema, table, field         string
	apiURL, apiKey                   string
	defaultNamespace                 string
	deleteOnNull, dryRun, classLevel bool
	timeout                          time.Duration
}

var importFlags importFlagValues

func init() {
	rootCmd.AddCommand(importCmd)

	f := importCmd.Flags()
	f.StringVarP(&importFlags.file, "file", "f", "", "Import exactly this file")
	f.StringVarP(&importFlags.dir, "dir", "d", "", "Import every matching file directly inside this directory")
	f.StringVar(&importFlags.extension, "extension", "", "File extension matched by --dir (default .csv)")
	importCmd.MarkFlagsMutuallyExclusive("file", "dir")
	importCmd.MarkFlagsOneRequired("file", "dir")

	f.StringVar(&importFlags.db, "db", "", "Database name for every row")
	f.StringVar(&importFlags.schema, "schema", "", "Schema name for every row")
	f.StringVar(&importFlags.table, "table", "", "Table name for every row")
	f.StringVar(&importFlags.field, "field", "", "Field name for every row")

	f.StringVar(&importFlags.apiURL, "api-url", "", "Catalog API root, ending in /api (or $MAURO_API_URL)")
	f.StringVar(&importFlags.apiKey, "api-key", "", "Catalog API key (prefer $MAURO_API_KEY)")
	f.DurationVar(&importFlags.timeout, "timeout", 0, "Timeout for one catalog request (default 30s)")

	f.StringVar(&importFlags.defaultNamespace, "default-namespace", "",
		"Namespace for property headers without a dot (or $MAURO_DEFAULT_NAMESPACE)")
	f.BoolVar(&importFlags.deleteOnNull, "delete-on-null", false, "Delete a property when its cell is empty or null")
	f.BoolVar(&importFlags.dryRun, "dry-run", false, "Resolve and plan every row but write nothing")
	f.BoolVar(&importFlags.classLevel, "class-level", false, "Allow rows without a field column to address data classes")
}

func runImport(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyImportFlags(cmd, &settings)

	cfg := catalogConfig(settings)
	if err := cfg.Validate(); err != nil {
		return err
	}

	run, err := startLogging("import", settings)
	if err != nil {
		return err
	}
	defer run.Close()
	logger := run.Logger()

	logger.Info("Execution begins",
		zap.String("api_url", settings.APIURL),
		zap.String("api_key", logging.RedactAPIKey(settings.APIKey)),
		zap.String("log_file", run.FilePath()))

	client, err := catalog.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	sel := inputSelection(settings)
	fsProvider := filesystem.NewOSFileSystem()
	im := importer.New(client, scanner.NewScannerWithFS(fsProvider), fsProvider, importOptions(settings), logger)

	ctx, cancel := signalContext()
	defer cancel()

	summary, runErr := im.Run(ctx, sel)
	if err := summary.Print(cmd.OutOrStdout()); err != nil {
		logger.Warn("Failed to print summary", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("Execution ends with error", zap.Error(runErr))
		return runErr
	}
	logger.Info("Execution ends")
	return nil
}

// applyImportFlags overrides settings with every import flag set on the command line.
func applyImportFlags(cmd *cobra.Command, s *config.Settings) {
	if flagChanged(cmd, "api-url") {
		s.APIURL = importFlags.apiURL
	}
	if flagChanged(cmd, "api-key") {
		s.APIKey = importFlags.apiKey
	}
	if flagChanged(cmd, "default-namespace") {
		s.DefaultNamespace = importFlags.defaultNamespace
	}
	if flagChanged(cmd, "delete-on-null") {
		s.DeleteOnNull = importFlags.deleteOnNull
	}
	if flagChanged(cmd, "extension") {
		s.Extension = importFlags.extension
	}
	if flagChanged(cmd, "timeout") {
		s.Timeout = importFlags.timeout
	}
}

func catalogConfig(s config.Settings) catalog.Config {
	return catalog.Config{
		BaseURL:      s.APIURL,
		APIKey:       s.APIKey,
		Timeout:      s.Timeout,
		MaxAttempts:  s.MaxAttempts,
		InitialDelay: s.InitialDelay,
		MaxDelay:     s.MaxDelay,
	}
}

func inputSelection(s config.Settings) mauro.InputSelection {
	if importFlags.file != "" {
		return mauro.SingleFile(importFlags.file)
	}
	return mauro.Directory(importFlags.dir, scanner.NormalizeExtension(s.Extension))
}

func importOptions(s config.Settings) importer.Options {
	return importer.Options{
		Overrides: mauro.Hierarchy{
			DB:     mauro.Coerce(importFlags.db),
			Schema: mauro.Coerce(importFlags.schema),
			Table:  mauro.Coerce(importFlags.table),
			Field:  mauro.Coerce(importFlags.field),
		},
		ClassLevel:       importFlags.classLevel,
		DefaultNamespace: s.DefaultNamespace,
		DeleteOnNull:     s.DeleteOnNull,
		DryRun:           importFlags.dryRun,
	}
}

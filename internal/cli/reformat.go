package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunspark/MauroDataCollector/internal/sheet"
)

var reformatCmd = &cobra.Command{
	Use:   "reformat",
	Short: "Convert a Data Specifications sheet into a Simple Excel Model",
	Long: `Reformat reads the "Data Specifications" sheet of a workbook and writes a
Simple Excel Model with one data model per server.

Required columns:
  ServerName, DatabaseName, schemaName, TableName, TableDesc, ColumnName, ColumnDesc

Cells containing None are treated as empty.

Examples:
  maurodc reformat -i specs.xlsx
  maurodc reformat -i specs.xlsx -o specs_for_mauro.xlsx`,
	Args: cobra.NoArgs,
	RunE: runReformat,
}

var reformatFlags struct {
	input, output string
}

func init() {
	rootCmd.AddCommand(reformatCmd)

	reformatCmd.Flags().StringVarP(&reformatFlags.input, "input", "i", "", "Workbook with a Data Specifications sheet")
	reformatCmd.Flags().StringVarP(&reformatFlags.output, "output", "o", "",
		"Output workbook (default <input name>_ReformedForMauro_<timestamp>.xlsx)")
	_ = reformatCmd.MarkFlagRequired("input")
}

func runReformat(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	run, err := startLogging("reformat", settings)
	if err != nil {
		return err
	}
	defer run.Close()
	logger := run.Logger()

	output := reformatFlags.output
	if output == "" {
		output = sheet.DefaultReformatFile(reformatFlags.input, time.Now())
	}
	logger.Info("Execution begins", zap.String("input", reformatFlags.input), zap.String("output", output))

	rows, err := sheet.ReadSpecifications(reformatFlags.input)
	if err != nil {
		logger.Error("Failed to read specifications", zap.Error(err))
		return err
	}
	logger.Info("Read specifications", zap.Int("rows", len(rows)))

	return writeModel(cmd, sheet.Reformat(rows), output, logger)
}

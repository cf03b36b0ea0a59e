// =============================================================================
// Spreadsheet to JSON Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which carries the workload: it
// reads one spreadsheet, runs the validation pipeline, and writes the JSON
// document.
//
// COMMAND USAGE:
//   sheet2json convert [flags]
//
// FLAGS:
//   --input-file, -i      : Input spreadsheet (default: stdin)
//   --input-file-type, -t : Input format: csv, xlsx or xlsm
//                           (sniffed from the file name when omitted)
//   --output-file, -o     : Output JSON file (default: stdout)
//
// PROCESSING PIPELINE:
//   1. Load the rules configuration
//   2. Open the input and build the matching row source
//   3. Convert: extract, validate and aggregate every row
//   4. Serialize the document
//   5. Write the output (atomically when writing to a file)
//
// On any validation failure nothing is written to the output destination;
// the error (kind plus row number) goes to stderr and the process exits
// non-zero.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/config"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/converter"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/emailcheck"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/jsonwriter"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/sheetreader"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// inputFile is the input spreadsheet path. Empty reads stdin.
var inputFile string

// inputFileType is the input format. Empty sniffs it from the file name.
var inputFileType string

// outputFile is the output JSON path. Empty writes stdout.
var outputFile string

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one spreadsheet of receipt rows to a JSON document",
	Long: `The convert command reads receipt rows from a CSV or XLSX spreadsheet,
validates every field, groups line items under their parent receipt, and
writes the resulting JSON document.

The first input row is treated as a header and skipped. Processing stops
successfully at the first row whose leading cell is empty; any validation
failure aborts the whole conversion and reports the offending row number.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(
		&inputFile,
		"input-file",
		"i",
		"",
		"Input file in CSV or XLSX format (default is stdin)",
	)

	convertCmd.Flags().StringVarP(
		&inputFileType,
		"input-file-type",
		"t",
		"",
		"Input file format: csv, xlsx or xlsm (default sniffs the file name)",
	)

	convertCmd.Flags().StringVarP(
		&outputFile,
		"output-file",
		"o",
		"",
		"Output file for the JSON document (default is stdout)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert wires the pipeline: row source -> converter -> JSON writer.
func runConvert(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	input, closeInput, err := openInput()
	if err != nil {
		return err
	}
	defer closeInput()

	fileType := inputFileType
	if fileType == "" && inputFile != "" {
		fileType = sheetreader.DetectType(inputFile)
	}

	src, err := sheetreader.Open(input, fileType)
	if err != nil {
		return err
	}
	defer src.Close()

	log.Debug().
		Str("input", inputName()).
		Str("type", fileType).
		Msg("starting conversion")

	conv, err := converter.New(cfg, emailcheck.New(cfg.MXTimeout()), log)
	if err != nil {
		return err
	}

	doc, err := conv.Convert(cmd.Context(), src)
	if err != nil {
		return err
	}

	data, err := jsonwriter.EncodeWithOptions(doc, jsonwriter.Options{Indent: cfg.OutputIndent})
	if err != nil {
		return err
	}

	if err := writeOutput(data); err != nil {
		return err
	}

	log.Info().
		Int("receipts", len(doc.Receipts)).
		Str("output", outputName()).
		Msg("conversion complete")

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// openInput returns the input reader and a close function. Reading stdin
// requires an explicit --input-file-type, since there is no name to sniff.
func openInput() (io.Reader, func(), error) {
	if inputFile == "" {
		if inputFileType == "" {
			return nil, nil, fmt.Errorf("reading from stdin requires --input-file-type")
		}
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// writeOutput writes the document to the configured destination. File output
// goes through an atomic write so a failure never leaves a partial document.
func writeOutput(data []byte) error {
	if outputFile == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
		return nil
	}

	return utils.WriteFileAtomic(outputFile, data, 0644)
}

func inputName() string {
	if inputFile == "" {
		return "stdin"
	}
	return inputFile
}

func outputName() string {
	if outputFile == "" {
		return "stdout"
	}
	return outputFile
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/reldiagram"
	"github.com/tordrt/reldiagram/internal/schema"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract schemas from databases into a schema document",
	Long: `Extract reads every --db-url and writes the combined schemas as a YAML document that the other
commands accept through --schema-file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(dbURLs) == 0 {
			return fmt.Errorf("--db-url must be specified")
		}
		schemas, err := readSchemas(cmd.Context())
		if err != nil {
			return err
		}
		return writeOutput(func(w io.Writer) error { return schema.Encode(w, schemas) })
	},
}

// readSchemas loads the schema file when one is given, and extracts the
// databases otherwise
func readSchemas(ctx context.Context) ([]schema.Schema, error) {
	if schemaFile != "" && len(dbURLs) > 0 {
		return nil, fmt.Errorf("cannot use both --schema-file and --db-url")
	}
	if schemaFile != "" {
		return reldiagram.LoadSchemas(schemaFile)
	}
	if len(dbURLs) == 0 {
		return nil, fmt.Errorf("one of --schema-file or --db-url must be specified")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	schemas, err := reldiagram.ExtractSchemas(ctx, dbURLs, &reldiagram.Options{
		Tables:        parseTableList(tables),
		ExcludeTables: parseTableList(excludeTables),
		SchemaNames:   parseTableList(schemaNames),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}
	return schemas, nil
}

// writeOutput runs write against --output, or stdout when it is not set
func writeOutput(write func(w io.Writer) error) error {
	if outputFile == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
		}
	}()
	return write(f)
}

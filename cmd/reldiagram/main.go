package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/reldiagram/internal/config"
)

var (
	envFile       string
	dbURLs        []string
	schemaFile    string
	schemaNames   string
	tables        string
	excludeTables string
	outputFile    string
	colors        string

	cfg    *config.AppConfig
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "reldiagram",
	Short: "Lay out and edit entity relationship diagrams",
	Long: `reldiagram reads database schemas from PostgreSQL, MySQL, SQLite, SQL Server or a schema file,
lays them out as an entity relationship diagram, and adds, moves or removes the foreign keys drawn on it.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "Environment file with RELDIAGRAM_ settings (ignored when missing)")
	flags.StringSliceVar(&dbURLs, "db-url", nil, "Database URL (repeatable): postgres://, mysql://, sqlite:// or sqlserver://")
	flags.StringVarP(&schemaFile, "schema-file", "i", "", "Schema document (YAML or JSON) to read instead of databases")
	flags.StringVar(&schemaNames, "schema-names", "", "Schema name for each --db-url, by position (comma-separated)")
	flags.StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	flags.StringVarP(&excludeTables, "exclude", "x", "", "Tables to leave out (comma-separated, optional)")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	flags.StringVar(&colors, "colors", "", "Table colors (comma-separated, default: built-in palette)")

	rootCmd.AddCommand(extractCmd, layoutCmd, connectCmd, disconnectCmd, retargetCmd, serveCmd)
}

// loadConfig reads the environment configuration and fills in every flag
// that was not given on the command line
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cmd.Flags().Changed("db-url") {
		dbURLs = cfg.DatabaseURLs
	}
	if !cmd.Flags().Changed("schema-file") {
		schemaFile = cfg.SchemaFile
	}
	if !cmd.Flags().Changed("colors") && len(cfg.TableColors) > 0 {
		colors = strings.Join(cfg.TableColors, ",")
	}
	return nil
}

// parseTableList splits a comma-separated flag value, trimming whitespace
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	list := strings.Split(s, ",")
	for i, t := range list {
		list[i] = strings.TrimSpace(t)
	}
	return list
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

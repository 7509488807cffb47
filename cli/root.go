// Package cli implements the tabula command: it loads a table definition and its
// records from a file or SQLite, applies a view and prints the visible page.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/core/source"
	"github.com/asaidimu/go-tabula/sqlite"
)

// app carries what every command needs once the root command has run.
type app struct {
	configPath string
	viper      *viper.Viper
	config     *Config
	logger     *zap.Logger
}

// NewRootCommand builds the tabula command tree.
func NewRootCommand() *cobra.Command {
	a := &app{viper: newViper()}

	root := &cobra.Command{
		Use:   "tabula",
		Short: "Search, filter, sort and page through table records",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(a.viper, a.configPath)
			if err != nil {
				return err
			}
			logger, err := NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.config = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a config file (default ./tabula.yaml)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	_ = a.viper.BindPFlag(KeyLogLevel, root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newViewCommand(a),
		newStatsCommand(a),
		newValidateCommand(a),
		newImportCommand(a),
	)
	return root
}

// Execute runs the tabula command and exits with a non-zero status on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// readDefinition loads and validates a definition file.
func readDefinition(path string) (*schema.TableDefinition, error) {
	if path == "" {
		return nil, errors.New("a table definition is required (--definition)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return schema.LoadDefinition(data)
}

// addSourceFlags registers the flags that select where records come from.
func addSourceFlags(cmd *cobra.Command, f *viewFlags) {
	cmd.Flags().StringVarP(&f.definition, "definition", "d", "", "Table definition file (JSON or YAML)")
	cmd.Flags().StringVarP(&f.records, "records", "r", "", "Records file (JSON or YAML array)")
	cmd.Flags().StringVar(&f.sqlite, "sqlite", "", "SQLite database to read records from")
	cmd.Flags().StringVar(&f.table, "table", "", "SQLite table name (default: the definition name)")
}

// addViewFlags registers the flags that describe a view.
func addViewFlags(cmd *cobra.Command, f *viewFlags) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Global search text")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "Column filter: col=value, col=a,b or col=from..to (repeatable)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort column, optionally col:asc or col:desc")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Rows per page (default: config page_size, then the definition)")
}

// source returns the record source selected by the flags.
func (a *app) source(f *viewFlags, def *schema.TableDefinition) (source.Source[schema.Document], func(), error) {
	switch {
	case f.records != "" && f.sqlite != "":
		return nil, nil, errors.New("--records and --sqlite cannot be used together")
	case f.records != "":
		return source.NewFile(f.records, def, a.logger), func() {}, nil
	case f.sqlite != "":
		db, err := sqlite.Open(f.sqlite)
		if err != nil {
			return nil, nil, err
		}
		opts := sqlite.DefaultOptions()
		opts.TableName = f.table
		tbl, err := sqlite.NewTable(db, def, a.logger, opts)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return tbl, func() { db.Close() }, nil
	default:
		return nil, nil, errors.New("no records given: use --records or --sqlite")
	}
}

// load reads the definition and the records selected by the flags.
func (a *app) load(ctx context.Context, f *viewFlags) (*schema.TableDefinition, []schema.Document, error) {
	def, err := readDefinition(f.definition)
	if err != nil {
		return nil, nil, err
	}
	src, closeSource, err := a.source(f, def)
	if err != nil {
		return nil, nil, err
	}
	defer closeSource()

	docs, err := src.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return def, docs, nil
}

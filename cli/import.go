package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asaidimu/go-tabula/core/source"
	"github.com/asaidimu/go-tabula/sqlite"
)

func newImportCommand(a *app) *cobra.Command {
	f := &viewFlags{}
	var replace bool

	cmd := &cobra.Command{
		Use:     "import",
		Short:   "Copy records from a file into a SQLite table",
		Example: `  tabula import -d payments.yaml -r payments.json --sqlite dashboard.db --replace`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.records == "" || f.sqlite == "" {
				return errors.New("both --records and --sqlite are required")
			}
			def, err := readDefinition(f.definition)
			if err != nil {
				return err
			}
			docs, err := source.NewFile(f.records, def, a.logger).Load(cmd.Context())
			if err != nil {
				return err
			}

			db, err := sqlite.Open(f.sqlite)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := sqlite.DefaultOptions()
			opts.TableName = f.table
			opts.DropIfExists = replace
			tbl, err := sqlite.NewTable(db, def, a.logger, opts)
			if err != nil {
				return err
			}
			if err := tbl.Create(cmd.Context()); err != nil {
				return err
			}
			n, err := tbl.Insert(cmd.Context(), docs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records into %s\n", n, tbl.Name())
			return nil
		},
	}
	addSourceFlags(cmd, f)
	cmd.Flags().BoolVar(&replace, "replace", false, "Drop the table before importing")
	return cmd
}

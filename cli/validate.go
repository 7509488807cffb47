package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/core/source"
)

func newValidateCommand(a *app) *cobra.Command {
	var records string

	cmd := &cobra.Command{
		Use:   "validate <definition>",
		Short: "Check a table definition, and optionally a records file against it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read definition: %w", err)
			}
			def, err := schema.ParseDefinition(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			validator := schema.NewValidator()
			result := validator.Check(def)
			for _, issue := range result.Issues {
				fmt.Fprintf(out, "%s\t%s\t%s\n", issue.Code, issue.Path, issue.Message)
			}
			if !result.Valid {
				return fmt.Errorf("definition %s has %d issue(s)", args[0], len(result.Issues))
			}

			if records == "" {
				fmt.Fprintf(out, "%s: ok (%d columns)\n", def.Name, len(def.Columns))
				return nil
			}

			raw, err := os.ReadFile(records)
			if err != nil {
				return fmt.Errorf("failed to read records file: %w", err)
			}
			docs, err := source.DecodeDocuments(raw, def)
			if err != nil {
				return err
			}
			invalid := 0
			for i, doc := range docs {
				res := validator.ValidateDocument(def, doc)
				if res.Valid {
					continue
				}
				invalid++
				for _, issue := range res.Issues {
					fmt.Fprintf(out, "%s\trecords[%d].%s\t%s\n", issue.Code, i, issue.Path, issue.Message)
				}
			}
			a.logger.Info("Validated records", zap.String("path", records), zap.Int("count", len(docs)), zap.Int("invalid", invalid))
			if invalid > 0 {
				return errors.New("some records do not fit the definition")
			}
			fmt.Fprintf(out, "%s: ok (%d columns, %d records)\n", def.Name, len(def.Columns), len(docs))
			return nil
		},
	}
	cmd.Flags().StringVarP(&records, "records", "r", "", "Records file to check against the definition")
	return cmd
}

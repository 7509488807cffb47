package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/render"
)

// groupStat is one line of the stats command.
type groupStat struct {
	Value string
	Count int
	Sum   float64
}

func newStatsCommand(a *app) *cobra.Command {
	f := &viewFlags{}
	var by, sum string

	cmd := &cobra.Command{
		Use:     "stats",
		Short:   "Count the matching rows per value of a column",
		Example: `  tabula stats -d payments.yaml -r payments.json --by status --sum amount`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if by == "" {
				return fmt.Errorf("a column to group by is required (--by)")
			}
			def, engine, err := a.buildEngine(cmd, f)
			if err != nil {
				return err
			}
			var stats []groupStat
			if sum == "" {
				groups, err := engine.CountBy(by)
				if err != nil {
					return err
				}
				for _, g := range groups {
					stats = append(stats, groupStat{Value: g.Value, Count: g.Count})
				}
			} else {
				col := def.FindColumn(sum)
				if col == nil || !col.Type.IsNumeric() {
					return fmt.Errorf("cannot sum '%s': not a numeric column", sum)
				}
				groups, err := engine.SumBy(by, sum)
				if err != nil {
					return err
				}
				for _, g := range groups {
					stats = append(stats, groupStat{Value: g.Value, Count: g.Count, Sum: g.Sum})
				}
			}
			return writeStats(cmd.OutOrStdout(), by, sum, stats)
		},
	}
	addSourceFlags(cmd, f)
	addViewFlags(cmd, f)
	cmd.Flags().StringVar(&by, "by", "", "Column to group by")
	cmd.Flags().StringVar(&sum, "sum", "", "Numeric column to total per group")
	return cmd
}

func writeStats(w io.Writer, by, sum string, stats []groupStat) error {
	columns := []query.Column[groupStat]{
		{ID: by, Type: schema.FieldTypeString, Accessor: func(g groupStat) any { return g.Value }},
		{ID: "count", Type: schema.FieldTypeInteger, Accessor: func(g groupStat) any { return g.Count }},
	}
	if sum != "" {
		columns = append(columns, query.Column[groupStat]{
			ID: "sum_" + sum, Type: schema.FieldTypeNumber, Accessor: func(g groupStat) any { return g.Sum },
		})
	}
	_, err := io.WriteString(w, render.Rows(columns, stats, nil, render.Options{}))
	return err
}

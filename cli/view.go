package cli

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/core/table"
	"github.com/asaidimu/go-tabula/render"
)

// PageOutput is the JSON form of a rendered page.
type PageOutput struct {
	Table     string            `json:"table"`
	Rows      []schema.Document `json:"rows"`
	From      int               `json:"from"`
	To        int               `json:"to"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	PageCount int               `json:"pageCount"`
	PageSize  int               `json:"pageSize"`
	State     query.ViewState   `json:"state"`
}

func newViewCommand(a *app) *cobra.Command {
	f := &viewFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print one page of a table",
		Example: `  tabula view -d contracts.yaml -r contracts.json --search acme --sort value:desc
  tabula view -d payments.yaml --sqlite dashboard.db -f status=OVERDUE,PARTIAL -f amount=100..`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, engine, err := a.buildEngine(cmd, f)
			if err != nil {
				return err
			}
			switch output {
			case "table":
				_, err = io.WriteString(cmd.OutOrStdout(), render.Page(engine, render.Options{Headers: headerLabels(def)}))
				return err
			case "json":
				return writePageJSON(cmd.OutOrStdout(), engine)
			default:
				return fmt.Errorf("invalid output '%s': expected table or json", output)
			}
		},
	}
	addSourceFlags(cmd, f)
	addViewFlags(cmd, f)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or json")
	return cmd
}

// buildEngine loads the records selected by the flags and applies the view they
// describe.
func (a *app) buildEngine(cmd *cobra.Command, f *viewFlags) (*schema.TableDefinition, *table.Engine[schema.Document], error) {
	def, docs, err := a.load(cmd.Context(), f)
	if err != nil {
		return nil, nil, err
	}
	if f.pageSize == 0 {
		f.pageSize = a.config.PageSize
	}
	state, err := f.state(def)
	if err != nil {
		return nil, nil, err
	}

	engine, err := table.NewFromDefinition(docs, def, table.WithLogger(a.logger))
	if err != nil {
		return nil, nil, err
	}
	if err := engine.Apply(state); err != nil {
		return nil, nil, err
	}
	a.logger.Debug("Built table view",
		zap.String("table", engine.Name()),
		zap.Int("records", len(docs)),
		zap.Int("matching", engine.TotalFilteredCount()))
	return def, engine, nil
}

func headerLabels(def *schema.TableDefinition) map[string]string {
	labels := make(map[string]string, len(def.Columns))
	for _, col := range def.Columns {
		labels[col.ID] = col.Header()
	}
	return labels
}

func writePageJSON(w io.Writer, engine *table.Engine[schema.Document]) error {
	from, to, total := engine.Window()
	page := engine.Page()
	out := PageOutput{
		Table:     engine.Name(),
		Rows:      engine.VisibleRows(),
		From:      from,
		To:        to,
		Total:     total,
		Page:      page.Index + 1,
		PageCount: engine.PageCount(),
		PageSize:  page.Size,
		State:     engine.State(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"returnsdesk/internal/bootstrap"
	"returnsdesk/internal/domain/returns"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored return record by order id",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		format, _ := cmd.Flags().GetString("format")

		records, err := app.Report.Records(cmd.Context())
		if err != nil {
			return err
		}
		return renderRecords(cmd.OutOrStdout(), format, records)
	}),
}

type recordView struct {
	OrderID      uint64  `json:"order_id" yaml:"order_id" toml:"order_id"`
	Product      string  `json:"product" yaml:"product" toml:"product"`
	StoreName    string  `json:"store_name" yaml:"store_name" toml:"store_name"`
	Category     string  `json:"category" yaml:"category" toml:"category"`
	Cost         float64 `json:"cost" yaml:"cost" toml:"cost"`
	ReturnReason string  `json:"return_reason" yaml:"return_reason" toml:"return_reason"`
	ApprovedFlag string  `json:"approved_flag" yaml:"approved_flag" toml:"approved_flag"`
	Origin       string  `json:"origin" yaml:"origin" toml:"origin"`
	CreatedAt    string  `json:"created_at" yaml:"created_at" toml:"created_at"`
}

func toRecordView(r returns.ReturnRecord) recordView {
	return recordView{
		OrderID:      r.OrderID,
		Product:      r.Product,
		StoreName:    r.StoreName,
		Category:     string(r.Category),
		Cost:         r.Cost,
		ReturnReason: r.ReturnReason,
		ApprovedFlag: string(r.ApprovedFlag),
		Origin:       string(r.Origin),
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRecordViews(records []returns.ReturnRecord) []recordView {
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, toRecordView(r))
	}
	return views
}

func renderRecords(out io.Writer, format string, records []returns.ReturnRecord) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		_, detail := returns.Compile(records)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		if _, err := fmt.Fprintln(tw, strings.Join(detail.Columns, "\t")); err != nil {
			return err
		}
		for _, row := range detail.Cells() {
			if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(toRecordViews(records))
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(toRecordViews(records)); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		enc := toml.NewEncoder(out)
		enc.SetIndentTables(true)
		return enc.Encode(struct {
			Returns []recordView `toml:"returns"`
		}{Returns: toRecordViews(records)})
	default:
		return fmt.Errorf("unsupported format %q (table|json|yaml|toml)", format)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("format", "table", "Output format (table|json|yaml|toml)")
}

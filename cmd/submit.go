package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"returnsdesk/internal/bootstrap"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/usecase/intake"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a structured return record",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		flags := cmd.Flags()
		product, _ := flags.GetString("product")
		store, _ := flags.GetString("store")
		category, _ := flags.GetString("category")
		cost, _ := flags.GetFloat64("cost")
		reason, _ := flags.GetString("reason")
		approved, _ := flags.GetString("approved")

		record, err := app.Intake.SubmitForm(cmd.Context(), intake.FormInput{
			Product:      product,
			StoreName:    store,
			Category:     category,
			Cost:         cost,
			ReturnReason: reason,
			ApprovedFlag: approved,
		})
		if err != nil {
			return err
		}
		return printCommitted(cmd.OutOrStdout(), record)
	}),
}

var describeCmd = &cobra.Command{
	Use:   "describe [text...]",
	Short: "Submit a free-text return description",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		record, err := app.Intake.SubmitText(cmd.Context(), strings.Join(cmd.Flags().Args(), " "))
		if err != nil {
			return err
		}
		return printCommitted(cmd.OutOrStdout(), record)
	}),
}

func printCommitted(out io.Writer, r returns.ReturnRecord) error {
	_, err := fmt.Fprintf(out,
		"committed order %d: %s | %s | %s | %.2f | %s | approved=%s | origin=%s\n",
		r.OrderID, r.Product, r.StoreName, r.Category, r.Cost, r.ReturnReason, r.ApprovedFlag, r.Origin,
	)
	return err
}

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(describeCmd)

	submitCmd.Flags().String("product", "", "Product name")
	submitCmd.Flags().String("store", "", "Store name")
	submitCmd.Flags().String("category", "", "Category ("+strings.Join(categoryNames(), "|")+")")
	submitCmd.Flags().Float64("cost", 0, "Return cost")
	submitCmd.Flags().String("reason", "", "Return reason")
	submitCmd.Flags().String("approved", "", "Approved flag (Yes|No)")
}

func categoryNames() []string {
	out := make([]string, 0, len(returns.Categories()))
	for _, c := range returns.Categories() {
		out = append(out, string(c))
	}
	return out
}

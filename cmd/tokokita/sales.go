package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/suteetoe/tokokita/internal/checkout"
	"github.com/suteetoe/tokokita/internal/invoice"
	"github.com/suteetoe/tokokita/internal/report"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/money"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cart",
		Aliases: []string{"keranjang"},
		Short:   "Show the cart",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.cart.ListItems(cmd.Context())
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), lines)
			return nil
		},
	}

	var qty int
	add := &cobra.Command{
		Use:   "add CODE",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cart.AddItem(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d × %s, %d item(s) in cart\n", qty, args[0], a.cart.Count())
			return nil
		},
	}
	add.Flags().IntVarP(&qty, "qty", "q", 1, "quantity")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove CODE",
		Short: "Remove a product line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cart.RemoveItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), a.cart.Snapshot().Lines)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Number of items in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.cart.RefreshCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	})
	return cmd
}

func newCheckoutCmd(a *app) *cobra.Command {
	var customer string
	var total int64
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Save the cart as a sale and print the invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if customer == "" {
				return apperr.Validation("customer required, pass --customer CODE")
			}
			c, err := a.api.Customers.Get(ctx, customer)
			if err != nil {
				return err
			}

			renderer := invoice.NewPDFRenderer(a.storage, a.cfg.Storage.DownloadDir, a.log)
			engine := checkout.New(a.api.Transactions, a.api.Cart, a.cart, a.session, renderer,
				checkout.WithLogger(a.log),
				checkout.WithMetrics(a.metrics),
			)
			res, err := engine.Commit(ctx, checkout.Request{
				CustomerCode: c.Code,
				CustomerName: c.Name,
				TotalAmount:  total,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch res.Outcome {
			case checkout.OutcomeCommitted:
				fmt.Fprintf(out, "Transaction %s saved, total %s\n", res.Invoice.Number, money.Rupiah(res.Invoice.Total))
				fmt.Fprintf(out, "Invoice written to %s\n", res.DocumentPath)
			case checkout.OutcomeCommittedWithoutDocument:
				fmt.Fprintf(out, "Transaction %s saved, total %s\n", res.Invoice.Number, money.Rupiah(res.Invoice.Total))
				fmt.Fprintf(out, "Invoice generation failed: %s\n", apperr.UserMessage(res.DocumentErr))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&customer, "customer", "c", "", "customer code")
	cmd.Flags().Int64Var(&total, "total", 0, "amount paid; defaults to the amount due")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validation(fmt.Sprintf("invalid date %q, use YYYY-MM-DD", s))
	}
	return t, nil
}

func newReportCmd(a *app) *cobra.Command {
	var from, to string
	var asPDF bool
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"laporan"},
		Short:   "Sales report for a period",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(from)
			if err != nil {
				return err
			}
			end, err := parseDate(to)
			if err != nil {
				return err
			}

			exporter := report.New(a.api.Sales, a.storage, a.cfg.Storage.DownloadDir,
				report.WithLogger(a.log),
				report.WithMetrics(a.metrics),
			)
			if asPDF {
				path, err := exporter.DownloadReportPDF(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
				return nil
			}

			records, err := exporter.FetchReport(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().BoolVar(&asPDF, "pdf", false, "save the PDF to the download folder")
	return cmd
}

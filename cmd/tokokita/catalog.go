package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/suteetoe/tokokita/internal/listing"
	"github.com/suteetoe/tokokita/internal/model"
)

type listFlags struct {
	search string
	page   int
	all    bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "filter by name or code")
	cmd.Flags().IntVar(&f.page, "page", 1, "page to show")
	cmd.Flags().BoolVar(&f.all, "all", false, "load every page")
}

// loadList fills the engine according to the flags
func loadList[T any](cmd *cobra.Command, e *listing.Engine[T], f *listFlags) error {
	ctx := cmd.Context()
	if f.search != "" {
		if err := e.Search(ctx, f.search); err != nil {
			return err
		}
		if f.page > 1 {
			if err := e.Load(ctx, f.page, listing.Reset); err != nil {
				return err
			}
		}
	} else if err := e.Load(ctx, f.page, listing.Reset); err != nil {
		return err
	}
	for f.all {
		snap := e.Snapshot()
		if snap.Page >= snap.TotalPages {
			break
		}
		if err := e.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}

func pageFooter[T any](cmd *cobra.Command, snap listing.Snapshot[T]) {
	fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d, %d shown\n", snap.Page, snap.TotalPages, len(snap.Items))
}

func newProductsCmd(a *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"barang"},
		Short:   "Browse and manage the product catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := listing.NewProductList(a.api.Products, listing.WithLogger(a.log), listing.WithMetrics(a.metrics))
			if err := loadList(cmd, list, &lf); err != nil {
				return err
			}
			snap := list.Snapshot()
			printProducts(cmd.OutOrStdout(), snap.Items)
			pageFooter(cmd, snap)
			return nil
		},
	}
	lf.register(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show CODE",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.api.Products.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	})

	var p model.Product
	var price int64
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.UnitPrice = model.Amount(price)
			if err := a.api.Products.Create(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s added\n", p.Code)
			return nil
		},
	}
	add.Flags().StringVar(&p.Code, "code", "", "product code")
	add.Flags().StringVar(&p.Name, "name", "", "product name")
	add.Flags().StringVar(&p.Unit, "unit", "", "unit of sale, e.g. pcs")
	add.Flags().Int64Var(&price, "price", 0, "unit price in rupiah")
	cmd.AddCommand(add)

	var changes model.Product
	var newPrice int64
	edit := &cobra.Command{
		Use:   "edit CODE",
		Short: "Change a product; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.Products.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated := *current
			if changes.Name != "" {
				updated.Name = changes.Name
			}
			if changes.Unit != "" {
				updated.Unit = changes.Unit
			}
			if newPrice > 0 {
				updated.UnitPrice = model.Amount(newPrice)
			}
			if err := a.api.Products.Update(cmd.Context(), args[0], updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s updated\n", args[0])
			return nil
		},
	}
	edit.Flags().StringVar(&changes.Name, "name", "", "product name")
	edit.Flags().StringVar(&changes.Unit, "unit", "", "unit of sale")
	edit.Flags().Int64Var(&newPrice, "price", 0, "unit price in rupiah")
	cmd.AddCommand(edit)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete CODE",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Products.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s deleted\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload CODE IMAGE",
		Short: "Upload a product picture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if err := a.api.Products.UploadImage(cmd.Context(), args[0], filepath.Base(args[1]), content); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image uploaded for %s\n", args[0])
			return nil
		},
	})
	return cmd
}

func newCustomersCmd(a *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"pelanggan"},
		Short:   "Browse and manage customers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := listing.NewCustomerList(a.api.Customers, listing.WithLogger(a.log), listing.WithMetrics(a.metrics))
			if err := loadList(cmd, list, &lf); err != nil {
				return err
			}
			snap := list.Snapshot()
			printCustomers(cmd.OutOrStdout(), snap.Items)
			pageFooter(cmd, snap)
			return nil
		},
	}
	lf.register(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show CODE",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api.Customers.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCustomer(cmd.OutOrStdout(), c)
			return nil
		},
	})

	var c model.Customer
	var phone string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Phone = model.PhoneNumber(phone)
			if err := a.api.Customers.Create(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Customer %s added\n", c.Code)
			return nil
		},
	}
	add.Flags().StringVar(&c.Code, "code", "", "customer code")
	add.Flags().StringVar(&c.Name, "name", "", "customer name")
	add.Flags().StringVar(&phone, "phone", "", "phone number")
	add.Flags().StringVar(&c.Address, "address", "", "address")
	cmd.AddCommand(add)

	var changes model.Customer
	var newPhone string
	edit := &cobra.Command{
		Use:   "edit CODE",
		Short: "Change a customer; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.Customers.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated := *current
			if changes.Name != "" {
				updated.Name = changes.Name
			}
			if newPhone != "" {
				updated.Phone = model.PhoneNumber(newPhone)
			}
			if changes.Address != "" {
				updated.Address = changes.Address
			}
			if err := a.api.Customers.Update(cmd.Context(), args[0], updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Customer %s updated\n", args[0])
			return nil
		},
	}
	edit.Flags().StringVar(&changes.Name, "name", "", "customer name")
	edit.Flags().StringVar(&newPhone, "phone", "", "phone number")
	edit.Flags().StringVar(&changes.Address, "address", "", "address")
	cmd.AddCommand(edit)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete CODE",
		Short: "Delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Customers.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Customer %s deleted\n", args[0])
			return nil
		},
	})
	return cmd
}

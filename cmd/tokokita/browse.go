package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/suteetoe/tokokita/internal/cart"
	"github.com/suteetoe/tokokita/internal/listing"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
)

const browseHelp = "n: more   /TERM: search   /: clear search   r: refresh   a CODE [QTY]: add to cart   q: quit"

// browser is the interactive product pager
type browser struct {
	list    *listing.Engine[model.Product]
	cart    *cart.Synchronizer
	out     io.Writer
	expired bool
	shown   int
}

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Page through the catalog and fill the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &browser{cart: a.cart, out: cmd.OutOrStdout()}
			b.list = listing.NewProductList(a.api.Products,
				listing.WithLogger(a.log),
				listing.WithMetrics(a.metrics),
				listing.WithUnauthenticatedHook(func() { b.expired = true }),
			)
			return b.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	if err := b.list.Load(ctx, 1, listing.Reset); err != nil {
		return err
	}
	b.render(true)
	fmt.Fprintln(b.out, browseHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := b.handle(ctx, strings.TrimSpace(scanner.Text()))
		if b.expired {
			return apperr.Unauthenticated("session expired")
		}
		if err != nil {
			if apperr.Is(err, apperr.KindUnauthenticated) {
				return err
			}
			fmt.Fprintln(b.out, "error:", apperr.UserMessage(err))
		}
		if quit {
			return nil
		}
	}
}

func (b *browser) handle(ctx context.Context, input string) (bool, error) {
	switch {
	case input == "":
		return false, nil
	case input == "q":
		return true, nil
	case input == "n":
		before := b.list.Snapshot()
		if before.Page >= before.TotalPages {
			fmt.Fprintln(b.out, "(end of list)")
			return false, nil
		}
		if err := b.list.LoadMore(ctx); err != nil {
			return false, err
		}
		b.render(false)
	case input == "r":
		if err := b.list.Refresh(ctx); err != nil {
			return false, err
		}
		b.render(true)
	case strings.HasPrefix(input, "/"):
		if err := b.list.Search(ctx, strings.TrimSpace(input[1:])); err != nil {
			return false, err
		}
		b.render(true)
	case strings.HasPrefix(input, "a "):
		fields := strings.Fields(input[2:])
		if len(fields) == 0 {
			return false, apperr.Validation("usage: a CODE [QTY]")
		}
		qty := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return false, apperr.Validation("quantity must be a number")
			}
			qty = n
		}
		if err := b.cart.AddItem(ctx, fields[0], qty); err != nil {
			return false, err
		}
		fmt.Fprintf(b.out, "Added %d × %s, %d item(s) in cart\n", qty, fields[0], b.cart.Count())
	default:
		fmt.Fprintln(b.out, browseHelp)
	}
	return false, nil
}

// render prints the whole list after a reset, and only the new rows after
// loading more
func (b *browser) render(reset bool) {
	snap := b.list.Snapshot()
	if reset {
		b.shown = 0
	}
	if b.shown > len(snap.Items) {
		b.shown = 0
	}
	if len(snap.Items) == 0 {
		fmt.Fprintln(b.out, "No products found")
	} else {
		printProducts(b.out, snap.Items[b.shown:])
	}
	b.shown = len(snap.Items)
	fmt.Fprintf(b.out, "page %d of %d\n", snap.Page, snap.TotalPages)
}

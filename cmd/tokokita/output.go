package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/money"
)

const ruleWidth = 72

func rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
}

func printProducts(w io.Writer, products []model.Product) {
	fmt.Fprintf(w, "%-10s %-32s %-8s %16s\n", "CODE", "NAME", "UNIT", "PRICE")
	rule(w)
	for _, p := range products {
		fmt.Fprintf(w, "%-10s %-32s %-8s %16s\n", p.Code, truncate(p.Name, 32), p.Unit, money.Rupiah(int64(p.UnitPrice)))
	}
	rule(w)
}

func printProduct(w io.Writer, p *model.Product) {
	fmt.Fprintf(w, "CODE:   %s\n", p.Code)
	fmt.Fprintf(w, "NAME:   %s\n", p.Name)
	fmt.Fprintf(w, "UNIT:   %s\n", p.Unit)
	fmt.Fprintf(w, "PRICE:  %s\n", money.Rupiah(int64(p.UnitPrice)))
	if p.ImagePath != "" {
		fmt.Fprintf(w, "IMAGE:  %s\n", p.ImagePath)
	}
}

func printCustomers(w io.Writer, customers []model.Customer) {
	fmt.Fprintf(w, "%-10s %-28s %-15s %s\n", "CODE", "NAME", "PHONE", "ADDRESS")
	rule(w)
	for _, c := range customers {
		fmt.Fprintf(w, "%-10s %-28s %-15s %s\n", c.Code, truncate(c.Name, 28), c.Phone, c.Address)
	}
	rule(w)
}

func printCustomer(w io.Writer, c *model.Customer) {
	fmt.Fprintf(w, "CODE:    %s\n", c.Code)
	fmt.Fprintf(w, "NAME:    %s\n", c.Name)
	fmt.Fprintf(w, "PHONE:   %s\n", c.Phone)
	fmt.Fprintf(w, "ADDRESS: %s\n", c.Address)
}

func printCart(w io.Writer, lines []model.CartLine) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return
	}
	fmt.Fprintf(w, "%-10s %-26s %5s %13s %14s\n", "CODE", "NAME", "QTY", "PRICE", "SUBTOTAL")
	rule(w)
	var total int64
	for _, l := range lines {
		fmt.Fprintf(w, "%-10s %-26s %5d %13s %14s\n", l.ProductCode, truncate(l.ProductName, 26),
			int64(l.Quantity), money.Rupiah(int64(l.UnitPrice)), money.Rupiah(l.Subtotal()))
		total += l.Subtotal()
	}
	rule(w)
	fmt.Fprintf(w, "%-57s %14s\n", "TOTAL", money.Rupiah(total))
}

func printReport(w io.Writer, records []model.ReportRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No sales in this period")
		return
	}
	fmt.Fprintf(w, "%-16s %-28s %-12s %14s\n", "INVOICE", "CUSTOMER", "DATE", "TOTAL")
	rule(w)
	var total int64
	for _, r := range records {
		fmt.Fprintf(w, "%-16s %-28s %-12s %14s\n", r.InvoiceNumber, truncate(r.CustomerName, 28),
			shortDate(r.IssuedAt), money.Rupiah(int64(r.Total)))
		total += int64(r.Total)
	}
	rule(w)
	fmt.Fprintf(w, "%-58s %14s\n", "TOTAL", money.Rupiah(total))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// shortDate keeps the date part of a server timestamp
func shortDate(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

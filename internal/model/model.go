package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Credential is the only durable client state. UserID is the account's
// display name, which the backend uses to key carts.
type Credential struct {
	Token  string
	UserID string
}

// User is the account returned by the login endpoint
type User struct {
	ID    json.RawMessage `json:"id,omitempty"`
	Name  string          `json:"name"`
	Email string          `json:"email,omitempty"`
}

// Product represents a catalog item (barang)
type Product struct {
	Code      string `json:"kodebarang"`
	Name      string `json:"namabarang"`
	UnitPrice Amount `json:"harga"`
	Unit      string `json:"satuan"`
	ImagePath string `json:"gambar,omitempty"`
}

// Customer represents an entry of the customer directory (pelanggan)
type Customer struct {
	Code    string      `json:"kodepelanggan"`
	Name    string      `json:"namapelanggan"`
	Phone   PhoneNumber `json:"nohp"`
	Address string      `json:"alamat"`
}

// CartLine is one product/quantity pairing of the pending order
type CartLine struct {
	ProductCode string `json:"kodebarang"`
	ProductName string `json:"namabarang"`
	UnitPrice   Amount `json:"harga"`
	Quantity    Amount `json:"qty"`
	ImagePath   string `json:"gambar,omitempty"`
}

// Subtotal is qty × unitPrice
func (l CartLine) Subtotal() int64 {
	return int64(l.Quantity) * int64(l.UnitPrice)
}

// Page is one fetch unit of a server-paginated result set
type Page[T any] struct {
	Items      []T `json:"data"`
	PageNumber int `json:"current_page"`
	TotalPages int `json:"last_page"`
}

// InvoiceLine is one display line of an invoice
type InvoiceLine struct {
	ProductName string
	Quantity    int64
	UnitPrice   int64
	Subtotal    int64
}

// Invoice is the immutable record of a committed sale
type Invoice struct {
	Number       string
	CustomerCode string
	CustomerName string
	IssuedAt     time.Time
	Lines        []InvoiceLine
	Total        int64
}

// LinesTotal sums the line subtotals
func (inv Invoice) LinesTotal() int64 {
	var sum int64
	for _, l := range inv.Lines {
		sum += l.Subtotal
	}
	return sum
}

// ReportRecord is one row of the sales report
type ReportRecord struct {
	InvoiceNumber string `json:"faktur"`
	CustomerName  string `json:"namapelanggan"`
	IssuedAt      string `json:"tanggal"`
	Total         Amount `json:"totalbayar"`
}

// CommitRequest is the body of the transaction-commit endpoint
type CommitRequest struct {
	UserID       string `json:"iduser"`
	CustomerCode string `json:"kodepelanggan"`
	TotalAmount  int64  `json:"totalbayar"`
}

// Amount is an integer amount in minor units that the backend may encode
// either as a JSON number or as a numeric string ("10000", "10000.00").
type Amount int64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*a = Amount(n)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s", data)
	}
	*a = Amount(int64(f))
	return nil
}

// PhoneNumber accepts a JSON string or number
type PhoneNumber string

func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PhoneNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid phone number %s", data)
	}
	*p = PhoneNumber(n.String())
	return nil
}

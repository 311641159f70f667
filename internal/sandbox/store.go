package sandbox

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/suteetoe/tokokita/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	errNotFound      = errors.New("not found")
	errDuplicateCode = errors.New("code already exists")
	errEmailTaken    = errors.New("email already taken")
	errEmptyCart     = errors.New("cart is empty")
)

type totalMismatchError struct {
	Due int64
}

func (e *totalMismatchError) Error() string {
	return fmt.Sprintf("total does not match cart, expected %d", e.Due)
}

type user struct {
	ID    int
	Name  string
	Email string
	Hash  []byte
}

type transaction struct {
	InvoiceNumber string
	UserID        string
	CustomerCode  string
	Total         int64
	At            time.Time
	Lines         []model.CartLine
}

// Store is the in-memory state of the sandbox backend
type Store struct {
	mu           sync.Mutex
	products     []model.Product
	customers    []model.Customer
	users        map[string]*user
	revoked      map[string]struct{}
	carts        map[string][]model.CartLine
	transactions []transaction
	invoiceSeq   map[string]int
	nextUserID   int
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*user),
		revoked:    make(map[string]struct{}),
		carts:      make(map[string][]model.CartLine),
		invoiceSeq: make(map[string]int),
		nextUserID: 1,
	}
}

// AddUser registers an account with a bcrypt-hashed password
func (s *Store) AddUser(name, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.users[key]; ok {
		return errEmailTaken
	}
	s.users[key] = &user{ID: s.nextUserID, Name: name, Email: email, Hash: hash}
	s.nextUserID++
	return nil
}

func (s *Store) authenticate(email, password string) (*user, bool) {
	s.mu.Lock()
	u, ok := s.users[strings.ToLower(email)]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(u.Hash, []byte(password)) != nil {
		return nil, false
	}
	return u, true
}

func (s *Store) emailTaken(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[strings.ToLower(email)]
	return ok
}

func (s *Store) revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

func (s *Store) isRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[token]
	return ok
}

// Products

func (s *Store) AddProduct(p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.productIndex(p.Code) >= 0 {
		return errDuplicateCode
	}
	s.products = append(s.products, p)
	return nil
}

func (s *Store) productIndex(code string) int {
	for i, p := range s.products {
		if p.Code == code {
			return i
		}
	}
	return -1
}

func (s *Store) searchProducts(term string) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(term)
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if term == "" || strings.Contains(strings.ToLower(p.Code), term) || strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) product(code string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(code)
	if i < 0 {
		return model.Product{}, errNotFound
	}
	return s.products[i], nil
}

func (s *Store) updateProduct(code string, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(code)
	if i < 0 {
		return errNotFound
	}
	if p.Code != code && s.productIndex(p.Code) >= 0 {
		return errDuplicateCode
	}
	if p.ImagePath == "" {
		p.ImagePath = s.products[i].ImagePath
	}
	s.products[i] = p
	return nil
}

func (s *Store) setProductImage(code, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(code)
	if i < 0 {
		return errNotFound
	}
	s.products[i].ImagePath = path
	return nil
}

func (s *Store) deleteProduct(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(code)
	if i < 0 {
		return errNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

// Customers

func (s *Store) AddCustomer(c model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customerIndex(c.Code) >= 0 {
		return errDuplicateCode
	}
	s.customers = append(s.customers, c)
	return nil
}

func (s *Store) customerIndex(code string) int {
	for i, c := range s.customers {
		if c.Code == code {
			return i
		}
	}
	return -1
}

func (s *Store) searchCustomers(term string) []model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(term)
	out := make([]model.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if term == "" || strings.Contains(strings.ToLower(c.Code), term) || strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) customer(code string) (model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.customerIndex(code)
	if i < 0 {
		return model.Customer{}, errNotFound
	}
	return s.customers[i], nil
}

func (s *Store) updateCustomer(code string, c model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.customerIndex(code)
	if i < 0 {
		return errNotFound
	}
	if c.Code != code && s.customerIndex(c.Code) >= 0 {
		return errDuplicateCode
	}
	s.customers[i] = c
	return nil
}

func (s *Store) deleteCustomer(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.customerIndex(code)
	if i < 0 {
		return errNotFound
	}
	s.customers = append(s.customers[:i], s.customers[i+1:]...)
	return nil
}

// Carts

func (s *Store) cartLines(userID string) []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CartLine(nil), s.carts[userID]...)
}

func (s *Store) addToCart(userID, code string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(code)
	if i < 0 {
		return errNotFound
	}
	p := s.products[i]
	lines := s.carts[userID]
	for j := range lines {
		if lines[j].ProductCode == code {
			lines[j].Quantity += model.Amount(qty)
			return nil
		}
	}
	s.carts[userID] = append(lines, model.CartLine{
		ProductCode: p.Code,
		ProductName: p.Name,
		UnitPrice:   p.UnitPrice,
		Quantity:    model.Amount(qty),
		ImagePath:   p.ImagePath,
	})
	return nil
}

func (s *Store) removeFromCart(userID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	for j := range lines {
		if lines[j].ProductCode == code {
			s.carts[userID] = append(lines[:j], lines[j+1:]...)
			return nil
		}
	}
	return errNotFound
}

// Transactions

// commit turns the user's cart into a transaction and empties the cart
func (s *Store) commit(userID, customerCode string, total int64, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.customerIndex(customerCode) < 0 {
		return "", errNotFound
	}
	lines := s.carts[userID]
	if len(lines) == 0 {
		return "", errEmptyCart
	}
	var due int64
	for _, l := range lines {
		due += l.Subtotal()
	}
	if total != due {
		return "", &totalMismatchError{Due: due}
	}

	day := at.Format("20060102")
	s.invoiceSeq[day]++
	number := fmt.Sprintf("F%s-%04d", day, s.invoiceSeq[day])

	s.transactions = append(s.transactions, transaction{
		InvoiceNumber: number,
		UserID:        userID,
		CustomerCode:  customerCode,
		Total:         total,
		At:            at,
		Lines:         lines,
	})
	delete(s.carts, userID)
	return number, nil
}

type salesRow struct {
	InvoiceNumber string
	CustomerName  string
	At            time.Time
	Total         int64
}

// sales lists transactions whose calendar day falls within [start, end]
func (s *Store) sales(start, end time.Time) []salesRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := truncateDay(start)
	until := truncateDay(end).AddDate(0, 0, 1)

	var out []salesRow
	for _, t := range s.transactions {
		at := t.At.UTC()
		if at.Before(from) || !at.Before(until) {
			continue
		}
		name := t.CustomerCode
		if i := s.customerIndex(t.CustomerCode); i >= 0 {
			name = s.customers[i].Name
		}
		out = append(out, salesRow{InvoiceNumber: t.InvoiceNumber, CustomerName: name, At: at, Total: t.Total})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SeedDemo fills the store with a demo catalog, customers and one account
func SeedDemo(s *Store) error {
	names := []struct {
		name  string
		unit  string
		price int64
	}{
		{"Teh Botol Sosro", "botol", 5000},
		{"Kopi Kapal Api", "sachet", 2000},
		{"Indomie Goreng", "bungkus", 3500},
		{"Beras Pandan Wangi 5kg", "karung", 78000},
		{"Gula Pasir 1kg", "kg", 17500},
		{"Minyak Goreng 2L", "botol", 36000},
		{"Sabun Lifebuoy", "pcs", 4500},
		{"Pasta Gigi Pepsodent", "pcs", 12000},
		{"Susu Ultra 1L", "kotak", 19000},
		{"Roti Tawar Sari Roti", "bungkus", 16000},
		{"Telur Ayam", "kg", 28000},
		{"Kecap Bango", "botol", 24000},
		{"Saus Sambal ABC", "botol", 11000},
		{"Aqua 600ml", "botol", 3500},
		{"Garam Dapur", "bungkus", 3000},
		{"Tepung Terigu Segitiga", "kg", 13000},
		{"Mentega Blue Band", "pcs", 9500},
		{"Biskuit Roma Kelapa", "bungkus", 10500},
		{"Shampoo Clear", "botol", 26000},
		{"Deterjen Rinso", "bungkus", 21000},
		{"Tisu Paseo", "pack", 15000},
		{"Kopi Good Day", "sachet", 2500},
		{"Sarden ABC", "kaleng", 14500},
		{"Mie Sedaap Soto", "bungkus", 3200},
		{"Air Mineral Galon", "galon", 20000},
	}
	for i, n := range names {
		err := s.AddProduct(model.Product{
			Code:      fmt.Sprintf("BRG%03d", i+1),
			Name:      n.name,
			UnitPrice: model.Amount(n.price),
			Unit:      n.unit,
		})
		if err != nil {
			return err
		}
	}

	customers := []model.Customer{
		{Code: "PLG001", Name: "Toko Sumber Rejeki", Phone: "081234567801", Address: "Jl. Merdeka No. 1, Padang"},
		{Code: "PLG002", Name: "Warung Bu Sri", Phone: "081234567802", Address: "Jl. Sudirman No. 12, Padang"},
		{Code: "PLG003", Name: "Kios Pak Darmo", Phone: "081234567803", Address: "Jl. Ahmad Yani No. 7, Bukittinggi"},
		{Code: "PLG004", Name: "Minimarket Berkah", Phone: "081234567804", Address: "Jl. Veteran No. 30, Solok"},
		{Code: "PLG005", Name: "Umum", Phone: "0", Address: "-"},
	}
	for _, c := range customers {
		if err := s.AddCustomer(c); err != nil {
			return err
		}
	}

	return s.AddUser("demo", "demo@tokokita.test", "password123")
}

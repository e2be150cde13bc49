package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"candle-shop/middleware"
	"candle-shop/models"
	"candle-shop/store"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type fakeAccounts struct {
	mu        sync.Mutex
	users     map[int64]models.User
	addresses map[int64][]models.Address
	nextID    int64
	err       error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{users: map[int64]models.User{}, addresses: map[int64][]models.Address{}}
}

func (f *fakeAccounts) add(u models.User) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return u
}

func (f *fakeAccounts) CreateAccount(_ context.Context, name, email, hash string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	f.mu.Lock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			f.mu.Unlock()
			return models.User{}, fmt.Errorf("%w: email already registered", store.ErrConflict)
		}
	}
	f.mu.Unlock()
	return f.add(models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleUser}), nil
}

func (f *fakeAccounts) GetAccount(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeAccounts) GetAccountByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (f *fakeAccounts) ListAddresses(_ context.Context, accountID int64) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Address{}, f.addresses[accountID]...), nil
}

func (f *fakeAccounts) AddAddress(_ context.Context, accountID int64, a models.Address) (models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[accountID]; !ok {
		return models.Address{}, store.ErrNotFound
	}
	existing := f.addresses[accountID]
	if len(existing) == 0 {
		a.IsDefault = true
	} else if a.IsDefault {
		for i := range existing {
			existing[i].IsDefault = false
		}
	}
	a.ID = int64(len(existing) + 1)
	a.UserID = accountID
	f.addresses[accountID] = append(existing, a)
	return a, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (fakeHasher) Verify(plain, hash string) bool  { return hash == "hashed:"+plain }

type fakeMinter struct{}

func (fakeMinter) Mint(accountID int64, role string) (string, error) {
	return fmt.Sprintf("token-%d-%s", accountID, role), nil
}

// fakeLedger keeps orders in memory with the same error taxonomy as the store
type fakeLedger struct {
	mu       sync.Mutex
	orders   []models.Order
	feedback map[int64]models.OrderFeedback
	prices   map[int64]decimal.Decimal
	err      error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		feedback: map[int64]models.OrderFeedback{},
		prices:   map[int64]decimal.Decimal{1: decimal.RequireFromString("45.00")},
	}
}

func (f *fakeLedger) PlaceOrder(_ context.Context, accountID int64, in models.PlaceOrderInput) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Order{}, f.err
	}
	if len(in.Items) == 0 {
		return models.Order{}, fmt.Errorf("%w: cart is empty", store.ErrInvalidInput)
	}
	order := models.Order{
		ID:               int64(len(f.orders) + 1),
		UserID:           accountID,
		Total:            in.Total,
		Status:           models.StatusPending,
		PaymentMethod:    models.NormalizePaymentMethod(in.PaymentMethod),
		ShippingSnapshot: in.Shipping,
		CreatedAt:        time.Now(),
	}
	for i, line := range in.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID: int64(i + 1), OrderID: order.ID, ProductID: line.ProductID,
			ProductName: "Amber Candle", Quantity: line.Quantity, Price: line.Price,
		})
	}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeLedger) ListOrders(_ context.Context, accountID int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Order{}
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].UserID == accountID {
			out = append(out, f.withFeedback(f.orders[i]))
		}
	}
	return out, nil
}

func (f *fakeLedger) withFeedback(o models.Order) models.Order {
	if fb, ok := f.feedback[o.ID]; ok {
		o.Feedback = &fb
	}
	return o
}

func (f *fakeLedger) GetOrder(_ context.Context, accountID, orderID int64) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == orderID && o.UserID == accountID {
			return f.withFeedback(o), nil
		}
	}
	return models.Order{}, fmt.Errorf("%w: order %d", store.ErrNotFound, orderID)
}

func (f *fakeLedger) UpdateStatus(_ context.Context, orderID int64, status models.OrderStatus) (models.StatusChange, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.StatusChange{}, false, f.err
	}
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			f.orders[i].Status = status
			return models.StatusChange{OrderID: orderID, Status: status, Email: "buyer@shop.test", Name: "Buyer"}, true, nil
		}
	}
	return models.StatusChange{}, false, nil
}

func (f *fakeLedger) ListAllOrders(_ context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Order{}, f.orders...), nil
}

func (f *fakeLedger) Stats(_ context.Context) (models.OrderStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := models.OrderStats{TotalRevenue: decimal.Zero, StatusBreakdown: []models.StatusCount{}}
	counts := map[models.OrderStatus]int{}
	for _, o := range f.orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		stats.TotalOrders++
		counts[o.Status]++
	}
	for status, n := range counts {
		stats.StatusBreakdown = append(stats.StatusBreakdown, models.StatusCount{Status: status, Count: n})
	}
	return stats, nil
}

func (f *fakeLedger) Submit(_ context.Context, accountID, orderID int64, rating int, message string) (models.OrderFeedback, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return models.OrderFeedback{}, fmt.Errorf("%w: rating must be between 1 and 5", store.ErrInvalidInput)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID != orderID || o.UserID != accountID {
			continue
		}
		if !o.Status.AcceptsFeedback() {
			return models.OrderFeedback{}, fmt.Errorf("%w: feedback can only be submitted for delivered orders", store.ErrInvalidState)
		}
		if _, dup := f.feedback[orderID]; dup {
			return models.OrderFeedback{}, fmt.Errorf("%w: feedback already submitted for this order", store.ErrConflict)
		}
		fb := models.OrderFeedback{ID: int64(len(f.feedback) + 1), OrderID: orderID, UserID: accountID, Rating: rating, Message: message, CreatedAt: time.Now()}
		f.feedback[orderID] = fb
		return fb, nil
	}
	return models.OrderFeedback{}, fmt.Errorf("%w: order %d", store.ErrNotFound, orderID)
}

func (f *fakeLedger) Get(_ context.Context, accountID, orderID int64) (*models.OrderFeedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == orderID && o.UserID == accountID {
			if fb, ok := f.feedback[orderID]; ok {
				return &fb, nil
			}
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%w: order %d", store.ErrNotFound, orderID)
}

type fakeNotifier struct {
	mu       sync.Mutex
	placed   []string
	statuses []models.StatusChange
	err      error
}

func (n *fakeNotifier) SendOrderConfirmationEmail(toEmail, _ string, _ models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, toEmail)
	return n.err
}

func (n *fakeNotifier) SendStatusUpdateEmail(change models.StatusChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, change)
	return n.err
}

func (n *fakeNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.placed), len(n.statuses)
}

type fakeProducts struct {
	products map[int64]models.Product
	err      error
}

func (f *fakeProducts) ListProducts(context.Context) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, f.err
}

func (f *fakeProducts) GetProduct(_ context.Context, id int64) (models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	p.ID = int64(len(f.products) + 1)
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, p models.Product) (models.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return models.Product{}, store.ErrNotFound
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProducts) Quote(_ context.Context, lines []models.CartLine) (models.CartQuote, error) {
	quote := models.CartQuote{Total: decimal.Zero}
	for _, line := range lines {
		p, ok := f.products[line.ProductID]
		if !ok {
			return models.CartQuote{}, fmt.Errorf("%w: product %d does not exist", store.ErrInvalidInput, line.ProductID)
		}
		priced := models.CartLine{ProductID: p.ID, Quantity: line.Quantity, Price: p.Price}
		quote.Lines = append(quote.Lines, models.QuoteLine{CartLine: priced, Name: p.Name, Subtotal: priced.Subtotal()})
		quote.Total = quote.Total.Add(priced.Subtotal())
	}
	return quote, nil
}

type fakeReviews struct{}

func (fakeReviews) Latest(_ context.Context, limit int) ([]models.Review, error) {
	out := []models.Review{}
	for i := 0; i < limit; i++ {
		out = append(out, models.Review{ID: int64(i + 1), UserName: "Mia", Rating: 5})
	}
	return out, nil
}

type fakeMessages struct {
	mu       sync.Mutex
	messages []models.Message
	replied  map[int64]bool
}

func (f *fakeMessages) Create(_ context.Context, msg models.Message) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = int64(len(f.messages) + 1)
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeMessages) List(context.Context) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Message{}
	for i := len(f.messages) - 1; i >= 0; i-- {
		out = append(out, f.messages[i])
	}
	return out, nil
}

func (f *fakeMessages) Get(_ context.Context, id int64) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Message{}, fmt.Errorf("%w: message %d", store.ErrNotFound, id)
}

func (f *fakeMessages) MarkReplied(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replied == nil {
		f.replied = map[int64]bool{}
	}
	f.replied[id] = true
	return nil
}

type sentReply struct {
	to, reply string
}

type fakeReplier struct {
	sent []sentReply
	err  error
}

func (f *fakeReplier) SendMessageReply(msg models.Message, reply string) error {
	f.sent = append(f.sent, sentReply{to: msg.Email, reply: reply})
	return f.err
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

var errDriver = errors.New("connection reset by peer")

// shop wires every controller onto one router with fakes behind them
type shop struct {
	accounts *fakeAccounts
	ledger   *fakeLedger
	notifier *fakeNotifier
	products *fakeProducts
	messages *fakeMessages
	replier  *fakeReplier
	router   *mux.Router
}

// asCaller authenticates every request as the account in the X-Test-Account header
func asCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-Test-Account"); raw != "" {
			var id int64
			var role string
			fmt.Sscanf(raw, "%d:%s", &id, &role)
			r = r.WithContext(middleware.WithIdentity(r.Context(), middleware.Identity{AccountID: id, Role: role}))
		}
		next.ServeHTTP(w, r)
	})
}

func newShop(t *testing.T) *shop {
	t.Helper()
	s := &shop{
		accounts: newFakeAccounts(),
		ledger:   newFakeLedger(),
		notifier: &fakeNotifier{},
		products: &fakeProducts{products: map[int64]models.Product{
			1: {ID: 1, Name: "Amber Candle", Price: decimal.RequireFromString("45.00")},
		}},
		messages: &fakeMessages{},
		replier:  &fakeReplier{},
		router:   mux.NewRouter(),
	}

	user := NewUserController(s.accounts, fakeHasher{}, fakeMinter{})
	address := NewAddressController(s.accounts)
	order := NewOrderController(s.ledger, s.accounts, s.notifier)
	feedback := NewFeedbackController(s.ledger)
	admin := NewAdminController(s.ledger, s.notifier)
	product := NewProductController(s.products)
	cart := NewCartController(s.products)
	message := NewMessageController(s.messages, s.replier)

	r := s.router
	r.Use(asCaller)
	r.HandleFunc("/auth/register", user.Register).Methods("POST")
	r.HandleFunc("/auth/login", user.Login).Methods("POST")
	r.HandleFunc("/profile", user.GetProfile).Methods("GET")
	r.HandleFunc("/addresses", address.GetAddresses).Methods("GET")
	r.HandleFunc("/addresses", address.AddAddress).Methods("POST")
	r.HandleFunc("/orders", order.CreateOrder).Methods("POST")
	r.HandleFunc("/orders/mine", order.GetOrders).Methods("GET")
	r.HandleFunc("/orders/{id}", order.GetOrder).Methods("GET")
	r.HandleFunc("/orders/{id}/feedback", feedback.SubmitFeedback).Methods("POST")
	r.HandleFunc("/orders/{id}/feedback", feedback.GetFeedback).Methods("GET")
	r.HandleFunc("/admin/orders", admin.GetAllOrders).Methods("GET")
	r.HandleFunc("/admin/orders/stats", admin.GetStats).Methods("GET")
	r.HandleFunc("/admin/orders/{id}/status", admin.UpdateOrderStatus).Methods("PUT")
	r.HandleFunc("/products", product.GetProducts).Methods("GET")
	r.HandleFunc("/products/{id}", product.GetProductByID).Methods("GET")
	r.HandleFunc("/admin/products", product.CreateProduct).Methods("POST")
	r.HandleFunc("/admin/products/{id}", product.UpdateProduct).Methods("PUT")
	r.HandleFunc("/admin/products/{id}", product.DeleteProduct).Methods("DELETE")
	r.HandleFunc("/cart/quote", cart.QuoteCart).Methods("POST")
	r.HandleFunc("/messages", message.SubmitMessage).Methods("POST")
	r.HandleFunc("/admin/messages", message.GetMessages).Methods("GET")
	r.HandleFunc("/admin/messages/{id}/reply", message.ReplyToMessage).Methods("POST")
	r.HandleFunc("/reviews", NewReviewController(fakeReviews{}).GetReviews).Methods("GET")
	r.HandleFunc("/health", NewHealthController(fakePinger{}).Health).Methods("GET")
	return s
}

// do sends a request as account (0 means anonymous)
func (s *shop) do(method, path, body string, account int64) *httptest.ResponseRecorder {
	return s.doAs(method, path, body, account, models.RoleUser)
}

func (s *shop) doAs(method, path, body string, account int64, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if account != 0 {
		req.Header.Set("X-Test-Account", fmt.Sprintf("%d:%s", account, role))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

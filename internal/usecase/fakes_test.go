package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Anniix/kisanx-backend/internal/clients"
	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/Anniix/kisanx-backend/internal/events"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeProductRepo struct {
	products map[int64]*domain.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*domain.Product), nextID: 1}
}

func (r *fakeProductRepo) CreateProduct(product *domain.Product) (*domain.Product, error) {
	p := *product
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	r.products[p.ID] = &p
	out := p
	return &out, nil
}

func (r *fakeProductRepo) GetProductByID(id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *fakeProductRepo) ListProducts() ([]domain.Product, error) {
	ids := make([]int64, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.products[id])
	}
	return out, nil
}

func (r *fakeProductRepo) DeleteProductByFarmer(id, farmerID int64) error {
	p, ok := r.products[id]
	if !ok || p.FarmerID != farmerID {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DeleteProductsByFarmer(farmerID int64) (int64, error) {
	var deleted int64
	for id, p := range r.products {
		if p.FarmerID == farmerID {
			delete(r.products, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeProductRepo) DecrementQuantity(id int64, kg float64) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Quantity < kg {
		return domain.ErrInsufficientStock
	}
	p.Quantity -= kg
	return nil
}

func (r *fakeProductRepo) IncrementQuantity(id int64, kg float64) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Quantity += kg
	return nil
}

type fakeOrderRepo struct {
	orders map[int64]*domain.Order
	nextID int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*domain.Order), nextID: 1}
}

func (r *fakeOrderRepo) CreateOrder(order *domain.Order) (*domain.Order, error) {
	o := *order
	o.ID = r.nextID
	r.nextID++
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	r.orders[o.ID] = &o
	out := o
	return &out, nil
}

func (r *fakeOrderRepo) GetOrderByID(id int64) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (r *fakeOrderRepo) GetOrderForCustomer(id, customerID int64) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok || o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(id int64, status domain.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.OrderStatus = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *fakeOrderRepo) UpdatePaymentState(id int64, paymentStatus domain.PaymentStatus, orderStatus domain.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.PaymentStatus = paymentStatus
	o.OrderStatus = orderStatus
	o.UpdatedAt = time.Now()
	return nil
}

func (r *fakeOrderRepo) ListOrdersByCustomer(customerID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListOrdersByFarmer(farmerID int64) ([]domain.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) DeleteOrdersByCustomer(customerID int64) (int64, error) {
	var deleted int64
	for id, o := range r.orders {
		if o.CustomerID == customerID {
			delete(r.orders, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeOrderRepo) CountDeliveredByFarmer(farmerID int64) (int, error) {
	return 0, nil
}

func (r *fakeOrderRepo) CountActiveByCustomer(customerID int64) (int, error) {
	count := 0
	for _, o := range r.orders {
		if o.CustomerID == customerID && o.OrderStatus != domain.StatusCancelled {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	users  map[int64]*domain.User
	points map[int64]int
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User), points: make(map[int64]int), nextID: 1}
}

func (r *fakeUserRepo) CreateUser(user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("duplicate email: %w", domain.ErrValidation)
		}
	}
	u := *user
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	r.users[u.ID] = &u
	out := u
	return &out, nil
}

func (r *fakeUserRepo) GetUserByID(id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	out.Points = r.points[id]
	return &out, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetUserByContact(contact string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == contact || u.Phone == contact {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) UpdateUser(id int64, updates map[string]interface{}) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if v, ok := updates["firstName"].(string); ok {
		u.FirstName = v
	}
	if v, ok := updates["lastName"].(string); ok {
		u.LastName = v
	}
	if v, ok := updates["address"].(string); ok {
		u.Address = v
	}
	if v, ok := updates["pushToken"].(string); ok {
		u.PushToken = v
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) UpdatePassword(id int64, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) AddPoints(id int64, delta int) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	r.points[id] += delta
	return nil
}

func (r *fakeUserRepo) DeleteUser(id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeCartRepo struct {
	items        map[int64]map[int64]int
	clearedCount int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[int64]map[int64]int)}
}

func (r *fakeCartRepo) AddItem(userID, productID int64, quantity int) error {
	if r.items[userID] == nil {
		r.items[userID] = make(map[int64]int)
	}
	r.items[userID][productID] += quantity
	return nil
}

func (r *fakeCartRepo) SetItemQuantity(userID, productID int64, quantity int) error {
	cart, ok := r.items[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := cart[productID]; !ok {
		return domain.ErrNotFound
	}
	if quantity <= 0 {
		delete(cart, productID)
		return nil
	}
	cart[productID] = quantity
	return nil
}

func (r *fakeCartRepo) GetCart(userID int64) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID, Items: []domain.CartItem{}}
	ids := make([]int64, 0, len(r.items[userID]))
	for id := range r.items[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		cart.Items = append(cart.Items, domain.CartItem{ProductID: id, Quantity: r.items[userID][id]})
	}
	return cart, nil
}

func (r *fakeCartRepo) RemoveItem(userID, productID int64) error {
	cart, ok := r.items[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := cart[productID]; !ok {
		return domain.ErrNotFound
	}
	delete(cart, productID)
	return nil
}

func (r *fakeCartRepo) ClearCart(userID int64) error {
	delete(r.items, userID)
	r.clearedCount++
	return nil
}

type fakePushSender struct {
	sent []string
}

func (p *fakePushSender) Send(ctx context.Context, token, title, body string) error {
	p.sent = append(p.sent, token+": "+title)
	return nil
}

type fakePublisher struct {
	events []string
}

func (p *fakePublisher) Publish(event string, payload map[string]interface{}) {
	p.events = append(p.events, event)
}

func (p *fakePublisher) Close() error { return nil }

type fakeOTPStore struct {
	codes map[string]string
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{codes: make(map[string]string)}
}

func (s *fakeOTPStore) Set(ctx context.Context, contact, code string, ttl time.Duration) error {
	s.codes[contact] = code
	return nil
}

func (s *fakeOTPStore) Get(ctx context.Context, contact string) (string, error) {
	code, ok := s.codes[contact]
	if !ok {
		return "", domain.ErrNotFound
	}
	return code, nil
}

func (s *fakeOTPStore) Delete(ctx context.Context, contact string) error {
	delete(s.codes, contact)
	return nil
}

type fakeMailer struct {
	sent map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(map[string]string)}
}

func (m *fakeMailer) SendOTP(ctx context.Context, email, otp, subject string) error {
	m.sent[email] = otp
	return nil
}

var (
	_ domain.ProductRepository = (*fakeProductRepo)(nil)
	_ domain.OrderRepository   = (*fakeOrderRepo)(nil)
	_ domain.UserRepository    = (*fakeUserRepo)(nil)
	_ domain.CartRepository    = (*fakeCartRepo)(nil)
	_ domain.OTPStore          = (*fakeOTPStore)(nil)
	_ clients.PushSender       = (*fakePushSender)(nil)
	_ clients.Mailer           = (*fakeMailer)(nil)
	_ events.Publisher         = (*fakePublisher)(nil)
)

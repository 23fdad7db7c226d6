package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/payments"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

// memRegistry is an in-memory repositories.Registry. RunInTx snapshots state
// before the callback and restores it when the callback fails, so rollback
// behaviour can be asserted in unit tests.
type memRegistry struct {
	products  map[uuid.UUID]*domain.Product
	carts     map[uuid.UUID]*domain.Cart
	addresses []*domain.Address
	orders    []*domain.Order
	users     map[uuid.UUID]domain.User
	favorites []domain.Favorite
	failures  []domain.WebhookFailure

	seq int
}

func newMemRegistry() *memRegistry {
	return &memRegistry{
		products: map[uuid.UUID]*domain.Product{},
		carts:    map[uuid.UUID]*domain.Cart{},
		users:    map[uuid.UUID]domain.User{},
	}
}

func (r *memRegistry) nextTime() time.Time {
	r.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
}

func (r *memRegistry) addProduct(p domain.Product) *domain.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}
	stored := p
	r.products[p.ID] = &stored
	return &stored
}

func (r *memRegistry) addUser(u domain.User) domain.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *memRegistry) addCart(userID uuid.UUID, items ...domain.CartItem) *domain.Cart {
	cart := &domain.Cart{ID: uuid.New(), UserID: userID}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.CartID = cart.ID
		if product, ok := r.products[item.ProductID]; ok {
			item.Product = *product
		}
		cart.Items = append(cart.Items, item)
	}
	r.carts[cart.ID] = cart
	return cart
}

func (r *memRegistry) addAddress(a domain.Address) *domain.Address {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = r.nextTime()
	stored := a
	r.addresses = append(r.addresses, &stored)
	return &stored
}

func (r *memRegistry) snapshot() *memRegistry {
	cp := newMemRegistry()
	cp.seq = r.seq
	for id, p := range r.products {
		v := *p
		cp.products[id] = &v
	}
	for id, c := range r.carts {
		v := *c
		v.Items = append([]domain.CartItem(nil), c.Items...)
		cp.carts[id] = &v
	}
	for _, a := range r.addresses {
		v := *a
		cp.addresses = append(cp.addresses, &v)
	}
	for _, o := range r.orders {
		v := *o
		v.Items = append([]domain.OrderItem(nil), o.Items...)
		cp.orders = append(cp.orders, &v)
	}
	for id, u := range r.users {
		cp.users[id] = u
	}
	cp.favorites = append([]domain.Favorite(nil), r.favorites...)
	cp.failures = append([]domain.WebhookFailure(nil), r.failures...)
	return cp
}

func (r *memRegistry) restore(from *memRegistry) {
	r.products = from.products
	r.carts = from.carts
	r.addresses = from.addresses
	r.orders = from.orders
	r.users = from.users
	r.favorites = from.favorites
	r.failures = from.failures
	r.seq = from.seq
}

func (r *memRegistry) RunInTx(ctx context.Context, fn func(tx repositories.Registry) error) error {
	saved := r.snapshot()
	if err := fn(r); err != nil {
		r.restore(saved)
		return err
	}
	return nil
}

func (r *memRegistry) Close(context.Context) error { return nil }

func (r *memRegistry) Users() repositories.UserRepository       { return memUsers{r} }
func (r *memRegistry) Products() repositories.ProductRepository { return memProducts{r} }
func (r *memRegistry) Carts() repositories.CartRepository       { return memCarts{r} }
func (r *memRegistry) Addresses() repositories.AddressRepository {
	return memAddresses{r}
}
func (r *memRegistry) Orders() repositories.OrderRepository { return memOrders{r} }
func (r *memRegistry) Favorites() repositories.FavoriteRepository {
	return memFavorites{r}
}
func (r *memRegistry) WebhookFailures() repositories.WebhookFailureRepository {
	return memFailures{r}
}

func notFound(op string) error {
	return repositories.NewNotFound(op, errors.New("record not found"))
}

type memUsers struct{ r *memRegistry }

func (m memUsers) FindByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	user, ok := m.r.users[id]
	if !ok {
		return domain.User{}, notFound("user.find")
	}
	return user, nil
}

type memProducts struct{ r *memRegistry }

func (m memProducts) FindByID(_ context.Context, id uuid.UUID) (domain.Product, error) {
	product, ok := m.r.products[id]
	if !ok {
		return domain.Product{}, notFound("product.find")
	}
	return *product, nil
}

func (m memProducts) List(_ context.Context, filter repositories.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.r.products {
		if p.Status != domain.ProductStatusActive {
			continue
		}
		if filter.OnSale != nil && p.IsOnSale != *filter.OnSale {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memProducts) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	product, ok := m.r.products[id]
	if !ok {
		return notFound("product.decrement")
	}
	if product.Stock < quantity {
		return repositories.NewConflict("product.decrement", errors.New("insufficient stock"))
	}
	product.Stock -= quantity
	return nil
}

type memCarts struct{ r *memRegistry }

func (m memCarts) FindByID(_ context.Context, id uuid.UUID) (domain.Cart, error) {
	cart, ok := m.r.carts[id]
	if !ok {
		return domain.Cart{}, notFound("cart.find")
	}
	return *cart, nil
}

func (m memCarts) FindByUser(_ context.Context, userID uuid.UUID) (domain.Cart, error) {
	for _, cart := range m.r.carts {
		if cart.UserID == userID {
			return *cart, nil
		}
	}
	return domain.Cart{}, notFound("cart.find_by_user")
}

func (m memCarts) GetOrCreate(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	if cart, err := m.FindByUser(ctx, userID); err == nil {
		return cart, nil
	}
	cart := &domain.Cart{ID: uuid.New(), UserID: userID}
	m.r.carts[cart.ID] = cart
	return *cart, nil
}

func (m memCarts) AddItem(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	cart, ok := m.r.carts[cartID]
	if !ok {
		return notFound("cart.add_item")
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			return nil
		}
	}
	item := domain.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: quantity}
	if product, ok := m.r.products[productID]; ok {
		item.Product = *product
	}
	cart.Items = append(cart.Items, item)
	return nil
}

func (m memCarts) SetItemQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	cart, ok := m.r.carts[cartID]
	if !ok {
		return notFound("cart.set_quantity")
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return notFound("cart.set_quantity")
}

func (m memCarts) RemoveItem(_ context.Context, cartID, productID uuid.UUID) error {
	cart, ok := m.r.carts[cartID]
	if !ok {
		return notFound("cart.remove_item")
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return notFound("cart.remove_item")
}

func (m memCarts) ClearItems(_ context.Context, cartID uuid.UUID) error {
	cart, ok := m.r.carts[cartID]
	if !ok {
		return notFound("cart.clear")
	}
	cart.Items = nil
	return nil
}

type memAddresses struct{ r *memRegistry }

func (m memAddresses) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range m.r.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m memAddresses) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (domain.Address, error) {
	for _, a := range m.r.addresses {
		if a.ID == id && a.UserID == userID {
			return *a, nil
		}
	}
	return domain.Address{}, notFound("address.find")
}

func (m memAddresses) FirstByUser(ctx context.Context, userID, exceptID uuid.UUID) (domain.Address, error) {
	addresses, _ := m.ListByUser(ctx, userID)
	for _, a := range addresses {
		if a.ID != exceptID {
			return a, nil
		}
	}
	return domain.Address{}, notFound("address.first")
}

func (m memAddresses) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	addresses, _ := m.ListByUser(ctx, userID)
	return int64(len(addresses)), nil
}

func (m memAddresses) Create(_ context.Context, address *domain.Address) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	address.CreatedAt = m.r.nextTime()
	stored := *address
	m.r.addresses = append(m.r.addresses, &stored)
	return nil
}

func (m memAddresses) Update(_ context.Context, address *domain.Address) error {
	for _, a := range m.r.addresses {
		if a.ID == address.ID {
			created := a.CreatedAt
			userID := a.UserID
			*a = *address
			a.CreatedAt = created
			a.UserID = userID
			return nil
		}
	}
	return notFound("address.update")
}

func (m memAddresses) Delete(_ context.Context, id uuid.UUID) error {
	for i, a := range m.r.addresses {
		if a.ID == id {
			m.r.addresses = append(m.r.addresses[:i], m.r.addresses[i+1:]...)
			return nil
		}
	}
	return notFound("address.delete")
}

func (m memAddresses) ClearDefaults(_ context.Context, userID, exceptID uuid.UUID) error {
	for _, a := range m.r.addresses {
		if a.UserID == userID && a.ID != exceptID {
			a.IsDefault = false
		}
	}
	return nil
}

func (m memAddresses) SetDefault(_ context.Context, id uuid.UUID) error {
	for _, a := range m.r.addresses {
		if a.ID == id {
			a.IsDefault = true
			return nil
		}
	}
	return notFound("address.set_default")
}

type memOrders struct{ r *memRegistry }

func (m memOrders) Create(_ context.Context, order *domain.Order) error {
	for _, existing := range m.r.orders {
		if existing.PaymentID == order.PaymentID {
			return repositories.NewConflict("order.create", errors.New("duplicate payment id"))
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = m.r.nextTime()
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	m.r.orders = append(m.r.orders, &stored)
	return nil
}

func (m memOrders) FindByID(_ context.Context, id uuid.UUID) (domain.Order, error) {
	for _, o := range m.r.orders {
		if o.ID == id {
			return *o, nil
		}
	}
	return domain.Order{}, notFound("order.find")
}

func (m memOrders) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (domain.Order, error) {
	for _, o := range m.r.orders {
		if o.ID == id && o.UserID == userID {
			return *o, nil
		}
	}
	return domain.Order{}, notFound("order.find_for_user")
}

func (m memOrders) FindByPaymentID(_ context.Context, paymentID string) (domain.Order, error) {
	for _, o := range m.r.orders {
		if o.PaymentID == paymentID {
			return *o, nil
		}
	}
	return domain.Order{}, notFound("order.find_by_payment")
}

func (m memOrders) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memOrders) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	for _, o := range m.r.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return notFound("order.update_status")
}

type memFavorites struct{ r *memRegistry }

func (m memFavorites) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	var out []domain.Favorite
	for _, f := range m.r.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m memFavorites) Exists(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	for _, f := range m.r.favorites {
		if f.UserID == userID && f.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (m memFavorites) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if exists, _ := m.Exists(ctx, userID, productID); exists {
		return nil
	}
	m.r.favorites = append(m.r.favorites, domain.Favorite{
		ID: uuid.New(), UserID: userID, ProductID: productID,
	})
	return nil
}

func (m memFavorites) Remove(_ context.Context, userID, productID uuid.UUID) error {
	for i, f := range m.r.favorites {
		if f.UserID == userID && f.ProductID == productID {
			m.r.favorites = append(m.r.favorites[:i], m.r.favorites[i+1:]...)
			return nil
		}
	}
	return nil
}

type memFailures struct{ r *memRegistry }

func (m memFailures) Create(_ context.Context, failure *domain.WebhookFailure) error {
	if failure.ID == uuid.Nil {
		failure.ID = uuid.New()
	}
	failure.CreatedAt = m.r.nextTime()
	m.r.failures = append(m.r.failures, *failure)
	return nil
}

func (m memFailures) List(_ context.Context, limit int) ([]domain.WebhookFailure, error) {
	out := append([]domain.WebhookFailure(nil), m.r.failures...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// stubProvider records the last checkout session request.
type stubProvider struct {
	req     payments.CheckoutSessionRequest
	session payments.CheckoutSession
	err     error
	calls   int
}

func (p *stubProvider) CreateCheckoutSession(_ context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
	p.calls++
	p.req = req
	if p.err != nil {
		return payments.CheckoutSession{}, p.err
	}
	return p.session, nil
}

// stubMailer records confirmation sends.
type stubMailer struct {
	recipients []string
	orders     []domain.Order
	err        error
}

func (m *stubMailer) SendOrderConfirmation(_ context.Context, recipient string, order domain.Order) error {
	m.recipients = append(m.recipients, recipient)
	m.orders = append(m.orders, order)
	return m.err
}

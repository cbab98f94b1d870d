package app

import (
	"context"
	"sync"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. A
// single mutex plays the role of the row locks: WithTx holds it for the
// whole callback, and nested WithTx calls join the outer one via the
// context marker, mirroring the real tx-in-context behavior.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	holds    map[string]domain.Hold
	orders   map[string]domain.Order
	webhooks map[string]domain.PaymentWebhook
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]domain.Product),
		holds:    make(map[string]domain.Hold),
		orders:   make(map[string]domain.Order),
		webhooks: make(map[string]domain.PaymentWebhook),
	}
}

type fakeTxKey struct{}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(context.WithValue(ctx, fakeTxKey{}, true))
}

// locked takes the store mutex unless the context already carries a
// transaction, in which case WithTx holds it.
func (f *fakeStore) locked(ctx context.Context, fn func() error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn()
}

func (f *fakeStore) addProduct(p domain.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

func (f *fakeStore) addHold(h domain.Hold) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds[h.ID] = h
}

func (f *fakeStore) addOrder(o domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
}

func (f *fakeStore) product(id string) domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id]
}

func (f *fakeStore) hold(id string) domain.Hold {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holds[id]
}

func (f *fakeStore) order(id string) domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id]
}

func (f *fakeStore) webhookByKey(key string) (domain.PaymentWebhook, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.webhooks {
		if w.IdempotencyKey == key {
			return w, true
		}
	}
	return domain.PaymentWebhook{}, false
}

func (f *fakeStore) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	var out domain.Product
	err := f.locked(ctx, func() error {
		p, ok := f.products[productID]
		if !ok {
			return domain.ErrProductNotFound
		}
		out = p
		return nil
	})
	return out, err
}

func (f *fakeStore) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	return f.GetProduct(ctx, productID)
}

func (f *fakeStore) UpdateAvailableStock(ctx context.Context, productID string, available int) error {
	return f.locked(ctx, func() error {
		p, ok := f.products[productID]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.AvailableStock = available
		f.products[productID] = p
		return nil
	})
}

func (f *fakeStore) CreateHold(ctx context.Context, hold domain.Hold) error {
	return f.locked(ctx, func() error {
		f.holds[hold.ID] = hold
		return nil
	})
}

func (f *fakeStore) GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error) {
	var out domain.Hold
	err := f.locked(ctx, func() error {
		h, ok := f.holds[holdID]
		if !ok {
			return domain.ErrHoldNotFound
		}
		out = h
		return nil
	})
	return out, err
}

func (f *fakeStore) MarkHoldConsumed(ctx context.Context, holdID string) error {
	return f.locked(ctx, func() error {
		h, ok := f.holds[holdID]
		if !ok {
			return domain.ErrHoldNotFound
		}
		h.IsConsumed = true
		f.holds[holdID] = h
		return nil
	})
}

func (f *fakeStore) FindExpiredHolds(ctx context.Context, now time.Time) ([]domain.Hold, error) {
	var out []domain.Hold
	err := f.locked(ctx, func() error {
		for _, h := range f.holds {
			if !h.IsConsumed && !h.ExpiresAt.After(now) {
				out = append(out, h)
			}
		}
		return nil
	})
	return out, err
}

func (f *fakeStore) CreateOrder(ctx context.Context, order domain.Order) error {
	return f.locked(ctx, func() error {
		for _, o := range f.orders {
			if o.HoldID == order.HoldID {
				return domain.ErrHoldAlreadyUsed
			}
		}
		f.orders[order.ID] = order
		return nil
	})
}

func (f *fakeStore) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	var out domain.Order
	err := f.locked(ctx, func() error {
		o, ok := f.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		out = o
		return nil
	})
	return out, err
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return f.locked(ctx, func() error {
		o, ok := f.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.Status = status
		f.orders[orderID] = o
		return nil
	})
}

func (f *fakeStore) FindWebhookByKey(ctx context.Context, idempotencyKey string) (*domain.PaymentWebhook, error) {
	var out *domain.PaymentWebhook
	err := f.locked(ctx, func() error {
		for _, w := range f.webhooks {
			if w.IdempotencyKey == idempotencyKey {
				copied := w
				out = &copied
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (f *fakeStore) CreateWebhook(ctx context.Context, webhook domain.PaymentWebhook) error {
	return f.locked(ctx, func() error {
		for _, w := range f.webhooks {
			if w.IdempotencyKey == webhook.IdempotencyKey {
				return domain.ErrDuplicateWebhook
			}
		}
		f.webhooks[webhook.ID] = webhook
		return nil
	})
}

func (f *fakeStore) BindWebhookOrder(ctx context.Context, webhookID, orderID string) error {
	return f.locked(ctx, func() error {
		w, ok := f.webhooks[webhookID]
		if !ok {
			return domain.ErrInvalidID
		}
		w.OrderID = &orderID
		f.webhooks[webhookID] = w
		return nil
	})
}

func (f *fakeStore) MarkWebhookProcessed(ctx context.Context, webhookID string) error {
	return f.locked(ctx, func() error {
		w, ok := f.webhooks[webhookID]
		if !ok {
			return domain.ErrInvalidID
		}
		w.Processed = true
		f.webhooks[webhookID] = w
		return nil
	})
}

func (f *fakeStore) FindUnresolvedWebhooks(ctx context.Context) ([]domain.PaymentWebhook, error) {
	var out []domain.PaymentWebhook
	err := f.locked(ctx, func() error {
		for _, w := range f.webhooks {
			if !w.Processed && w.OrderID == nil {
				out = append(out, w)
			}
		}
		return nil
	})
	return out, err
}

func (f *fakeStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var out *domain.Order
	err := f.locked(ctx, func() error {
		o, ok := f.orders[orderID]
		if !ok {
			return nil
		}
		copied := o
		out = &copied
		return nil
	})
	return out, err
}

func (f *fakeStore) CreateProduct(ctx context.Context, product domain.Product) error {
	return f.locked(ctx, func() error {
		f.products[product.ID] = product
		return nil
	})
}

func (f *fakeStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := f.locked(ctx, func() error {
		for _, p := range f.products {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// fakeCache is an in-memory SnapshotCache with injectable failures.
type fakeCache struct {
	mu            sync.Mutex
	entries       map[string]domain.Product
	sets          int
	invalidations int
	getErr        error
	setErr        error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.Product)}
}

func (c *fakeCache) Get(ctx context.Context, productID string) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.entries[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *fakeCache) Set(ctx context.Context, product domain.Product, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[product.ID] = product
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productID)
	c.invalidations++
	return nil
}

// fakeGuard grants or withholds the job lock deterministically.
type fakeGuard struct {
	mu       sync.Mutex
	denied   bool
	acquired int
	released int
}

func (g *fakeGuard) TryAcquire(ctx context.Context, jobID int64) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.denied {
		return nil, false, nil
	}
	g.acquired++
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.released++
	}, true, nil
}

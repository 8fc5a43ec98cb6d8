package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// memStore はカート系リポジトリのインメモリ実装。
// WithinTx は txMu で直列化し、エラー時は変更前に戻す（行ロック＋ロールバックの代わり）。
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products map[int64]model.Product
	carts    map[int64]model.Cart
	items    map[int64]model.CartItem

	nextCartID int64
	nextItemID int64

	// 次の明細作成で返すエラー
	createItemErr error
}

func newMemStore(products ...model.Product) *memStore {
	s := &memStore{
		products: map[int64]model.Product{},
		carts:    map[int64]model.Cart{},
		items:    map[int64]model.CartItem{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) snapshot() (map[int64]model.Product, map[int64]model.Cart, map[int64]model.CartItem, int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make(map[int64]model.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	carts := make(map[int64]model.Cart, len(s.carts))
	for k, v := range s.carts {
		carts[k] = v
	}
	items := make(map[int64]model.CartItem, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	return products, carts, items, s.nextCartID, s.nextItemID
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	products, carts, items, nextCart, nextItem := s.snapshot()
	if err := fn(memTxRepos{s}); err != nil {
		s.mu.Lock()
		s.products, s.carts, s.items = products, carts, items
		s.nextCartID, s.nextItemID = nextCart, nextItem
		s.mu.Unlock()
		return err
	}
	return nil
}

// テスト検証用：ユーザーのカート明細
func (s *memStore) itemsOf(userID int64) []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cartID int64
	for _, c := range s.carts {
		if c.UserID == userID {
			cartID = c.ID
		}
	}
	var out []model.CartItem
	for _, it := range s.items {
		if cartID != 0 && it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) cartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

type memTxRepos struct{ s *memStore }

func (r memTxRepos) Carts() repo.CartRepository         { return memCarts{r.s} }
func (r memTxRepos) CartItems() repo.CartItemRepository { return memItems{r.s} }
func (r memTxRepos) Products() repo.ProductRepository   { return memProducts{r.s} }

type memCarts struct{ s *memStore }

func (r memCarts) GetOrCreateByUserID(_ context.Context, userID int64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	r.s.nextCartID++
	c := model.Cart{ID: r.s.nextCartID, UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.s.carts[c.ID] = c
	return c, nil
}

func (r memCarts) FindByUserID(_ context.Context, userID int64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (r memCarts) FindByID(_ context.Context, cartID int64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[cartID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	return c, nil
}

type memItems struct{ s *memStore }

func (r memItems) ListByCartID(_ context.Context, cartID int64) ([]model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.CartItem
	for _, it := range r.s.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memItems) SumQuantityByUserID(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var sum int64
	for _, it := range r.s.items {
		if c, ok := r.s.carts[it.CartID]; ok && c.UserID == userID {
			sum += it.Quantity
		}
	}
	return sum, nil
}

func (r memItems) FindByIDForUpdate(_ context.Context, cartItemID int64) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.items[cartItemID]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (r memItems) FindByCartAndProductForUpdate(_ context.Context, cartID int64, productID int64) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, it := range r.s.items {
		if it.CartID == cartID && it.ProductID == productID {
			return it, nil
		}
	}
	return model.CartItem{}, repo.ErrNotFound
}

func (r memItems) Create(_ context.Context, item model.CartItem) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.createItemErr; err != nil {
		r.s.createItemErr = nil
		return model.CartItem{}, err
	}
	for _, it := range r.s.items {
		if it.CartID == item.CartID && it.ProductID == item.ProductID {
			return model.CartItem{}, repo.ErrDuplicate
		}
	}
	r.s.nextItemID++
	item.ID = r.s.nextItemID
	r.s.items[item.ID] = item
	return item, nil
}

func (r memItems) UpdateQuantity(_ context.Context, cartItemID int64, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.items[cartItemID]
	if !ok {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	r.s.items[cartItemID] = it
	return nil
}

func (r memItems) DeleteByID(_ context.Context, cartItemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[cartItemID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.items, cartItemID)
	return nil
}

type memProducts struct{ s *memStore }

func (r memProducts) List(_ context.Context) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r memProducts) FindByID(_ context.Context, id int64) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) FindByIDs(_ context.Context, ids []int64) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) Create(_ context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.ID = int64(len(r.s.products) + 1)
	r.s.products[p.ID] = p
	return p, nil
}

func (r memProducts) Update(_ context.Context, p model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return repo.ErrNotFound
	}
	r.s.products[p.ID] = p
	return nil
}

func (r memProducts) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

// メトリクス記録の確認用
type recordingMetrics struct {
	mu    sync.Mutex
	calls []string
}

func (m *recordingMetrics) CartOperation(operation string, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, operation+":"+result)
}

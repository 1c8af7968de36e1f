package usecase_test

import (
	"context"
	"sort"
	"sync"

	"github.com/fekuna/omnipos-stock-service/internal/branch"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/ledger"
	ledgerdto "github.com/fekuna/omnipos-stock-service/internal/ledger/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/notification"
	"github.com/fekuna/omnipos-stock-service/internal/transfer"
)

// memState is one version of the whole store. Transactions work on a clone and swap it in on
// commit, so a failed unit of work leaves nothing behind.
type memState struct {
	lots          map[string]model.WarehouseLot
	products      map[string]model.BranchProduct
	ledger        []model.LedgerEntry
	notifications []*model.Notification
	branches      map[string]string
}

func newMemState() *memState {
	return &memState{
		lots:     map[string]model.WarehouseLot{},
		products: map[string]model.BranchProduct{},
		branches: map[string]string{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.branches {
		c.branches[k] = v
	}
	c.ledger = append([]model.LedgerEntry(nil), s.ledger...)
	c.notifications = append([]*model.Notification(nil), s.notifications...)
	return c
}

// memStore is a transfer.TxScope over memState. Units of work are serialized.
type memStore struct {
	mu        sync.Mutex
	committed *memState

	// appendErr, when set, fails a ledger append.
	appendErr func(e model.LedgerEntry) error
	// beforeLotWrite runs ahead of every lot compare-and-swap, with the transaction's state
	// and the committed state, to simulate a writer that got in first.
	beforeLotWrite func(tx, committed *memState, lotID string)
	executions     int
}

func newMemStore() *memStore {
	return &memStore{committed: newMemState()}
}

func (m *memStore) Execute(ctx context.Context, fn func(ctx context.Context, repos transfer.Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executions++

	tx := m.committed.clone()
	if err := fn(ctx, &memRepos{store: m, state: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.committed = tx
	return nil
}

func (m *memStore) Repositories() transfer.Repositories {
	return &memRepos{store: m, state: m.snapshot()}
}

func (m *memStore) snapshot() *memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed.clone()
}

func (m *memStore) seedLot(l model.WarehouseLot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed.lots[l.ID] = l
}

func (m *memStore) seedProduct(p model.BranchProduct) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed.products[p.ID] = p
}

// dropProduct deletes a product the way an outside flow would, leaving the ledger alone.
func (m *memStore) dropProduct(id string) model.BranchProduct {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.committed.products[id]
	delete(m.committed.products, id)
	return p
}

func (m *memStore) seedBranch(userID, branchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed.branches[userID] = branchID
}

func (m *memStore) productsFor(sku, ownerID string) []model.BranchProduct {
	var out []model.BranchProduct
	for _, p := range m.snapshot().products {
		if p.SKU == sku && p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out
}

type memRepos struct {
	store *memStore
	state *memState
}

func (r *memRepos) Lots() inventory.LotRepository          { return memLots{r} }
func (r *memRepos) Products() inventory.ProductRepository  { return memProducts{r} }
func (r *memRepos) Ledger() ledger.Repository              { return memLedger{r} }
func (r *memRepos) Notifications() notification.Repository { return memNotifications{r} }
func (r *memRepos) Branches() branch.Repository            { return memBranches{r} }

type memLots struct{ *memRepos }

func (r memLots) GetLot(_ context.Context, id string) (*model.WarehouseLot, error) {
	l, ok := r.state.lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r memLots) FindLotBySKUForUpdate(_ context.Context, sku string) (*model.WarehouseLot, error) {
	for _, l := range r.state.lots {
		if l.SKU == sku {
			return &l, nil
		}
	}
	return nil, nil
}

func (r memLots) SetLotQuantity(_ context.Context, id string, observed, newQuantity int) (bool, error) {
	r.interfere(id)
	l, ok := r.state.lots[id]
	if !ok || l.Quantity != observed {
		return false, nil
	}
	l.Quantity = newQuantity
	r.state.lots[id] = l
	return true, nil
}

func (r memLots) DeleteLot(_ context.Context, id string, observed int) (bool, error) {
	r.interfere(id)
	l, ok := r.state.lots[id]
	if !ok || l.Quantity != observed {
		return false, nil
	}
	delete(r.state.lots, id)
	return true, nil
}

func (r memLots) interfere(id string) {
	if r.store.beforeLotWrite != nil {
		r.store.beforeLotWrite(r.state, r.store.committed, id)
	}
}

type memProducts struct{ *memRepos }

func (r memProducts) LockOwnerSKU(context.Context, string, string) error { return nil }
func (r memProducts) LockProduct(context.Context, string) error          { return nil }

func (r memProducts) FindBySKUAndOwner(_ context.Context, sku, ownerID string) (*model.BranchProduct, error) {
	for _, p := range r.state.products {
		if p.SKU == sku && p.OwnerID == ownerID {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memProducts) GetByID(_ context.Context, id string) (*model.BranchProduct, error) {
	p, ok := r.state.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) GetByIDForUpdate(ctx context.Context, id string) (*model.BranchProduct, error) {
	return r.GetByID(ctx, id)
}

func (r memProducts) Create(_ context.Context, p *model.BranchProduct) error {
	r.state.products[p.ID] = *p
	return nil
}

func (r memProducts) AddQuantity(_ context.Context, id string, delta int) (int, bool, error) {
	p, ok := r.state.products[id]
	if !ok || p.Quantity+delta < 0 {
		return 0, false, nil
	}
	p.Quantity += delta
	r.state.products[id] = p
	return p.Quantity, true, nil
}

func (r memProducts) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.state.products[id]; !ok {
		return false, nil
	}
	delete(r.state.products, id)
	return true, nil
}

type memLedger struct{ *memRepos }

func (r memLedger) Append(_ context.Context, e model.LedgerEntry) error {
	if err := e.Header().Validate(); err != nil {
		return err
	}
	if r.store.appendErr != nil {
		if err := r.store.appendErr(e); err != nil {
			return err
		}
	}
	r.state.ledger = append(r.state.ledger, e)
	return nil
}

func (r memLedger) LatestForProduct(_ context.Context, productID string) (*model.ProductLedgerEntry, error) {
	for i := len(r.state.ledger) - 1; i >= 0; i-- {
		if e, ok := r.state.ledger[i].(*model.ProductLedgerEntry); ok && e.ProductID == productID {
			return e, nil
		}
	}
	return nil, nil
}

func (r memLedger) List(_ context.Context, f *ledgerdto.LedgerFilters) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for _, e := range r.state.ledger {
		switch v := e.(type) {
		case *model.ProductLedgerEntry:
			if f.LotID != "" || (f.ProductID != "" && v.ProductID != f.ProductID) {
				continue
			}
		case *model.LotLedgerEntry:
			if f.ProductID != "" || (f.LotID != "" && v.WarehouseLotID != f.LotID) {
				continue
			}
		}
		if f.ReferenceID != "" && e.Header().ReferenceID != f.ReferenceID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Header().CreatedAt.Before(out[j].Header().CreatedAt)
	})
	return out, nil
}

type memNotifications struct{ *memRepos }

func (r memNotifications) Create(_ context.Context, n *model.Notification) error {
	r.state.notifications = append(r.state.notifications, n)
	return nil
}

type memBranches struct{ *memRepos }

func (r memBranches) BranchOf(_ context.Context, userID string) (*string, error) {
	b, ok := r.state.branches[userID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// alertSink collects threshold alerts, which are written outside the transfer transaction.
type alertSink struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (s *alertSink) Create(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *alertSink) kinds() []model.NotificationKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.NotificationKind, 0, len(s.sent))
	for _, n := range s.sent {
		out = append(out, n.Kind)
	}
	return out
}

type eventSink struct {
	mu     sync.Mutex
	keys   []string
	events []any
	err    error
}

func (s *eventSink) Publish(_ context.Context, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	s.events = append(s.events, v)
	return nil
}

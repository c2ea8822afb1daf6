package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory fakes behind the repository interfaces. The tx manager serializes
// callers with a mutex, which mirrors the row-lock serialization the real
// implementation gets from SELECT ... FOR UPDATE.

type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[uuid.UUID]*model.Transfer
	codeSeq   int
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[uuid.UUID]*model.Transfer)}
}

func cloneTransfer(t *model.Transfer) *model.Transfer {
	clone := *t
	clone.Items = make([]model.TransferItem, len(t.Items))
	for i, item := range t.Items {
		itemClone := item
		itemClone.Batches = append([]model.TransferItemBatch(nil), item.Batches...)
		clone.Items[i] = itemClone
	}
	return &clone
}

func (r *fakeTransferRepo) Create(ctx context.Context, transfer *model.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if transfer.ID == uuid.Nil {
		transfer.ID = uuid.New()
	}
	for i := range transfer.Items {
		if transfer.Items[i].ID == uuid.Nil {
			transfer.Items[i].ID = uuid.New()
		}
		transfer.Items[i].TransferID = transfer.ID
	}
	r.transfers[transfer.ID] = cloneTransfer(transfer)
	return nil
}

func (r *fakeTransferRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transfers[id]
	if !ok || t.OrganizationID != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneTransfer(t), nil
}

func (r *fakeTransferRepo) FindForUpdate(ctx context.Context, orgID, id uuid.UUID) (*model.Transfer, error) {
	return r.FindByID(ctx, orgID, id)
}

func (r *fakeTransferRepo) Save(ctx context.Context, transfer *model.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transfers[transfer.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	clone := cloneTransfer(transfer)
	clone.Items = stored.Items // Save omits item rows
	r.transfers[transfer.ID] = clone
	return nil
}

func (r *fakeTransferRepo) SaveItem(ctx context.Context, item *model.TransferItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transfers[item.TransferID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range t.Items {
		if t.Items[i].ID == item.ID {
			batches := t.Items[i].Batches // SaveItem omits allocation rows
			t.Items[i] = *item
			t.Items[i].Batches = batches
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeTransferRepo) CreateItemBatches(ctx context.Context, batches []model.TransferItemBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range batches {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		for _, t := range r.transfers {
			for i := range t.Items {
				if t.Items[i].ID == b.TransferItemID {
					t.Items[i].Batches = append(t.Items[i].Batches, b)
				}
			}
		}
	}
	return nil
}

func (r *fakeTransferRepo) NextCode(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codeSeq++
	return fmt.Sprintf("TRF-20260830-%05d", r.codeSeq), nil
}

type fakeStockLedger struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*model.StockBatch
}

func newFakeStockLedger() *fakeStockLedger {
	return &fakeStockLedger{batches: make(map[uuid.UUID]*model.StockBatch)}
}

func (l *fakeStockLedger) addBatch(b model.StockBatch) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	stored := b
	l.batches[b.ID] = &stored
	return b.ID
}

func (l *fakeStockLedger) get(id uuid.UUID) model.StockBatch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.batches[id]
}

func (l *fakeStockLedger) list(departmentID, productID uuid.UUID, onlyAvailable bool) []model.StockBatch {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.StockBatch
	for _, b := range l.batches {
		if b.DepartmentID != departmentID || b.ProductID != productID {
			continue
		}
		if onlyAvailable && b.AvailableQuantity <= 0 {
			continue
		}
		out = append(out, *b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ExpiryDate, out[j].ExpiryDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
	return out
}

func (l *fakeStockLedger) GetAvailableBatches(ctx context.Context, departmentID, productID uuid.UUID) ([]model.StockBatch, error) {
	return l.list(departmentID, productID, true), nil
}

func (l *fakeStockLedger) GetBatchesForUpdate(ctx context.Context, departmentID, productID uuid.UUID) ([]model.StockBatch, error) {
	return l.list(departmentID, productID, false), nil
}

func (l *fakeStockLedger) Reserve(ctx context.Context, batchID uuid.UUID, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.batches[batchID]
	if !ok || b.AvailableQuantity < qty {
		return repository.ErrInsufficientStock
	}
	b.AvailableQuantity -= qty
	b.ReservedQuantity += qty
	return nil
}

func (l *fakeStockLedger) Release(ctx context.Context, batchID uuid.UUID, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.batches[batchID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.AvailableQuantity += qty
	b.ReservedQuantity -= qty
	return nil
}

func (l *fakeStockLedger) Commit(ctx context.Context, batchID uuid.UUID, reservedQty, deliveredQty int, toDepartmentID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	source, ok := l.batches[batchID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	source.ReservedQuantity -= reservedQty
	source.AvailableQuantity += reservedQty - deliveredQty

	if deliveredQty == 0 {
		return nil
	}

	for _, b := range l.batches {
		if b.DepartmentID == toDepartmentID && b.ProductID == source.ProductID && b.LotNumber == source.LotNumber {
			b.AvailableQuantity += deliveredQty
			return nil
		}
	}
	dest := model.StockBatch{
		ID:                uuid.New(),
		DepartmentID:      toDepartmentID,
		ProductID:         source.ProductID,
		LotNumber:         source.LotNumber,
		ExpiryDate:        source.ExpiryDate,
		AvailableQuantity: deliveredQty,
		UnitCost:          source.UnitCost,
	}
	l.batches[dest.ID] = &dest
	return nil
}

func (l *fakeStockLedger) CreateBatch(ctx context.Context, batch *model.StockBatch) error {
	batch.ID = l.addBatch(*batch)
	return nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []model.TransferHistory
}

func (r *fakeHistoryRepo) Append(ctx context.Context, record *model.TransferHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeHistoryRepo) ListByTransfer(ctx context.Context, transferID uuid.UUID) ([]model.TransferHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TransferHistory
	for _, rec := range r.records {
		if rec.TransferID == transferID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) byAction(transferID uuid.UUID, action string) []model.TransferHistory {
	records, _ := r.ListByTransfer(context.Background(), transferID)
	var out []model.TransferHistory
	for _, rec := range records {
		if rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}

type fakeDepartmentRepo struct {
	mu    sync.Mutex
	depts map[uuid.UUID]*model.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{depts: make(map[uuid.UUID]*model.Department)}
}

func (r *fakeDepartmentRepo) add(orgID uuid.UUID, name string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.depts[id] = &model.Department{ID: id, OrganizationID: orgID, Name: name, Code: name}
	return id
}

func (r *fakeDepartmentRepo) Create(ctx context.Context, dept *model.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dept.ID == uuid.Nil {
		dept.ID = uuid.New()
	}
	stored := *dept
	r.depts[dept.ID] = &stored
	return nil
}

func (r *fakeDepartmentRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.depts[id]
	if !ok || d.OrganizationID != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *fakeDepartmentRepo) List(ctx context.Context, orgID uuid.UUID) ([]model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Department
	for _, d := range r.depts {
		if d.OrganizationID == orgID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDepartmentRepo) Update(ctx context.Context, dept *model.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *dept
	r.depts[dept.ID] = &stored
	return nil
}

func (r *fakeDepartmentRepo) AddMember(ctx context.Context, member *model.DepartmentMember) error {
	return nil
}

func (r *fakeDepartmentRepo) RemoveMember(ctx context.Context, deptID, userID uuid.UUID) error {
	return nil
}

func (r *fakeDepartmentRepo) ListMemberDepartmentIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) add(orgID uuid.UUID, name string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.products[id] = &model.Product{ID: id, OrganizationID: orgID, SKU: name, Name: name, Unit: "box"}
	return id
}

func (r *fakeProductRepo) Create(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	stored := *product
	r.products[product.ID] = &stored
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.OrganizationID != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) List(ctx context.Context, orgID uuid.UUID, search string, page, limit int) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.OrganizationID == orgID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *product
	r.products[product.ID] = &stored
	return nil
}

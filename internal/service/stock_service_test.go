package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendaflow/internal/model"
)

type stockFixture struct {
	productRepo *stubProductRepo
	stockRepo   *stubStockRepo
	svc         StockService
	org         uuid.UUID
	saleID      uuid.UUID
}

func newStockFixture() *stockFixture {
	f := &stockFixture{
		productRepo: newStubProductRepo(),
		stockRepo:   newStubStockRepo(),
		org:         uuid.New(),
		saleID:      uuid.New(),
	}
	f.svc = NewStockService(f.productRepo, f.stockRepo)
	return f
}

func (f *stockFixture) addProduct(actual, reserved int) *model.Product {
	p := &model.Product{
		ID:             uuid.New(),
		OrganizationID: f.org,
		Name:           "Colágeno Hidrolisado",
		Category:       "suplemento",
		Active:         true,
		TrackStock:     true,
		StockActual:    actual,
		StockReserved:  reserved,
	}
	f.productRepo.products[p.ID] = p
	return p
}

func items(p *model.Product, qty int) []model.SaleItem {
	return []model.SaleItem{{ProductID: p.ID, Quantity: qty}}
}

func TestApplyReserve(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(10, 2)

	f.svc.Apply(context.Background(), model.StockOpReserve, f.org, f.saleID, items(p, 3))

	assert.Equal(t, 10, p.StockActual)
	assert.Equal(t, 5, p.StockReserved)

	require.Len(t, f.stockRepo.movements, 1)
	m := f.stockRepo.movements[0]
	assert.Equal(t, model.StockOpReserve, m.Operation)
	assert.Equal(t, 2, m.ReservedBefore)
	assert.Equal(t, 5, m.ReservedAfter)
	require.NotNil(t, m.SaleID)
	assert.Equal(t, f.saleID, *m.SaleID)

	require.Len(t, f.stockRepo.compensations, 1)
	assert.Equal(t, model.CompensationApplied, f.stockRepo.compensations[0].Status)
}

func TestApplyReserveInsufficientStockSoftFails(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(4, 2) // available = 2

	f.svc.Apply(context.Background(), model.StockOpReserve, f.org, f.saleID, items(p, 3))

	// Counters untouched, no movement, but the failure is in the ledger.
	assert.Equal(t, 4, p.StockActual)
	assert.Equal(t, 2, p.StockReserved)
	assert.Empty(t, f.stockRepo.movements)

	require.Len(t, f.stockRepo.compensations, 1)
	entry := f.stockRepo.compensations[0]
	assert.Equal(t, model.CompensationFailed, entry.Status)
	assert.Equal(t, 1, entry.Attempts)
	require.NotNil(t, entry.LastError)
	assert.Contains(t, *entry.LastError, "estoque insuficiente")
	assert.NotNil(t, entry.NextRetryAt)
}

func TestApplyDeduct(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(10, 3)

	f.svc.Apply(context.Background(), model.StockOpDeduct, f.org, f.saleID, items(p, 3))

	assert.Equal(t, 7, p.StockActual)
	assert.Equal(t, 0, p.StockReserved)
}

func TestApplyRestore(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(7, 0)

	f.svc.Apply(context.Background(), model.StockOpRestore, f.org, f.saleID, items(p, 3))

	assert.Equal(t, 10, p.StockActual)
	assert.Equal(t, 0, p.StockReserved)
}

func TestApplyUnreserveClampsAtZero(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(10, 1)

	f.svc.Apply(context.Background(), model.StockOpUnreserve, f.org, f.saleID, items(p, 3))

	assert.Equal(t, 10, p.StockActual)
	assert.Equal(t, 0, p.StockReserved)
}

func TestApplySkipsUntrackedProducts(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(10, 0)
	p.TrackStock = false

	f.svc.Apply(context.Background(), model.StockOpReserve, f.org, f.saleID, items(p, 3))

	assert.Equal(t, 0, p.StockReserved)
	assert.Empty(t, f.stockRepo.movements)
	require.Len(t, f.stockRepo.compensations, 1)
	assert.Equal(t, model.CompensationApplied, f.stockRepo.compensations[0].Status)
}

func TestReplayRecoversAfterRestock(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(2, 2) // nothing available

	f.svc.Apply(context.Background(), model.StockOpReserve, f.org, f.saleID, items(p, 3))
	require.Len(t, f.stockRepo.compensations, 1)
	entry := f.stockRepo.compensations[0]
	require.Equal(t, model.CompensationFailed, entry.Status)

	// Restock arrives; the cron replays the failed entry.
	p.StockActual = 10
	err := f.svc.Replay(context.Background(), entry, items(p, 3))
	require.NoError(t, err)

	assert.Equal(t, model.CompensationApplied, entry.Status)
	assert.Equal(t, 2, entry.Attempts)
	assert.Nil(t, entry.LastError)
	assert.Nil(t, entry.NextRetryAt)
	assert.Equal(t, 5, p.StockReserved)
}

func TestReplayFailureBacksOff(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(2, 2)

	f.svc.Apply(context.Background(), model.StockOpReserve, f.org, f.saleID, items(p, 3))
	entry := f.stockRepo.compensations[0]

	err := f.svc.Replay(context.Background(), entry, items(p, 3))
	require.Error(t, err)

	assert.Equal(t, model.CompensationFailed, entry.Status)
	assert.Equal(t, 2, entry.Attempts)
	require.NotNil(t, entry.NextRetryAt)
}

func TestAdjustManual(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(10, 2)

	err := f.svc.AdjustManual(context.Background(), f.org, p.ID, -4, "perda em inventário")
	require.NoError(t, err)
	assert.Equal(t, 6, p.StockActual)
	assert.Equal(t, 2, p.StockReserved)

	require.Len(t, f.stockRepo.movements, 1)
	m := f.stockRepo.movements[0]
	assert.Equal(t, model.StockOpAdjust, m.Operation)
	assert.Equal(t, "perda em inventário", m.Reason)
}

func TestAdjustManualRejectsNegativeResult(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(3, 0)

	err := f.svc.AdjustManual(context.Background(), f.org, p.ID, -5, "erro de digitação")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negativo")
	assert.Equal(t, 3, p.StockActual)
}

func TestAdjustManualScopedToOrganization(t *testing.T) {
	f := newStockFixture()
	p := f.addProduct(10, 0)

	err := f.svc.AdjustManual(context.Background(), uuid.New(), p.ID, 1, "ajuste")
	require.Error(t, err)
	assert.Equal(t, 10, p.StockActual)
}

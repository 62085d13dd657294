package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-digital/database"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/utils"
)

func TestComandaService_Open(t *testing.T) {
	db := setupDB(t)
	createTable(t, db, 5)
	svc := NewComandaService(db, 0.10)
	ctx := context.Background()

	first, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 5})
	require.NoError(t, err)
	second, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Bia", TableNumber: 7})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.ComandaStatusOpen, first.Status)
	assert.Equal(t, 0.0, first.TotalAmount)

	var table models.Table
	require.NoError(t, db.First(&table, "table_number = ?", 5).Error)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
}

func TestComandaService_OpenRequiresTable(t *testing.T) {
	svc := NewComandaService(setupDB(t), 0.10)

	_, err := svc.Open(context.Background(), OpenComandaInput{CustomerName: "Ana"})
	assert.True(t, utils.IsValidationError(err))
}

func TestComandaService_TotalFollowsItems(t *testing.T) {
	db := setupDB(t)
	svc := NewComandaService(db, 0.10)
	ctx := context.Background()

	comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 5})
	require.NoError(t, err)

	lines := []struct {
		qty   int
		price float64
	}{
		{2, 8.5},
		{1, 42.9},
		{3, 0.1},
		{4, 12.35},
	}

	var added []*models.ComandaItem
	want := 0.0
	for _, l := range lines {
		item, err := svc.AddItem(ctx, AddItemInput{
			ComandaID:   comanda.ID,
			ProductName: "Item",
			Quantity:    l.qty,
			UnitPrice:   price(l.price),
		})
		require.NoError(t, err)
		added = append(added, item)
		want = utils.SumMoney(want, utils.LineTotal(l.qty, l.price))

		got, err := svc.Get(ctx, comanda.ID)
		require.NoError(t, err)
		assert.InDelta(t, want, got.TotalAmount, 0.001)
	}

	for _, item := range added {
		deleted, err := svc.DeleteItem(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, deleted)
		want = utils.SumMoney(want, -item.TotalPrice)

		got, err := svc.Get(ctx, comanda.ID)
		require.NoError(t, err)
		assert.InDelta(t, want, got.TotalAmount, 0.001)
	}

	got, err := svc.Get(ctx, comanda.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.TotalAmount)
}

func TestComandaService_AddItemExample(t *testing.T) {
	svc := NewComandaService(setupDB(t), 0.10)
	ctx := context.Background()

	comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 5})
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, AddItemInput{
		ComandaID:   comanda.ID,
		ProductName: "Suco",
		Quantity:    2,
		UnitPrice:   price(8.5),
	})
	require.NoError(t, err)
	assert.Equal(t, 17.0, item.TotalPrice)

	got, err := svc.Get(ctx, comanda.ID)
	require.NoError(t, err)
	assert.Equal(t, 17.0, got.TotalAmount)
}

func TestComandaService_AddItemUsesCatalog(t *testing.T) {
	db := setupDB(t)
	svc := NewComandaService(db, 0.10)
	ctx := context.Background()

	fixed := models.Product{Name: "Caipirinha", Category: "Bebidas", Price: price(18), Available: true}
	variable := models.Product{Name: "Peixe do Dia", Category: "Pratos", IsVariablePrice: true, Available: true}
	require.NoError(t, db.Create(&fixed).Error)
	require.NoError(t, db.Create(&variable).Error)

	comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 2})
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductID: fixed.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Caipirinha", item.ProductName)
	assert.Equal(t, 36.0, item.TotalPrice)

	_, err = svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductID: variable.ID, Quantity: 1})
	assert.True(t, utils.IsValidationError(err))

	item, err = svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductID: variable.ID, Quantity: 1, UnitPrice: price(64.9)})
	require.NoError(t, err)
	assert.Equal(t, "Peixe do Dia", item.ProductName)
	assert.Equal(t, 64.9, item.TotalPrice)
}

func TestComandaService_AddItemRejections(t *testing.T) {
	db := setupDB(t)
	svc := NewComandaService(db, 0.10)
	ctx := context.Background()

	comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 1})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, AddItemInput{ProductName: "Suco", Quantity: 1, UnitPrice: price(5)})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductName: "Suco", Quantity: 0, UnitPrice: price(5)})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.AddItem(ctx, AddItemInput{ComandaID: "missing", ProductName: "Suco", Quantity: 1, UnitPrice: price(5)})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Model(&models.Comanda{}).Where("id = ?", comanda.ID).Update("status", models.ComandaStatusPaid).Error)
	_, err = svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductName: "Suco", Quantity: 1, UnitPrice: price(5)})
	assert.True(t, utils.IsValidationError(err))
}

func TestComandaService_DeleteUnknownItem(t *testing.T) {
	svc := NewComandaService(setupDB(t), 0.10)
	ctx := context.Background()

	comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductName: "Suco", Quantity: 2, UnitPrice: price(8.5)})
	require.NoError(t, err)

	deleted, err := svc.DeleteItem(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	got, err := svc.Get(ctx, comanda.ID)
	require.NoError(t, err)
	assert.Equal(t, 17.0, got.TotalAmount)
}

func TestComandaService_Update(t *testing.T) {
	svc := NewComandaService(setupDB(t), 0.10)
	ctx := context.Background()

	comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 1})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, comanda.ID, map[string]interface{}{
		"customer_name": "Ana Paula",
		"table_number":  "3",
		"total_amount":  999.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Paula", updated.CustomerName)
	assert.Equal(t, 3, updated.TableNumber)
	assert.Equal(t, 0.0, updated.TotalAmount)

	_, err = svc.Update(ctx, comanda.ID, map[string]interface{}{"status": "closed"})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.Update(ctx, "missing", map[string]interface{}{"status": models.ComandaStatusCanceled})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComandaService_Bill(t *testing.T) {
	svc := NewComandaService(setupDB(t), 0.10)
	ctx := context.Background()

	comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductName: "Moqueca", Quantity: 1, UnitPrice: price(89.9)})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductName: "Suco", Quantity: 2, UnitPrice: price(8.5)})
	require.NoError(t, err)

	bill, err := svc.Bill(ctx, comanda.ID)
	require.NoError(t, err)
	assert.Len(t, bill.Items, 2)
	assert.Equal(t, 106.9, bill.Subtotal)
	assert.Equal(t, 10.69, bill.ServiceCharge)
	assert.Equal(t, 117.59, bill.Total)
	assert.Equal(t, "R$ 117,59", bill.Formatted.Total)
}

func TestComandaService_DeleteItemFromClosedTab(t *testing.T) {
	db := setupDB(t)
	svc := NewComandaService(db, 0.10)
	ctx := context.Background()

	for _, status := range []string{models.ComandaStatusPaid, models.ComandaStatusCanceled} {
		t.Run(status, func(t *testing.T) {
			comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 1})
			require.NoError(t, err)
			item, err := svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductName: "Suco", Quantity: 2, UnitPrice: price(8.5)})
			require.NoError(t, err)
			require.NoError(t, db.Model(&models.Comanda{}).Where("id = ?", comanda.ID).Update("status", status).Error)

			deleted, err := svc.DeleteItem(ctx, item.ID)
			assert.True(t, utils.IsValidationError(err), err)
			assert.Nil(t, deleted)

			got, err := svc.Get(ctx, comanda.ID)
			require.NoError(t, err)
			assert.Equal(t, 17.0, got.TotalAmount)
			items, err := svc.ListItems(ctx, comanda.ID)
			require.NoError(t, err)
			assert.Len(t, items, 1)
		})
	}
}

func TestComandaService_ConcurrentItemChanges(t *testing.T) {
	db, err := database.OpenFile(filepath.Join(t.TempDir(), "comanda.db"))
	require.NoError(t, err)
	svc := NewComandaService(db, 0.10)
	ctx := context.Background()

	comanda, err := svc.Open(ctx, OpenComandaInput{CustomerName: "Ana", TableNumber: 1})
	require.NoError(t, err)

	const adds = 20
	var wg sync.WaitGroup
	errs := make(chan error, adds*2)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductName: "Cafe", Quantity: 1, UnitPrice: price(1)})
			errs <- err
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, comanda.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.TotalAmount)

	items, err := svc.ListItems(ctx, comanda.ID)
	require.NoError(t, err)
	require.Len(t, items, adds)

	// remove half while adding more at a different price
	for i := 0; i < adds/2; i++ {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			_, err := svc.DeleteItem(ctx, id)
			errs <- err
		}(items[i].ID)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, AddItemInput{ComandaID: comanda.ID, ProductName: "Pudim", Quantity: 1, UnitPrice: price(2.5)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err = svc.Get(ctx, comanda.ID)
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.TotalAmount)

	items, err = svc.ListItems(ctx, comanda.ID)
	require.NoError(t, err)
	assert.Len(t, items, adds)
	var sum float64
	for _, item := range items {
		sum += item.TotalPrice
	}
	assert.Equal(t, got.TotalAmount, utils.SumMoney(sum))
}

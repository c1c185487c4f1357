package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/souq/internal/models"
)

func TestSQLiteStorage_CRUD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "snapshot.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	dress := &models.Candidate{
		ID: "7", Name: "فستان سواريه", Price: 450.5, OriginalPrice: 600, DiscountPercent: 25,
		Rating: 4.6, ReviewCount: 12, StockQuantity: 3, IsBestSeller: true, IsFreeDelivery: true,
		Colors: []string{"احمر", "اسود"}, Sizes: []string{"M", "L"}, Category: "فساتين",
		Description: "فستان طويل", StoreName: "Nile Boutique",
	}
	n, err := store.SaveProducts(ctx, []*models.Candidate{dress, nil, {Name: "no id"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("SaveProducts saved %d, want 1", n)
	}

	got, err := store.GetProduct(ctx, "7")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, dress) {
		t.Errorf("GetProduct = %+v, want %+v", got, dress)
	}

	dress.Price = 400
	if _, err := store.SaveProducts(ctx, []*models.Candidate{dress}); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetProduct(ctx, "7")
	if got.Price != 400 {
		t.Errorf("expected replaced price 400, got %v", got.Price)
	}

	if err := store.DeleteProduct(ctx, "7"); err != nil {
		t.Fatal(err)
	}
	_, err = store.GetProduct(ctx, "7")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStorage_ListAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	n, err := store.CountProducts(ctx)
	if err != nil || n != 0 {
		t.Errorf("CountProducts: %v, %d", err, n)
	}

	products := []*models.Candidate{
		{ID: "a", Name: "Bag", Price: 300},
		{ID: "b", Name: "Shoes", Price: 500},
		{ID: "c", Name: "Scarf", Price: 120},
	}
	if _, err := store.SaveProducts(ctx, products); err != nil {
		t.Fatal(err)
	}
	n, _ = store.CountProducts(ctx)
	if n != 3 {
		t.Errorf("expected 3 products, got %d", n)
	}

	page, err := store.ListProducts(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].ID != "a" || page[1].ID != "b" {
		t.Errorf("first page: %+v", page)
	}
	page, _ = store.ListProducts(ctx, 2, 2)
	if len(page) != 1 || page[0].ID != "c" {
		t.Errorf("second page: %+v", page)
	}
	if page[0].Colors != nil {
		t.Errorf("missing colors should stay nil, got %v", page[0].Colors)
	}
}

func TestSQLiteStorage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*SQLiteStorage)(nil)
}

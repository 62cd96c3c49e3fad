package testing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/google/uuid"
)

// StoreFactory is a function that creates a new, empty IStore implementation
type StoreFactory func() catalog.IStore

// RunStoreTests runs the conformance test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Replace", func(t *testing.T) {
			testReplace(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("List", func(t *testing.T) {
			testList(t, factory())
		})

		t.Run("SparseItem", func(t *testing.T) {
			testSparseItem(t, factory())
		})

		t.Run("InvalidItem", func(t *testing.T) {
			testInvalidItem(t, factory())
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// SampleItem returns a fully populated item
func SampleItem(name string) catalog.Item {
	notes := "handle with care"
	return catalog.Item{
		ID:         uuid.New(),
		Name:       name,
		Tags:       []string{"furniture", "oak"},
		Price:      249.99,
		Status:     catalog.StatusActive,
		Attributes: map[string]string{"color": "natural", "finish": "oiled & waxed"},
		Stock:      map[string]int{"berlin": 3, "new york": 0},
		Dimensions: &catalog.Dimensions{Width: 120, Height: 75, Depth: 60.5, Unit: "cm"},
		Released:   time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Notes:      &notes,
	}
}

// equalItems compares items member wise, timestamps by instant
func equalItems(t *testing.T, expected, actual catalog.Item) {
	t.Helper()
	if !expected.Released.Equal(actual.Released) {
		t.Errorf("Expected released %v, got %v", expected.Released, actual.Released)
	}
	expected.Released, actual.Released = time.Time{}, time.Time{}
	if fmt.Sprintf("%+v", deref(expected)) != fmt.Sprintf("%+v", deref(actual)) {
		t.Errorf("Expected item\n%+v\ngot\n%+v", deref(expected), deref(actual))
	}
}

// deref replaces the pointer members by their values so items print comparably
func deref(item catalog.Item) any {
	type flat struct {
		catalog.Item
		Dimensions catalog.Dimensions
		HasDims    bool
		Notes      string
		HasNotes   bool
	}
	f := flat{Item: item}
	if item.Dimensions != nil {
		f.Dimensions, f.HasDims = *item.Dimensions, true
	}
	if item.Notes != nil {
		f.Notes, f.HasNotes = *item.Notes, true
	}
	f.Item.Dimensions, f.Item.Notes = nil, nil
	return f
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, store catalog.IStore) {
	ctx := context.Background()
	item := SampleItem("table")

	if err := store.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	result, loaded, err := store.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !loaded {
		t.Fatalf("Expected item %s to exist after Put", item.ID)
	}
	equalItems(t, item, result)

	_, loaded, err = store.Get(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded {
		t.Errorf("Expected unknown item to return loaded=false")
	}
}

func testReplace(t *testing.T, store catalog.IStore) {
	ctx := context.Background()
	item := SampleItem("chair")
	if err := store.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// members removed from the item must not survive the replacement
	item.Tags = []string{"plastic"}
	item.Dimensions = nil
	item.Stock = map[string]int{"paris": 1}
	if err := store.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	result, _, err := store.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	equalItems(t, item, result)
}

func testDelete(t *testing.T, store catalog.IStore) {
	ctx := context.Background()
	item := SampleItem("lamp")
	if err := store.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, loaded, _ := store.Get(ctx, item.ID); loaded {
		t.Errorf("Expected item %s to be gone after Delete", item.ID)
	}
	if err := store.Delete(ctx, item.ID); err != nil {
		t.Errorf("Deleting a missing item should not fail: %v", err)
	}
}

func testHas(t *testing.T, store catalog.IStore) {
	ctx := context.Background()
	item := SampleItem("shelf")

	if loaded, _ := store.Has(ctx, item.ID); loaded {
		t.Errorf("Expected Has to return false before Put")
	}
	if err := store.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if loaded, _ := store.Has(ctx, item.ID); !loaded {
		t.Errorf("Expected Has to return true after Put")
	}
}

func testList(t *testing.T, store catalog.IStore) {
	ctx := context.Background()

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("Expected empty store, got %d items", len(items))
	}

	names := []string{"c", "a", "b"}
	for _, name := range names {
		if err := store.Put(ctx, SampleItem(name)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	items, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != len(names) {
		t.Fatalf("Expected %d items, got %d", len(names), len(items))
	}
	for i, want := range []string{"a", "b", "c"} {
		if items[i].Name != want {
			t.Errorf("Expected item %d to be %q, got %q", i, want, items[i].Name)
		}
	}
}

func testSparseItem(t *testing.T, store catalog.IStore) {
	ctx := context.Background()
	item := catalog.Item{ID: uuid.New(), Name: "bare"}

	if err := store.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	result, loaded, err := store.Get(ctx, item.ID)
	if err != nil || !loaded {
		t.Fatalf("Get failed: loaded=%v err=%v", loaded, err)
	}
	if result.Dimensions != nil || result.Notes != nil {
		t.Errorf("Expected nil optional members, got %+v", result)
	}
	equalItems(t, item, result)
}

func testInvalidItem(t *testing.T, store catalog.IStore) {
	err := store.Put(context.Background(), catalog.Item{Name: "no id"})
	if err == nil {
		t.Fatalf("Expected Put of an item without ID to fail")
	}
	if e, ok := err.(*catalog.Error); !ok || e.Code != catalog.RetCInvalidOperation {
		t.Errorf("Expected RetCInvalidOperation, got %v", err)
	}
}

func testConcurrent(t *testing.T, store catalog.IStore) {
	ctx := context.Background()
	const workers = 8
	const perWorker = 20

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				item := SampleItem(fmt.Sprintf("item-%d-%d", w, i))
				if err := store.Put(ctx, item); err != nil {
					t.Errorf("Put failed: %v", err)
					return
				}
				if _, loaded, err := store.Get(ctx, item.ID); err != nil || !loaded {
					t.Errorf("Get failed: loaded=%v err=%v", loaded, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != workers*perWorker {
		t.Errorf("Expected %d items, got %d", workers*perWorker, len(items))
	}
}

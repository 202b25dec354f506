package entry

import (
	"context"
	"testing"
	"time"

	"meal-parser/internal/pkg/common"
)

func testItem(name string, calories int, ts time.Time) common.FoodItem {
	return common.FoodItem{
		ID: common.GenerateUUID(), Name: name,
		Quantity: 1, Unit: "serving", Calories: calories,
		Nutrients: []common.NutrientInfo{
			{Name: "protein", Amount: 10.0, Unit: "g"},
			{Name: "carbs", Amount: 20.0, Unit: "g"},
			{Name: "fat", Amount: 5.0, Unit: "g"},
			{Name: "sodium", Amount: 100.0, Unit: "mg"},
		},
		Timestamp: ts,
	}
}

func TestMemoryStoreSaveAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	today := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

	items := []common.FoodItem{
		testItem("Bread", 133, today),
		testItem("Coffee", 2, today),
	}
	if err := store.Save(ctx, "user-1", items); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.ListByDate(ctx, "user-1", today)
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d items, want 2", len(got))
	}
	if got[0].Name != "Bread" || got[1].Name != "Coffee" {
		t.Errorf("items out of order: %v", got)
	}
}

func TestMemoryStoreIsolatesUsersAndDates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	day1 := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	store.Save(ctx, "user-1", []common.FoodItem{testItem("Bread", 133, day1)})
	store.Save(ctx, "user-1", []common.FoodItem{testItem("Rice", 200, day2)})
	store.Save(ctx, "user-2", []common.FoodItem{testItem("Egg", 70, day1)})

	got, _ := store.ListByDate(ctx, "user-1", day1)
	if len(got) != 1 || got[0].Name != "Bread" {
		t.Errorf("user-1 day1 = %v, want [Bread]", got)
	}
	got, _ = store.ListByDate(ctx, "user-2", day1)
	if len(got) != 1 || got[0].Name != "Egg" {
		t.Errorf("user-2 day1 = %v, want [Egg]", got)
	}
	got, _ = store.ListByDate(ctx, "user-1", day2.Add(3*time.Hour))
	if len(got) != 1 || got[0].Name != "Rice" {
		t.Errorf("user-1 day2 = %v, want [Rice]", got)
	}
}

func TestMemoryStoreEmptyDay(t *testing.T) {
	store := NewMemoryStore()
	got, err := store.ListByDate(context.Background(), "nobody", time.Now())
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty day, got %v", got)
	}
}

func TestComputeTotals(t *testing.T) {
	today := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	items := []common.FoodItem{
		testItem("Bread", 133, today),
		testItem("Rice", 200, today),
	}

	totals := ComputeTotals(today, items)
	if totals.Date != "2026-03-14" {
		t.Errorf("date = %q, want 2026-03-14", totals.Date)
	}
	if totals.ItemCount != 2 {
		t.Errorf("item count = %d, want 2", totals.ItemCount)
	}
	if totals.Calories != 333 {
		t.Errorf("calories = %d, want 333", totals.Calories)
	}
	if totals.Protein != 20.0 {
		t.Errorf("protein = %f, want 20.0", totals.Protein)
	}
	if totals.Sodium != 200.0 {
		t.Errorf("sodium = %f, want 200.0", totals.Sodium)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(time.Now(), nil)
	if totals.ItemCount != 0 || totals.Calories != 0 {
		t.Errorf("empty totals = %+v, want zeros", totals)
	}
}

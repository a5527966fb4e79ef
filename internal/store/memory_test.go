package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"fiscal-reconstruction-service/internal/models"

	"github.com/shopspring/decimal"
)

func TestMemoryStoreAssignsIDs(t *testing.T) {
	st := NewMemoryStore()

	p := st.AddProperty(&models.Property{Label: "Calle Mayor 3", Status: models.PropertyStatusActive})
	if p.ID == "" {
		t.Error("AddProperty should assign an ID")
	}

	c := st.AddContract(&models.Contract{
		PropertyID:  p.ID,
		StartDate:   time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent: decimal.NewFromInt(800),
		PaymentDay:  1,
	})
	if c.ID == "" {
		t.Error("AddContract should assign an ID")
	}

	d := st.AddDocument(&models.Document{Filename: "invoice.pdf"})
	if d.ID == "" {
		t.Error("AddDocument should assign an ID")
	}

	keep := st.AddProperty(&models.Property{ID: "explicit", Label: "Kept", Status: models.PropertyStatusActive})
	if keep.ID != "explicit" {
		t.Errorf("explicit ID overwritten: %s", keep.ID)
	}
}

func TestMemoryStoreGetProperty(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	st.AddProperty(&models.Property{ID: "p1", Label: "Found", Status: models.PropertyStatusActive})

	p, err := st.GetProperty(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	if p.Label != "Found" {
		t.Errorf("Label = %s, want Found", p.Label)
	}

	_, err = st.GetProperty(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreDeterministicOrder(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		st.AddProperty(&models.Property{ID: id, Label: id, Status: models.PropertyStatusActive})
	}

	properties, err := st.GetAllProperties(ctx)
	if err != nil {
		t.Fatalf("GetAllProperties failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	for i, p := range properties {
		if p.ID != want[i] {
			t.Errorf("property %d = %s, want %s", i, p.ID, want[i])
		}
	}
}

func TestMemoryStoreSummaryUpsert(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	first := models.NewFiscalSummary("p1", 2023, decimal.NewFromInt(100), decimal.Zero)
	if err := st.SaveFiscalSummary(ctx, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	second := models.NewFiscalSummary("p1", 2023, decimal.NewFromInt(250), decimal.Zero)
	if err := st.SaveFiscalSummary(ctx, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	summaries, err := st.GetFiscalSummaries(ctx, "p1")
	if err != nil {
		t.Fatalf("GetFiscalSummaries failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary after upsert, got %d", len(summaries))
	}
	if want := decimal.NewFromInt(250); !summaries[0].Income.Equal(want) {
		t.Errorf("Income = %s, want %s", summaries[0].Income, want)
	}
}

func TestMemoryStoreSummaryValidation(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.SaveFiscalSummary(ctx, nil); err == nil {
		t.Error("expected error for nil summary")
	}
	if err := st.SaveFiscalSummary(ctx, &models.FiscalSummary{ExerciseYear: 2023}); err == nil {
		t.Error("expected error for empty property ID")
	}
}

func TestMemoryStoreSummariesOrderedByYear(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for _, year := range []int{2023, 2019, 2021} {
		summary := models.NewFiscalSummary("p1", year, decimal.NewFromInt(100), decimal.Zero)
		if err := st.SaveFiscalSummary(ctx, summary); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	summaries, err := st.GetFiscalSummaries(ctx, "p1")
	if err != nil {
		t.Fatalf("GetFiscalSummaries failed: %v", err)
	}

	want := []int{2019, 2021, 2023}
	for i, fs := range summaries {
		if fs.ExerciseYear != want[i] {
			t.Errorf("summary %d year = %d, want %d", i, fs.ExerciseYear, want[i])
		}
	}
}

func TestMemoryStoreReplaceCarryForwards(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	initial := []*models.CarryForward{
		{PropertyID: "p1", OriginYear: 2021, Amount: decimal.NewFromInt(200), Remaining: decimal.NewFromInt(200), ExpiryYear: 2025},
		{PropertyID: "p1", OriginYear: 2019, Amount: decimal.NewFromInt(100), Remaining: decimal.NewFromInt(50), ExpiryYear: 2023},
	}
	if err := st.ReplaceCarryForwards(ctx, "p1", initial); err != nil {
		t.Fatalf("ReplaceCarryForwards failed: %v", err)
	}

	chain, err := st.GetCarryForwards(ctx, "p1")
	if err != nil {
		t.Fatalf("GetCarryForwards failed: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected 2 carryforwards, got %d", len(chain))
	}
	if chain[0].OriginYear != 2019 || chain[1].OriginYear != 2021 {
		t.Errorf("chain not ordered by origin year: %v, %v", chain[0], chain[1])
	}

	// Replacement is wholesale
	if err := st.ReplaceCarryForwards(ctx, "p1", nil); err != nil {
		t.Fatalf("empty replacement failed: %v", err)
	}
	chain, _ = st.GetCarryForwards(ctx, "p1")
	if len(chain) != 0 {
		t.Errorf("expected empty chain after replacement, got %d", len(chain))
	}
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	st := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := st.GetAllProperties(ctx); err == nil {
		t.Error("GetAllProperties should fail under a cancelled context")
	}
	if _, err := st.GetAllContracts(ctx); err == nil {
		t.Error("GetAllContracts should fail under a cancelled context")
	}
	if err := st.SaveFiscalSummary(ctx, models.NewFiscalSummary("p1", 2023, decimal.Zero, decimal.Zero)); err == nil {
		t.Error("SaveFiscalSummary should fail under a cancelled context")
	}
}

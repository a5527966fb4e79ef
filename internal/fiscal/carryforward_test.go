package fiscal

import (
	"context"
	"testing"

	"fiscal-reconstruction-service/internal/models"
	"fiscal-reconstruction-service/internal/store"

	"github.com/shopspring/decimal"
)

func saveSummary(t *testing.T, st *store.MemoryStore, propertyID string, year int, income, expenses string) {
	t.Helper()
	summary := models.NewFiscalSummary(propertyID, year,
		decimal.RequireFromString(income), decimal.RequireFromString(expenses))
	if err := st.SaveFiscalSummary(context.Background(), summary); err != nil {
		t.Fatalf("SaveFiscalSummary failed: %v", err)
	}
}

func TestCarryForwardLossOpensEntry(t *testing.T) {
	st := store.NewMemoryStore()
	saveSummary(t, st, "p1", 2020, "1000", "1500")

	svc := NewCarryForwardService(st)
	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	chain, err := st.GetCarryForwards(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetCarryForwards failed: %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("expected 1 carryforward, got %d", len(chain))
	}

	cf := chain[0]
	if cf.OriginYear != 2020 {
		t.Errorf("OriginYear = %d, want 2020", cf.OriginYear)
	}
	if want := decimal.NewFromInt(500); !cf.Amount.Equal(want) {
		t.Errorf("Amount = %s, want %s", cf.Amount, want)
	}
	if !cf.Remaining.Equal(cf.Amount) {
		t.Errorf("Remaining = %s, want %s", cf.Remaining, cf.Amount)
	}
	if cf.ExpiryYear != 2024 {
		t.Errorf("ExpiryYear = %d, want 2024 (origin + %d)", cf.ExpiryYear, CompensationYears)
	}
}

func TestCarryForwardCompensationOldestFirst(t *testing.T) {
	st := store.NewMemoryStore()
	saveSummary(t, st, "p1", 2020, "0", "300")    // loss 300
	saveSummary(t, st, "p1", 2021, "0", "200")    // loss 200
	saveSummary(t, st, "p1", 2022, "400", "0")    // profit 400 compensates 2020 fully, 2021 partially

	svc := NewCarryForwardService(st)
	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	chain, err := st.GetCarryForwards(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetCarryForwards failed: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected 2 carryforwards, got %d", len(chain))
	}

	if !chain[0].IsExhausted() {
		t.Errorf("2020 loss should be fully compensated, remaining %s", chain[0].Remaining)
	}
	if want := decimal.NewFromInt(100); !chain[1].Remaining.Equal(want) {
		t.Errorf("2021 remaining = %s, want %s", chain[1].Remaining, want)
	}
}

func TestCarryForwardExpiredLossNotCompensated(t *testing.T) {
	st := store.NewMemoryStore()
	saveSummary(t, st, "p1", 2016, "0", "500") // expires 2020
	saveSummary(t, st, "p1", 2021, "1000", "0")

	svc := NewCarryForwardService(st)
	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	chain, err := st.GetCarryForwards(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetCarryForwards failed: %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("expected 1 carryforward, got %d", len(chain))
	}

	// The 2021 profit arrived after the 2016 loss expired
	if want := decimal.NewFromInt(500); !chain[0].Remaining.Equal(want) {
		t.Errorf("Remaining = %s, want %s untouched", chain[0].Remaining, want)
	}
}

func TestCarryForwardCompensationAtExpiryYear(t *testing.T) {
	st := store.NewMemoryStore()
	saveSummary(t, st, "p1", 2016, "0", "500") // expires 2020
	saveSummary(t, st, "p1", 2020, "1000", "0")

	svc := NewCarryForwardService(st)
	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	chain, _ := st.GetCarryForwards(context.Background(), "p1")
	if len(chain) != 1 {
		t.Fatalf("expected 1 carryforward, got %d", len(chain))
	}

	// The expiry year itself still allows compensation
	if !chain[0].IsExhausted() {
		t.Errorf("loss should be compensated in its expiry year, remaining %s", chain[0].Remaining)
	}
}

func TestCarryForwardProfitLargerThanLosses(t *testing.T) {
	st := store.NewMemoryStore()
	saveSummary(t, st, "p1", 2020, "0", "100")
	saveSummary(t, st, "p1", 2021, "10000", "0")

	svc := NewCarryForwardService(st)
	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	chain, _ := st.GetCarryForwards(context.Background(), "p1")
	if len(chain) != 1 {
		t.Fatalf("expected 1 carryforward, got %d", len(chain))
	}
	if !chain[0].IsExhausted() {
		t.Errorf("small loss should be fully compensated, remaining %s", chain[0].Remaining)
	}
	// Remaining never goes negative
	if chain[0].Remaining.IsNegative() {
		t.Errorf("Remaining went negative: %s", chain[0].Remaining)
	}
}

func TestCarryForwardNoSummaries(t *testing.T) {
	st := store.NewMemoryStore()

	svc := NewCarryForwardService(st)
	err := svc.Recompute(context.Background(), "p1")
	if err == nil {
		t.Fatal("expected error when no summaries exist")
	}
}

func TestCarryForwardReplacesPreviousChain(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	saveSummary(t, st, "p1", 2020, "0", "500")

	svc := NewCarryForwardService(st)
	if err := svc.Recompute(ctx, "p1"); err != nil {
		t.Fatalf("first Recompute failed: %v", err)
	}

	// The loss year turns profitable after corrected data
	saveSummary(t, st, "p1", 2020, "800", "500")
	if err := svc.Recompute(ctx, "p1"); err != nil {
		t.Fatalf("second Recompute failed: %v", err)
	}

	chain, _ := st.GetCarryForwards(ctx, "p1")
	if len(chain) != 0 {
		t.Errorf("expected empty chain after recomputation, got %d entries", len(chain))
	}
}

func TestCarryForwardAllProfits(t *testing.T) {
	st := store.NewMemoryStore()
	saveSummary(t, st, "p1", 2020, "1000", "100")
	saveSummary(t, st, "p1", 2021, "1000", "200")

	svc := NewCarryForwardService(st)
	if err := svc.Recompute(context.Background(), "p1"); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	chain, _ := st.GetCarryForwards(context.Background(), "p1")
	if len(chain) != 0 {
		t.Errorf("profitable history should produce no carryforwards, got %d", len(chain))
	}
}

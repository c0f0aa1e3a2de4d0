package ai

import (
	"context"
	"testing"
)

func TestInMemoryBudget_NoBudgetMeansUnlimited(t *testing.T) {
	b := NewInMemoryBudget()

	ok, err := b.Check(context.Background(), "school-1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ok {
		t.Error("Check() = false, want true when no budget is set")
	}
}

func TestInMemoryBudget_WithinBudget(t *testing.T) {
	b := NewInMemoryBudget()
	b.SetBudget("school-1", 1000)

	if err := b.Record(context.Background(), "school-1", 500); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	ok, err := b.Check(context.Background(), "school-1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ok {
		t.Error("Check() = false, want true (500 < 1000)")
	}
}

func TestInMemoryBudget_Exhausted(t *testing.T) {
	b := NewInMemoryBudget()
	b.SetBudget("school-1", 100)

	if err := b.Record(context.Background(), "school-1", 100); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	ok, err := b.Check(context.Background(), "school-1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if ok {
		t.Error("Check() = true, want false at exactly the budget")
	}
}

func TestInMemoryBudget_Usage(t *testing.T) {
	b := NewInMemoryBudget()
	b.SetBudget("school-1", 200)
	b.Record(context.Background(), "school-1", 30)
	b.Record(context.Background(), "school-1", 40)

	used, budget, err := b.Usage(context.Background(), "school-1")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 70 || budget != 200 {
		t.Errorf("Usage() = %d/%d, want 70/200", used, budget)
	}
}

func TestInMemoryBudget_ClientsAreIndependent(t *testing.T) {
	b := NewInMemoryBudget()
	b.SetBudget("school-1", 10)
	b.Record(context.Background(), "school-1", 50)

	ok, _ := b.Check(context.Background(), "school-2")
	if !ok {
		t.Error("another client's usage should not affect school-2")
	}
}

func TestInMemoryBudget_RejectsNegative(t *testing.T) {
	b := NewInMemoryBudget()
	if err := b.Record(context.Background(), "school-1", -5); err == nil {
		t.Error("Record() should reject negative token counts")
	}
}

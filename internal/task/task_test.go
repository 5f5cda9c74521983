package task

import (
	"testing"

	"github.com/twiced-technology-gmbh/taskplan/internal/date"
)

func TestHoursDefaultsNonPositive(t *testing.T) {
	tests := []struct {
		hours float64
		want  float64
	}{
		{0, DefaultEstimatedHours},
		{-3, DefaultEstimatedHours},
		{6, 6},
		{0.5, 0.5},
	}
	for _, tt := range tests {
		task := Task{ID: "x", EstimatedHours: tt.hours}
		if got := task.Hours(); got != tt.want {
			t.Errorf("Hours() with %v = %v, want %v", tt.hours, got, tt.want)
		}
	}
}

func TestCompleted(t *testing.T) {
	if (&Task{Status: StatusTodo}).Completed() {
		t.Error("todo task reported completed")
	}
	if !(&Task{Status: StatusCompleted}).Completed() {
		t.Error("completed task not reported completed")
	}
}

func TestByIDLastWriteWins(t *testing.T) {
	d := date.New(2026, 9, 1)
	tasks := []Task{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "other", DueDate: &d},
		{ID: "a", Name: "second"},
	}
	m := ByID(tasks)
	if len(m) != 2 {
		t.Fatalf("ByID returned %d entries, want 2", len(m))
	}
	if m["a"].Name != "second" {
		t.Errorf("duplicate id kept %q, want the later record", m["a"].Name)
	}
}

package task

import (
	"errors"
	"testing"

	"github.com/twiced-technology-gmbh/taskplan/internal/clierr"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	task := Task{ID: "x", Name: "X"}
	Normalize(&task)
	if task.Status != StatusTodo {
		t.Errorf("status = %q, want %q", task.Status, StatusTodo)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("priority = %q, want %q", task.Priority, PriorityMedium)
	}

	// Explicit values survive.
	task2 := Task{ID: "y", Status: StatusBlocked, Priority: PriorityCritical}
	Normalize(&task2)
	if task2.Status != StatusBlocked || task2.Priority != PriorityCritical {
		t.Errorf("Normalize overwrote explicit fields: %+v", task2)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"valid", Task{ID: "a", Status: StatusTodo, Priority: PriorityLow}, false},
		{"no id", Task{Status: StatusTodo, Priority: PriorityLow}, true},
		{"bad status", Task{ID: "a", Status: "later", Priority: PriorityLow}, true},
		{"bad priority", Task{ID: "a", Status: StatusTodo, Priority: "urgent"}, true},
		{"self dependency", Task{ID: "a", Status: StatusTodo, Priority: PriorityLow, Dependencies: []string{"a"}}, true},
		{"dangling dependency ok", Task{ID: "a", Status: StatusTodo, Priority: PriorityLow, Dependencies: []string{"ghost"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.task)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ce *clierr.Error
				if !errors.As(err, &ce) {
					t.Errorf("error is %T, want *clierr.Error", err)
				} else if ce.Code != clierr.ValidationFailed {
					t.Errorf("code = %q, want %q", ce.Code, clierr.ValidationFailed)
				}
			}
		})
	}
}

package styles

import (
	"strings"
	"testing"

	"github.com/AGLOP-1354/taskboard/internal/task"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status   task.Status
		expected string // Expected color hex value
	}{
		{task.StatusTodo, "#9CA3AF"},
		{task.StatusInProgress, "#60A5FA"},
		{task.StatusCompleted, "#10B981"},
		{"archived", "#9CA3AF"}, // Should fall back to MutedColor
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := StatusColor(tt.status)
			if string(got) != tt.expected {
				t.Errorf("StatusColor(%q) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		status   task.Status
		expected string
	}{
		{task.StatusTodo, "○"},
		{task.StatusInProgress, "●"},
		{task.StatusCompleted, "✓"},
		{"archived", "·"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := StatusIcon(tt.status); got != tt.expected {
				t.Errorf("StatusIcon(%q) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestPriorityBadge(t *testing.T) {
	tests := []struct {
		priority task.Priority
		label    string
	}{
		{task.PriorityHigh, "HIGH"},
		{task.PriorityMedium, "MED"},
		{task.PriorityLow, "LOW"},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := PriorityBadge(tt.priority); !strings.Contains(got, tt.label) {
				t.Errorf("PriorityBadge(%q) = %q, want it to contain %q", tt.priority, got, tt.label)
			}
		})
	}
}

package appointments

import (
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	allowed := [][2]string{
		{"pending", "confirmed"},
		{"pending", "cancelled"},
		{"confirmed", "completed"},
		{"confirmed", "cancelled"},
	}
	for _, edge := range allowed {
		if !CanTransition(edge[0], edge[1]) {
			t.Fatalf("expected %s -> %s to be allowed", edge[0], edge[1])
		}
	}

	rejected := [][2]string{
		{"pending", "completed"},
		{"confirmed", "pending"},
		{"completed", "confirmed"},
		{"completed", "cancelled"},
		{"cancelled", "pending"},
		{"cancelled", "confirmed"},
		{"pending", "pending"},
	}
	for _, edge := range rejected {
		if CanTransition(edge[0], edge[1]) {
			t.Fatalf("expected %s -> %s to be rejected", edge[0], edge[1])
		}
	}
}

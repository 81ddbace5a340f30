package protocol

import (
	"reflect"
	"testing"
)

func TestBacklogDropsOldest(t *testing.T) {
	b := NewBacklog(3)
	b.Add("1", "2")
	b.Add("3", "4", "5")

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if b.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", b.Dropped())
	}
	if got := b.Drain(); !reflect.DeepEqual(got, []string{"3", "4", "5"}) {
		t.Errorf("Drain() = %q", got)
	}
}

func TestBacklogAddNothing(t *testing.T) {
	b := NewBacklog(10)
	b.Add()
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
	if got := b.Drain(); got != nil {
		t.Errorf("Drain() = %q, want nil", got)
	}
}

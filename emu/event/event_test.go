package event

import "testing"

func TestAddFiresAtExactTime(t *testing.T) {
	q := NewQueue()
	fired := false
	q.Add(1, func(arg int) { fired = true }, 5, 0)
	q.Advance(4)
	if fired {
		t.Fatal("fired too early")
	}
	q.Advance(1)
	if !fired {
		t.Fatal("did not fire at scheduled time")
	}
}

func TestAddZeroTimeFiresImmediately(t *testing.T) {
	q := NewQueue()
	fired := false
	q.Add(1, func(arg int) { fired = true }, 0, 0)
	if !fired {
		t.Fatal("zero-delay event should fire synchronously")
	}
}

func TestCancelRemovesEvent(t *testing.T) {
	q := NewQueue()
	fired := false
	q.Add(1, func(arg int) { fired = true }, 5, 7)
	q.Cancel(1, 7)
	q.Advance(10)
	if fired {
		t.Fatal("canceled event fired")
	}
}

func TestOrderingMultipleEvents(t *testing.T) {
	q := NewQueue()
	var order []int
	q.Add(1, func(arg int) { order = append(order, arg) }, 10, 1)
	q.Add(1, func(arg int) { order = append(order, arg) }, 3, 2)
	q.Add(1, func(arg int) { order = append(order, arg) }, 7, 3)
	q.Advance(10)
	want := []int{2, 3, 1}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

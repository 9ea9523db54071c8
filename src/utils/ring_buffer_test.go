package utils

import (
	"testing"

	"confluence-engine/src/models"
)

func bar(ts int64) models.MBar {
	return models.MBar{Timestamp: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := int64(1); i <= 5; i++ {
		rb.Append(bar(i * 100))
	}

	if rb.Size() != 3 || !rb.IsFull() {
		t.Fatalf("size %d full %v", rb.Size(), rb.IsFull())
	}

	all := rb.GetAll()
	want := []int64{300, 400, 500}
	for i, ts := range want {
		if all[i].Timestamp != ts {
			t.Fatalf("GetAll[%d] = %d, want %d", i, all[i].Timestamp, ts)
		}
	}
	if rb.LastTimestamp() != 500 {
		t.Fatalf("last timestamp %d", rb.LastTimestamp())
	}
}

func TestRingBufferGetLatest(t *testing.T) {
	rb := NewRingBuffer(10)
	for i := int64(1); i <= 5; i++ {
		rb.Append(bar(i * 100))
	}

	latest := rb.GetLatest(2)
	if len(latest) != 2 || latest[0].Timestamp != 400 || latest[1].Timestamp != 500 {
		t.Fatalf("GetLatest(2) = %+v", latest)
	}

	// Asking for more than stored caps at the size.
	if got := rb.GetLatest(100); len(got) != 5 {
		t.Fatalf("over-ask should cap at size, got %d", len(got))
	}
	if got := rb.GetLatest(0); len(got) != 0 {
		t.Fatalf("zero ask should be empty, got %d", len(got))
	}
}

func TestRingBufferResizeKeepsNewest(t *testing.T) {
	rb := NewRingBuffer(5)
	for i := int64(1); i <= 5; i++ {
		rb.Append(bar(i * 100))
	}

	rb.Resize(3)
	if rb.Capacity() != 3 || rb.Size() != 3 {
		t.Fatalf("capacity %d size %d", rb.Capacity(), rb.Size())
	}
	all := rb.GetAll()
	if all[0].Timestamp != 300 || all[2].Timestamp != 500 {
		t.Fatalf("resize should keep the newest rows: %+v", all)
	}
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Append(bar(100))
	rb.Clear()
	if rb.Size() != 0 || rb.LastTimestamp() != 0 {
		t.Fatal("clear should empty the buffer")
	}
	if got := rb.GetAll(); len(got) != 0 {
		t.Fatalf("cleared buffer returned %d bars", len(got))
	}
}

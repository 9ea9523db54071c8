package utils

import (
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of OHLCV bars.
// True ring buffer - no resizing allowed outside Resize().
// -----------------------------------------------------------------------------

const (
	rbNumFeatures = 6

	rbIdxTimestamp = 0
	rbIdxOpen      = 1
	rbIdxHigh      = 2
	rbIdxLow       = 3
	rbIdxClose     = 4
	rbIdxVolume    = 5
)

type RingBuffer struct {
	// Data storage as 2D slice (rows x features)
	data     [][rbNumFeatures]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &RingBuffer{
		data:     make([][rbNumFeatures]float64, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds one bar (Strict Type)
func (rb *RingBuffer) Append(bar models.MBar) {
	rb.data[rb.index] = [rbNumFeatures]float64{
		float64(bar.Timestamp),
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
	}

	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

func rowToBar(row [rbNumFeatures]float64) models.MBar {
	return models.MBar{
		Timestamp: int64(row[rbIdxTimestamp]),
		Open:      row[rbIdxOpen],
		High:      row[rbIdxHigh],
		Low:       row[rbIdxLow],
		Close:     row[rbIdxClose],
		Volume:    row[rbIdxVolume],
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n newest bars in chronological order
func (rb *RingBuffer) GetLatest(n int) []models.MBar {
	if rb.size == 0 || n <= 0 {
		return []models.MBar{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MBar, count)

	// Latest data sits just before the write index.
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := 0; i < count; i++ {
		idx := (startIdx + i) % rb.capacity
		result[i] = rowToBar(rb.data[idx])
	}
	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all bars in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.MBar {
	if rb.size == 0 {
		return []models.MBar{}
	}

	result := make([]models.MBar, rb.size)

	var startIdx int
	if rb.size == rb.capacity {
		// Buffer is full, oldest is at current index (wrap-around)
		startIdx = rb.index
	}

	for i := 0; i < rb.size; i++ {
		idx := (startIdx + i) % rb.capacity
		result[i] = rowToBar(rb.data[idx])
	}
	return result
}

// -----------------------------------------------------------------------------

// LastTimestamp returns the newest bar's timestamp, or 0 when empty.
func (rb *RingBuffer) LastTimestamp() int64 {
	if rb.size == 0 {
		return 0
	}
	idx := (rb.index - 1 + rb.capacity) % rb.capacity
	return int64(rb.data[idx][rbIdxTimestamp])
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// Resize changes the capacity of the buffer
// If newCapacity < size, oldest data is dropped
func (rb *RingBuffer) Resize(newCapacity int) {
	if newCapacity <= 0 || newCapacity == rb.capacity {
		return
	}

	newData := make([][rbNumFeatures]float64, newCapacity)

	count := rb.size
	if count > newCapacity {
		count = newCapacity
	}

	// Keep the newest 'count' rows.
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := 0; i < count; i++ {
		idx := (startIdx + i) % rb.capacity
		newData[i] = rb.data[idx]
	}

	rb.data = newData
	rb.capacity = newCapacity
	rb.size = count
	rb.index = count % newCapacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}

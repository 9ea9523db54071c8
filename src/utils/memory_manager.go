package utils

import (
	"runtime"
	"runtime/debug"
	"sync"

	"confluence-engine/src/logger"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// MemoryManager holds the per-symbol bar caches. The engine fills a cache
// after every successful history fetch and reads it back when the upstream
// is down, so a provider outage degrades to stale data instead of errors.
// -----------------------------------------------------------------------------

type MemoryManager struct {
	DataStreams   map[string]*RingBuffer
	MaxMemoryMB   int
	MaxDataPoints int
	Logger        *logger.Logger
	mu            sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMemoryManager(maxMemoryMB, maxDataPoints int, logLevel string) *MemoryManager {
	return &MemoryManager{
		DataStreams:   make(map[string]*RingBuffer),
		MaxMemoryMB:   maxMemoryMB,
		MaxDataPoints: maxDataPoints,
		Logger:        logger.NewLogger(logLevel, "MemoryManager"),
	}
}

// -----------------------------------------------------------------------------

// StoreBars replaces a symbol's cached history with a fresh fetch.
func (mm *MemoryManager) StoreBars(symbol string, bars []models.MBar) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	buffer, ok := mm.DataStreams[symbol]
	if !ok {
		buffer = NewRingBuffer(mm.MaxDataPoints)
		mm.DataStreams[symbol] = buffer
	}

	buffer.Clear()
	for _, bar := range bars {
		buffer.Append(bar)
	}

	if len(mm.DataStreams)%10 == 0 {
		mm.checkMemoryLimitsLocked()
	}
}

// -----------------------------------------------------------------------------

// GetBars returns a symbol's cached history, oldest first.
func (mm *MemoryManager) GetBars(symbol string) []models.MBar {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buffer, ok := mm.DataStreams[symbol]
	if !ok {
		return nil
	}
	return buffer.GetAll()
}

// -----------------------------------------------------------------------------

// GetLatestBars returns up to n newest cached bars for a symbol.
func (mm *MemoryManager) GetLatestBars(symbol string, n int) []models.MBar {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buffer, ok := mm.DataStreams[symbol]
	if !ok {
		return nil
	}
	return buffer.GetLatest(n)
}

// -----------------------------------------------------------------------------

// checkMemoryLimitsLocked enforces the memory ceiling. Caller holds mu.
func (mm *MemoryManager) checkMemoryLimitsLocked() {
	currentMemory := mm.GetProcessMemoryMB()
	if currentMemory <= float64(mm.MaxMemoryMB) {
		return
	}

	mm.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Cleaning up.",
		currentMemory, mm.MaxMemoryMB)

	// Halve retention to free memory.
	for symbol := range mm.DataStreams {
		buffer := mm.DataStreams[symbol]
		if buffer.Capacity() > 100 {
			newCapacity := buffer.Capacity() / 2
			if newCapacity < 50 {
				newCapacity = 50
			}
			buffer.Resize(newCapacity)
		}
	}

	runtime.GC()
	debug.FreeOSMemory()
}

// -----------------------------------------------------------------------------

// GetProcessMemoryMB gets current process memory usage in MB
func (mm *MemoryManager) GetProcessMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / 1024 / 1024
}

// -----------------------------------------------------------------------------

// Cleanup clears all cached data
func (mm *MemoryManager) Cleanup() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.DataStreams = make(map[string]*RingBuffer)
	runtime.GC()
	debug.FreeOSMemory()
}

// -----------------------------------------------------------------------------

// SymbolCount returns number of symbols with cached data
func (mm *MemoryManager) SymbolCount() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	return len(mm.DataStreams)
}

package helpers

// -----------------------------------------------------------------------------

// Bounds for the bar-cache memory budget. The floor keeps the cache usable
// on small hosts; machines under the floor just get everything they have.
const (
	memoryBudgetFraction = 0.75
	memoryBudgetFloorMB  = 512
)

// GetRecommendedMemoryLimit returns the bar-cache budget in MB: a fixed
// fraction of physical RAM, never below the floor unless the host itself
// is smaller than it.
func GetRecommendedMemoryLimit() int {
	totalMB := GetTotalSystemMemoryMB()
	if totalMB == 0 {
		return memoryBudgetFloorMB
	}

	limit := int(float64(totalMB) * memoryBudgetFraction)
	if limit >= memoryBudgetFloorMB {
		return limit
	}
	if totalMB < memoryBudgetFloorMB {
		return totalMB
	}
	return memoryBudgetFloorMB
}

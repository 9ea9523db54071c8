//go:build linux

package helpers

import (
	"os"
	"strconv"
	"strings"
)

// GetTotalSystemMemoryMB reads the physical memory size from /proc/meminfo.
// Returns 0 when it cannot be determined.
func GetTotalSystemMemoryMB() int {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}

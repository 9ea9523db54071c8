//go:build darwin

package helpers

import (
	"os/exec"
	"strconv"
	"strings"
)

// GetTotalSystemMemoryMB asks sysctl for the physical memory size.
// Returns 0 when it cannot be determined.
func GetTotalSystemMemoryMB() int {
	out, err := exec.Command("sysctl", "-n", "hw.memsize").Output()
	if err != nil {
		return 0
	}

	bytes, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0
	}
	return int(bytes / 1024 / 1024)
}

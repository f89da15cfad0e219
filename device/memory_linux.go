package device

import "golang.org/x/sys/unix"

// hostMemoryGB returns the total amount of system memory in gigabytes.
func hostMemoryGB() (float64, bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, false
	}
	total := float64(info.Totalram) * float64(info.Unit)
	return total / (1 << 30), total > 0
}

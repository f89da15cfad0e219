//go:build !linux

package device

func hostMemoryGB() (float64, bool) {
	return 0, false
}

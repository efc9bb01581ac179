// Package memstat reads the host's memory-pressure ratio for the optional
// memory-pressure eviction path (spec §5), degrading to unavailable on
// non-Linux rather than failing the caller.
package memstat

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// UsageRatio returns the fraction of total memory currently in use, derived
// from /proc/meminfo's MemTotal/MemAvailable fields. Returns an error on any
// platform where /proc/meminfo isn't present.
func UsageRatio() (float64, error) {
	if runtime.GOOS != "linux" {
		return 0, fmt.Errorf("memstat: unsupported platform %s", runtime.GOOS)
	}
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, fmt.Errorf("memstat: open /proc/meminfo: %w", err)
	}
	defer f.Close()

	var totalKB, availKB float64
	var haveTotal, haveAvail bool

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			totalKB, haveTotal = parseKB(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			availKB, haveAvail = parseKB(line)
		}
		if haveTotal && haveAvail {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("memstat: scan /proc/meminfo: %w", err)
	}
	if !haveTotal || totalKB == 0 {
		return 0, fmt.Errorf("memstat: MemTotal not found in /proc/meminfo")
	}
	if !haveAvail {
		return 0, fmt.Errorf("memstat: MemAvailable not found in /proc/meminfo")
	}
	return (totalKB - availKB) / totalKB, nil
}

func parseKB(line string) (float64, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

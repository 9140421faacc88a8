package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse parses an interval specification into a duration.
// Supports two formats:
//   - Tick counts: "20t" means 20 ticks of length tick
//   - Go duration format: "1s", "500ms", "1m30s"
//
// The interval must be positive.
func Parse(spec string, tick time.Duration) (time.Duration, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("empty interval specification")
	}

	if count, ok := strings.CutSuffix(spec, "t"); ok {
		n, err := strconv.Atoi(count)
		if err != nil {
			return 0, fmt.Errorf("invalid tick count: %s", spec)
		}
		if n <= 0 {
			return 0, fmt.Errorf("interval must be positive: %s", spec)
		}
		if tick <= 0 {
			return 0, fmt.Errorf("tick length must be positive to use tick intervals")
		}
		return time.Duration(n) * tick, nil
	}

	d, err := time.ParseDuration(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid interval specification: %s (use ticks like '20t' or a duration like '1s')", spec)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive: %s", spec)
	}
	return d, nil
}

// Ticks converts d to a whole number of ticks, rounding up. Positive
// durations always map to at least one tick.
func Ticks(d, tick time.Duration) int {
	if d <= 0 || tick <= 0 {
		return 0
	}
	return int((d + tick - 1) / tick)
}

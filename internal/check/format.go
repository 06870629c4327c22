package check

import (
	"fmt"
	"strings"
	"time"
)

// elapsedGranularity is how many units FormatElapsed keeps.
const elapsedGranularity = 2

var elapsedUnits = []struct {
	name    string
	seconds int64
}{
	{"weeks", 604800},
	{"days", 86400},
	{"hours", 3600},
	{"minutes", 60},
	{"seconds", 1},
}

// FormatElapsed renders a duration as its two largest non-zero units,
// e.g. 90061s -> "1 day, 1 hour". A unit with magnitude exactly 1 is
// singularized. Sub-second durations render as "0 seconds".
func FormatElapsed(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds < 1 {
		return "0 seconds"
	}

	var parts []string
	for _, unit := range elapsedUnits {
		value := seconds / unit.seconds
		if value == 0 {
			continue
		}
		seconds -= value * unit.seconds

		name := unit.name
		if value == 1 {
			name = strings.TrimSuffix(name, "s")
		}
		parts = append(parts, fmt.Sprintf("%d %s", value, name))
		if len(parts) == elapsedGranularity {
			break
		}
	}
	return strings.Join(parts, ", ")
}

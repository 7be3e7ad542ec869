package ringseg

import "fmt"

// preferredParts maps a segment count to the part count used when the
// requested one does not divide evenly. The values are multiples of the
// segment count near the default of 36 slices.
var preferredParts = map[int]int{
	1: 42, 2: 42, 3: 42, 6: 42, 7: 42, 14: 42,
	4: 40, 5: 40, 10: 40,
	8: 48, 12: 48, 16: 48,
	9: 45, 15: 45,
	11: 44,
	13: 39,
	17: 51,
}

// NormalizeParts suggests a TotalParts value for segmentCount that is at
// least minimum (and never below MinParts) and divisible by segmentCount.
// A minimum that already qualifies is returned as is; otherwise the
// preferred value for the segment count is used, or the next multiple of
// segmentCount when the preferred value is too small.
//
// The result is advisory: callers apply it to their config explicitly.
// A minimum that cannot be met within MaxParts is an error.
func NormalizeParts(segmentCount, minimum int) (int, error) {
	if segmentCount < 1 || segmentCount > MaxSegments {
		return 0, &ConfigError{"segments", fmt.Sprintf("is %d, must be between 1 and %d", segmentCount, MaxSegments)}
	}

	parts := max(minimum, MinParts)
	switch {
	case parts%segmentCount == 0:
	case preferredParts[segmentCount] >= parts:
		parts = preferredParts[segmentCount]
	default:
		parts = (parts/segmentCount + 1) * segmentCount
	}
	if parts > MaxParts {
		return 0, &ConfigError{"parts", fmt.Sprintf("no multiple of %d between %d and %d", segmentCount, minimum, MaxParts)}
	}
	return parts, nil
}

package tsl

import "math"

// RSSI thresholds for the percentage scale, in dBm.
const (
	StrengthFloorDBm   = -90.0
	StrengthCeilingDBm = -25.0
)

// StrengthPercent converts an RSSI sample in dBm to a 0-100 percentage.
//
// Values at or below the floor map to 0 and values at or above the
// ceiling map to 100. Values between are scaled linearly.
func StrengthPercent(dbm float64) int {
	if dbm <= StrengthFloorDBm {
		return 0
	}
	if dbm >= StrengthCeilingDBm {
		return 100
	}
	span := StrengthCeilingDBm - StrengthFloorDBm
	return int(math.Round((dbm - StrengthFloorDBm) * 100 / span))
}

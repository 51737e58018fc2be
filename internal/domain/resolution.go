package domain

import "time"

// Resolution is a downsampling bucket width.
type Resolution string

const (
	Resolution1m  Resolution = "1m"
	Resolution5m  Resolution = "5m"
	Resolution15m Resolution = "15m"
	Resolution30m Resolution = "30m"
	Resolution1h  Resolution = "1h"
	Resolution6h  Resolution = "6h"
	Resolution1d  Resolution = "1d"

	DefaultResolution = Resolution15m
)

var resolutionWidths = map[Resolution]time.Duration{
	Resolution1m:  time.Minute,
	Resolution5m:  5 * time.Minute,
	Resolution15m: 15 * time.Minute,
	Resolution30m: 30 * time.Minute,
	Resolution1h:  time.Hour,
	Resolution6h:  6 * time.Hour,
	Resolution1d:  24 * time.Hour,
}

// Resolutions lists the supported values, finest first.
var Resolutions = []Resolution{
	Resolution1m, Resolution5m, Resolution15m, Resolution30m,
	Resolution1h, Resolution6h, Resolution1d,
}

func (r Resolution) Valid() bool {
	_, ok := resolutionWidths[r]
	return ok
}

// Width is the bucket width. Unrecognised values use the 15m width.
func (r Resolution) Width() time.Duration {
	if w, ok := resolutionWidths[r]; ok {
		return w
	}
	return resolutionWidths[DefaultResolution]
}

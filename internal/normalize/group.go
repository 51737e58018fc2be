package normalize

import (
	"time"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

// newerOrEqual is the recency rule used for "latest" selection: a record
// replaces the current pick when its resolved time is not older. Records are
// visited in input order, so on equal times the later record wins.
func newerOrEqual(candidate, current time.Time) bool {
	return !candidate.Before(current)
}

// LatestPerDevice reduces records to one reading per device serial. Devices
// appear in order of their first record.
func LatestPerDevice(records []domain.RawRecord) []domain.NormalizedReading {
	type pick struct {
		rec domain.RawRecord
		at  time.Time
	}
	var order []string
	picks := make(map[string]pick)
	for _, rec := range records {
		_, at := ResolvedTime(rec)
		serial := rec.Serial()
		cur, seen := picks[serial]
		if !seen {
			order = append(order, serial)
		}
		if !seen || newerOrEqual(at, cur.at) {
			picks[serial] = pick{rec: rec, at: at}
		}
	}
	out := make([]domain.NormalizedReading, 0, len(order))
	for _, serial := range order {
		out = append(out, Normalize(picks[serial].rec))
	}
	return out
}

// DeviceRecords is one device's records in input order.
type DeviceRecords struct {
	Serial  string
	Records []domain.RawRecord
}

// GroupByDevice partitions records by device serial, keeping input order
// within each group and ordering groups by first appearance.
func GroupByDevice(records []domain.RawRecord) []DeviceRecords {
	index := make(map[string]int)
	var groups []DeviceRecords
	for _, rec := range records {
		serial := rec.Serial()
		i, ok := index[serial]
		if !ok {
			i = len(groups)
			index[serial] = i
			groups = append(groups, DeviceRecords{Serial: serial})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// Latest returns the chronologically last record under the same rule as
// LatestPerDevice, ignoring device identity.
func Latest(records []domain.RawRecord) (domain.RawRecord, bool) {
	var (
		best   domain.RawRecord
		bestAt time.Time
	)
	for _, rec := range records {
		_, at := ResolvedTime(rec)
		if best == nil || newerOrEqual(at, bestAt) {
			best, bestAt = rec, at
		}
	}
	return best, best != nil
}

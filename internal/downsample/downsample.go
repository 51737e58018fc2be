// Package downsample buckets history points into fixed-width time windows.
package downsample

import (
	"sort"
	"time"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

// mean accumulates the non-nil values of one field.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	return domain.Float(m.sum / float64(m.n))
}

type bucket struct {
	start                            int64
	co2, voc, temp, humidity, allerg mean
}

// BucketStart returns floor(ms / width) * width for the instant t.
func BucketStart(t time.Time, width time.Duration) int64 {
	w := width.Milliseconds()
	ms := t.UnixMilli()
	q := ms / w
	if ms%w != 0 && ms < 0 {
		q--
	}
	return q * w
}

// Downsample averages points per bucket of the given resolution. Each field is
// averaged over the points that carry it and stays nil when none do. The
// output has one point per non-empty bucket, stamped with the bucket start and
// sorted ascending. Points with a zero time are skipped.
func Downsample(points []domain.HistoryPoint, res domain.Resolution) []domain.HistoryPoint {
	if len(points) == 0 {
		return []domain.HistoryPoint{}
	}
	width := res.Width()
	buckets := make(map[int64]*bucket)
	for _, p := range points {
		if p.T.Time().IsZero() {
			continue
		}
		key := BucketStart(p.T.Time(), width)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{start: key}
			buckets[key] = b
		}
		b.co2.add(p.CO2PPM)
		b.voc.add(p.VOC)
		b.temp.add(p.TemperatureC)
		b.humidity.add(p.HumidityPct)
		b.allerg.add(p.AllergenIndex)
	}

	out := make([]domain.HistoryPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, domain.HistoryPoint{
			T:             domain.Timestamp(time.UnixMilli(b.start).UTC()),
			CO2PPM:        b.co2.value(),
			VOC:           b.voc.value(),
			TemperatureC:  b.temp.value(),
			HumidityPct:   b.humidity.value(),
			AllergenIndex: b.allerg.value(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].T.Time().Before(out[j].T.Time())
	})
	return out
}

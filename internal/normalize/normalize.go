// Package normalize resolves raw upstream records into canonical readings and
// history points. Absent fields become nil; nothing here returns an error.
package normalize

import (
	"time"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

// fields is the schema-independent view of a raw record.
type fields struct {
	serial       string
	online       bool
	sinceLast    *string
	deviceTime   string
	requestTime  string
	temperature  *float64
	humidity     *float64
	co2          *float64
	voc          *float64
	indices      domain.IndicesBlock
	allergens    domain.AllergenBlock
	classes      domain.ClassTree
	classesFound bool
}

func extract(raw domain.RawRecord) fields {
	switch r := raw.(type) {
	case *domain.VendorRecord:
		f := fields{
			serial:      r.DeviceSerial,
			online:      r.IsDeviceOnline,
			sinceLast:   r.TimeSinceLastReading,
			requestTime: r.RequestDateTime,
		}
		if sd := r.SensorData; sd != nil {
			f.deviceTime = sd.SensorDateTime
			f.temperature, f.humidity, f.co2, f.voc = sd.Temperature, sd.Humidity, sd.CO2, sd.VOC
		}
		if si := r.SensorIndices; si != nil {
			f.indices = domain.IndicesBlock{CO2: si.CO2, VOC: si.VOC, Pollution: si.Pollution}
		}
		f.allergens = allergens(r.MLParticleIndices)
		if r.MLParticleClasses != nil {
			f.classes, f.classesFound = *r.MLParticleClasses, true
		}
		return f
	case *domain.ProxyRecord:
		f := fields{
			serial:    r.DeviceSerial,
			online:    r.IsDeviceOnline,
			sinceLast: r.TimeSinceLastReading,
		}
		if s := r.Sensor; s != nil {
			f.deviceTime = s.DateTime
			f.temperature, f.humidity, f.co2, f.voc = s.Temperature, s.Humidity, s.CO2, s.VOC
		}
		if r.Indices != nil {
			f.indices = *r.Indices
		}
		if p := r.Particles; p != nil {
			f.allergens = allergens(p.Indices)
			if p.Classes != nil {
				f.classes, f.classesFound = *p.Classes, true
			}
		}
		return f
	}
	return fields{}
}

func allergens(pi *domain.ParticleIndices) domain.AllergenBlock {
	if pi == nil {
		return domain.AllergenBlock{}
	}
	return domain.AllergenBlock{
		Pollen:   copyIndex(pi.Pollen),
		Mites:    copyIndex(pi.Mites),
		Dander:   copyIndex(pi.Dander),
		Mold:     copyIndex(pi.Mold),
		Allergen: copyIndex(pi.Allergen),
	}
}

func copyIndex(ix *domain.Index) *domain.Index {
	if ix == nil {
		return nil
	}
	c := *ix
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// resolve picks the device-reported time, falling back to the request time.
func (f fields) resolve() (string, time.Time) {
	s := f.deviceTime
	if s == "" {
		s = f.requestTime
	}
	t, _ := domain.ParseTime(s)
	return s, t
}

// ResolvedTime returns the record's timestamp string and its parsed instant.
// Unparseable or missing times resolve to the zero instant.
func ResolvedTime(raw domain.RawRecord) (string, time.Time) {
	return extract(raw).resolve()
}

// Normalize converts one raw record into a canonical reading. Index triples
// are copied verbatim.
func Normalize(raw domain.RawRecord) domain.NormalizedReading {
	f := extract(raw)
	ts, _ := f.resolve()
	return domain.NormalizedReading{
		DeviceSerial:         f.serial,
		Timestamp:            ts,
		Online:               f.online,
		TimeSinceLastReading: f.sinceLast,
		Sensor: domain.SensorBlock{
			TemperatureC: copyFloat(f.temperature),
			HumidityPct:  copyFloat(f.humidity),
			CO2PPM:       copyFloat(f.co2),
			VOC:          copyFloat(f.voc),
		},
		Indices: domain.IndicesBlock{
			CO2:       copyIndex(f.indices.CO2),
			VOC:       copyIndex(f.indices.VOC),
			Pollution: copyIndex(f.indices.Pollution),
		},
		Allergens: f.allergens,
	}
}

// ToPoint flattens a raw record into a history point. Only the numeric value
// of the allergen index is kept.
func ToPoint(raw domain.RawRecord) domain.HistoryPoint {
	f := extract(raw)
	_, t := f.resolve()
	p := domain.HistoryPoint{
		T:            domain.Timestamp(t),
		CO2PPM:       copyFloat(f.co2),
		VOC:          copyFloat(f.voc),
		TemperatureC: copyFloat(f.temperature),
		HumidityPct:  copyFloat(f.humidity),
	}
	if a := f.allergens.Allergen; a != nil {
		p.AllergenIndex = domain.Float(a.Index)
	}
	return p
}

// Classes returns the record's particle-class tree, if it carries one.
func Classes(raw domain.RawRecord) (domain.ClassTree, bool) {
	f := extract(raw)
	return f.classes, f.classesFound
}

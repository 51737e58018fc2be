package domain

// Index is a banded air-quality index as reported by the vendor.
type Index struct {
	Index  float64 `json:"index"`
	Verbal string  `json:"verbal"`
	Color  string  `json:"color"`
}

type DeviceInfo struct {
	DeviceSerial string `db:"device_serial" json:"device_serial"`
	Name         string `db:"name" json:"name"`
}

type SensorBlock struct {
	TemperatureC *float64 `json:"temperature_c"`
	HumidityPct  *float64 `json:"humidity_pct"`
	CO2PPM       *float64 `json:"co2_ppm"`
	VOC          *float64 `json:"voc"`
}

type IndicesBlock struct {
	CO2       *Index `json:"co2"`
	VOC       *Index `json:"voc"`
	Pollution *Index `json:"pollution"`
}

type AllergenBlock struct {
	Pollen   *Index `json:"pollen"`
	Mites    *Index `json:"mites"`
	Dander   *Index `json:"dander"`
	Mold     *Index `json:"mold"`
	Allergen *Index `json:"allergen"`
}

// NormalizedReading is the canonical snapshot of one device.
type NormalizedReading struct {
	DeviceSerial         string        `json:"device_serial"`
	Timestamp            string        `json:"timestamp"`
	Online               bool          `json:"online"`
	TimeSinceLastReading *string       `json:"time_since_last_reading"`
	Sensor               SensorBlock   `json:"sensor"`
	Indices              IndicesBlock  `json:"indices"`
	Allergens            AllergenBlock `json:"allergens"`
}

// HistoryPoint is one time-indexed measurement set. Nil fields mean "no value".
type HistoryPoint struct {
	T             Timestamp `json:"t"`
	CO2PPM        *float64  `json:"co2_ppm"`
	VOC           *float64  `json:"voc"`
	TemperatureC  *float64  `json:"temperature_c"`
	HumidityPct   *float64  `json:"humidity_pct"`
	AllergenIndex *float64  `json:"allergen_index"`
}

type ParticleClass struct {
	Class string  `json:"class"`
	Count float64 `json:"count"`
}

type DeviceSeries struct {
	DeviceSerial string         `json:"device_serial"`
	Points       []HistoryPoint `json:"points"`
}

// Result payloads returned by the tool operations.

type DeviceList struct {
	Devices []DeviceInfo `json:"devices"`
}

type LatestResult struct {
	Readings []NormalizedReading `json:"readings"`
}

type HistoryResult struct {
	Series []DeviceSeries `json:"series"`
}

type BreakdownResult struct {
	DeviceSerial string          `json:"device_serial"`
	TopClasses   []ParticleClass `json:"top_classes"`
	Raw          ClassTree       `json:"raw"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

package domain

// RawRecord is one upstream record in one of the known upstream schemas. It is
// resolved to the canonical types by the normalize package and never leaves it.
type RawRecord interface {
	Serial() string
	rawRecord()
}

// ParticleIndices is the allergen index block shared by both schemas.
type ParticleIndices struct {
	Pollen   *Index `json:"pollen"`
	Mites    *Index `json:"mites"`
	Dander   *Index `json:"dander"`
	Mold     *Index `json:"mold"`
	Allergen *Index `json:"allergen"`
}

// VendorRecord is the indoor_data API record (format "json2").
type VendorRecord struct {
	DeviceSerial         string               `json:"device_serial"`
	IsDeviceOnline       bool                 `json:"is_device_online"`
	TimeSinceLastReading *string              `json:"time_since_last_reading"`
	RequestDateTime      string               `json:"request_date_time"`
	SensorData           *VendorSensorData    `json:"sensor_data"`
	SensorIndices        *VendorSensorIndices `json:"sensor_indices"`
	MLParticleIndices    *ParticleIndices     `json:"ml_particle_indices,omitempty"`
	MLParticleClasses    *ClassTree           `json:"ml_particle_classes,omitempty"`
}

type VendorSensorData struct {
	SensorDateTime string   `json:"sensor_date_time"`
	Temperature    *float64 `json:"temperature"`
	Humidity       *float64 `json:"humidity"`
	CO2            *float64 `json:"co2"`
	VOC            *float64 `json:"voc"`
}

type VendorSensorIndices struct {
	CO2         *Index   `json:"co2"`
	VOC         *Index   `json:"voc"`
	Pollution   *Index   `json:"pollution"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

func (r *VendorRecord) Serial() string { return r.DeviceSerial }
func (*VendorRecord) rawRecord()       {}

// ProxyRecord is one entry of the database proxy function's "devices" list.
// The proxy does not report a request time.
type ProxyRecord struct {
	DeviceSerial         string          `json:"device_serial"`
	IsDeviceOnline       bool            `json:"is_device_online"`
	TimeSinceLastReading *string         `json:"time_since_last_reading"`
	Sensor               *ProxySensor    `json:"sensor"`
	Indices              *IndicesBlock   `json:"indices"`
	Particles            *ProxyParticles `json:"particles"`
}

type ProxySensor struct {
	DateTime    string   `json:"date_time"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	CO2         *float64 `json:"co2"`
	VOC         *float64 `json:"voc"`
}

type ProxyParticles struct {
	Indices *ParticleIndices `json:"indices"`
	Classes *ClassTree       `json:"classes"`
}

// ProxyResponse is the proxy function's response body.
type ProxyResponse struct {
	Devices []ProxyRecord `json:"devices"`
}

func (r *ProxyRecord) Serial() string { return r.DeviceSerial }
func (*ProxyRecord) rawRecord()       {}

package service

import "encoding/json"

const (
	ToolListDevices       = "sensio_list_device_serials"
	ToolLatest            = "sensio_get_latest"
	ToolHistory           = "sensio_get_history"
	ToolParticleBreakdown = "sensio_get_particle_breakdown"
)

// ToolSpec describes one tool to protocol clients.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Catalog lists every tool in a stable order.
var Catalog = []ToolSpec{
	{
		Name:        ToolListDevices,
		Description: "List the Sensio device serials the caller may query, with their display names.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {},
  "required": []
}`),
	},
	{
		Name: ToolLatest,
		Description: "Get the latest indoor air quality readings for one or more devices. Returns current " +
			"status, sensor data, air quality indices, and allergen levels.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "device_serials": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 1,
      "description": "Array of device serial numbers (e.g., [\"SA123\", \"SA456\"])"
    }
  },
  "required": ["device_serials"]
}`),
	},
	{
		Name: ToolHistory,
		Description: "Get historical indoor air quality data for a time window. Returns time-series data " +
			"with configurable resolution for trend analysis.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "device_serials": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 1,
      "description": "Array of device serial numbers"
    },
    "start": {
      "type": "string",
      "format": "date-time",
      "description": "Start timestamp in ISO 8601 format (e.g., \"2025-03-13T00:00:00Z\")"
    },
    "end": {
      "type": "string",
      "format": "date-time",
      "description": "End timestamp in ISO 8601 format"
    },
    "resolution": {
      "type": "string",
      "enum": ["1m", "5m", "15m", "30m", "1h", "6h", "1d"],
      "default": "15m",
      "description": "Time resolution for data aggregation"
    }
  },
  "required": ["device_serials", "start", "end"]
}`),
	},
	{
		Name: ToolParticleBreakdown,
		Description: "Get detailed particle class breakdown for allergen analysis. Shows top contributing " +
			"particle types (mold species, pollen types, etc.) for a time window.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "device_serial": {
      "type": "string",
      "minLength": 1,
      "description": "Single device serial number"
    },
    "start": {
      "type": "string",
      "format": "date-time",
      "description": "Start timestamp in ISO 8601 format"
    },
    "end": {
      "type": "string",
      "format": "date-time",
      "description": "End timestamp in ISO 8601 format"
    },
    "top_k": {
      "type": "integer",
      "minimum": 1,
      "maximum": 20,
      "default": 5,
      "description": "Number of top particle classes to return"
    }
  },
  "required": ["device_serial", "start", "end"]
}`),
	},
}

// Lookup returns the catalogue entry for name.
func Lookup(name string) (ToolSpec, bool) {
	for _, t := range Catalog {
		if t.Name == name {
			return t, true
		}
	}
	return ToolSpec{}, false
}

// Package simulator serves synthetic indoor air-quality data in both
// upstream shapes, for local development without vendor credentials.
package simulator

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

const (
	step         = 5 * time.Minute
	maxPerDevice = 2000
	indoorPath   = "/api/indoor_data/"
	proxyPath    = "/functions/v1/fetch-sensio-air-data"
	apiKeyPrefix = "Api-Key "
	bearerPrefix = "Bearer "
)

// Generator produces deterministic-per-seed readings.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
}

// Times returns the sample instants for a window. Without bounds it is a
// single sample at the current time.
func (g *Generator) Times(start, end string) []time.Time {
	now := g.now().UTC().Truncate(time.Second)
	s, okS := domain.ParseTime(start)
	e, okE := domain.ParseTime(end)
	if !okS && !okE {
		return []time.Time{now}
	}
	if !okE {
		e = now
	}
	if !okS {
		s = e.Add(-24 * time.Hour)
	}
	var out []time.Time
	for t := s.Truncate(step); !t.After(e) && len(out) < maxPerDevice; t = t.Add(step) {
		if !t.Before(s) {
			out = append(out, t)
		}
	}
	return out
}

func (g *Generator) float(base, spread float64) *float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := base + (g.rnd.Float64()*2-1)*spread
	return domain.Float(math.Round(v*10) / 10)
}

func (g *Generator) count(n int) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return float64(g.rnd.Intn(n))
}

func band(v float64, limits [3]float64) *domain.Index {
	switch {
	case v < limits[0]:
		return &domain.Index{Index: 1, Verbal: "Good", Color: "#2ecc71"}
	case v < limits[1]:
		return &domain.Index{Index: 2, Verbal: "Moderate", Color: "#f1c40f"}
	case v < limits[2]:
		return &domain.Index{Index: 3, Verbal: "Poor", Color: "#e67e22"}
	default:
		return &domain.Index{Index: 4, Verbal: "Bad", Color: "#e74c3c"}
	}
}

func (g *Generator) classes() domain.ClassTree {
	return domain.Node(
		domain.ClassChild{Key: "pollen", Tree: domain.Node(
			domain.ClassChild{Key: "birch", Tree: domain.Leaf(g.count(12))},
			domain.ClassChild{Key: "grass", Tree: domain.Leaf(g.count(8))},
		)},
		domain.ClassChild{Key: "mold", Tree: domain.Node(
			domain.ClassChild{Key: "aspergillus", Tree: domain.Leaf(g.count(6))},
			domain.ClassChild{Key: "penicillium", Tree: domain.Leaf(g.count(4))},
		)},
		domain.ClassChild{Key: "mites", Tree: domain.Leaf(g.count(3))},
	)
}

func (g *Generator) particleIndices() *domain.ParticleIndices {
	pollen := *g.float(1.5, 1.5)
	mold := *g.float(1.5, 1.5)
	return &domain.ParticleIndices{
		Pollen:   band(pollen, [3]float64{1, 2, 3}),
		Mites:    band(*g.float(1, 1), [3]float64{1, 2, 3}),
		Dander:   band(*g.float(1, 1), [3]float64{1, 2, 3}),
		Mold:     band(mold, [3]float64{1, 2, 3}),
		Allergen: band(math.Max(pollen, mold), [3]float64{1, 2, 3}),
	}
}

// Vendor builds indoor_data records for each serial and instant.
func (g *Generator) Vendor(serials []string, times []time.Time) []domain.VendorRecord {
	out := make([]domain.VendorRecord, 0, len(serials)*len(times))
	requested := g.now().UTC().Format(time.RFC3339)
	for _, serial := range serials {
		for _, at := range times {
			co2 := g.float(650, 250)
			voc := g.float(180, 120)
			tree := g.classes()
			out = append(out, domain.VendorRecord{
				DeviceSerial:    serial,
				IsDeviceOnline:  true,
				RequestDateTime: requested,
				SensorData: &domain.VendorSensorData{
					SensorDateTime: at.Format(time.RFC3339),
					Temperature:    g.float(21.5, 2),
					Humidity:       g.float(45, 10),
					CO2:            co2,
					VOC:            voc,
				},
				SensorIndices: &domain.VendorSensorIndices{
					CO2:       band(*co2, [3]float64{800, 1200, 1600}),
					VOC:       band(*voc, [3]float64{200, 300, 400}),
					Pollution: band(*co2/10+*voc/4, [3]float64{100, 150, 200}),
				},
				MLParticleIndices: g.particleIndices(),
				MLParticleClasses: &tree,
			})
		}
	}
	return out
}

// Proxy builds the same readings in the proxy function's shape.
func (g *Generator) Proxy(serials []string, times []time.Time) []domain.ProxyRecord {
	vendor := g.Vendor(serials, times)
	out := make([]domain.ProxyRecord, len(vendor))
	for i, v := range vendor {
		out[i] = domain.ProxyRecord{
			DeviceSerial:   v.DeviceSerial,
			IsDeviceOnline: v.IsDeviceOnline,
			Sensor: &domain.ProxySensor{
				DateTime:    v.SensorData.SensorDateTime,
				Temperature: v.SensorData.Temperature,
				Humidity:    v.SensorData.Humidity,
				CO2:         v.SensorData.CO2,
				VOC:         v.SensorData.VOC,
			},
			Indices: &domain.IndicesBlock{
				CO2:       v.SensorIndices.CO2,
				VOC:       v.SensorIndices.VOC,
				Pollution: v.SensorIndices.Pollution,
			},
			Particles: &domain.ProxyParticles{
				Indices: v.MLParticleIndices,
				Classes: v.MLParticleClasses,
			},
		}
	}
	return out
}

type vendorRequest struct {
	DeviceSerials []string `json:"device_serials"`
	Format        string   `json:"format"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
}

type proxyRequest struct {
	DeviceSerials []string `json:"deviceSerials"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
}

// Register mounts both upstream endpoints. An empty apiKey accepts any
// key.
func Register(app *fiber.App, g *Generator, apiKey string) {
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	app.Post(indoorPath, func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(auth, apiKeyPrefix) || (apiKey != "" && strings.TrimPrefix(auth, apiKeyPrefix) != apiKey) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid api key"})
		}
		var req vendorRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if len(req.DeviceSerials) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "device_serials is required"})
		}
		records := g.Vendor(req.DeviceSerials, g.Times(req.Start, req.End))
		log.Debug().Strs("serials", req.DeviceSerials).Int("records", len(records)).Msg("served indoor data")
		return c.JSON(records)
	})

	app.Post(proxyPath, func(c *fiber.Ctx) error {
		if apiKey != "" && c.Get(fiber.HeaderAuthorization) != bearerPrefix+apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid service key"})
		}
		var req proxyRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"devices": g.Proxy(req.DeviceSerials, g.Times(req.StartDate, req.EndDate))})
	})
}

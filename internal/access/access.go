// Package access decides which device serials a caller may read.
package access

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sensioair/sensio-mcp/internal/domain"
	"github.com/sensioair/sensio-mcp/internal/metrics"
)

// ErrDenied marks every access failure.
var ErrDenied = errors.New("access denied")

// DeniedError names the requested serials the caller may not read.
type DeniedError struct {
	Serials []string
}

func (e *DeniedError) Error() string {
	return "Access denied to: " + strings.Join(e.Serials, ", ")
}

// Directory lists the devices a caller owns.
type Directory interface {
	DevicesFor(ctx context.Context, callerID string) ([]domain.DeviceInfo, error)
}

// unrestricted is implemented by directories that allow every serial.
type unrestricted interface {
	Unrestricted() bool
}

type Guard struct {
	dir Directory
}

func NewGuard(dir Directory) *Guard {
	return &Guard{dir: dir}
}

// Devices returns the caller's device directory.
func (g *Guard) Devices(ctx context.Context, callerID string) ([]domain.DeviceInfo, error) {
	devices, err := g.dir.DevicesFor(ctx, callerID)
	if err != nil {
		return nil, errors.Wrap(err, "load device directory")
	}
	if devices == nil {
		devices = []domain.DeviceInfo{}
	}
	return devices, nil
}

// Authorize fails with a *DeniedError when any serial is outside the
// caller's directory. The denied serials keep their input order and
// appear once each.
func (g *Guard) Authorize(ctx context.Context, callerID string, serials []string) error {
	if u, ok := g.dir.(unrestricted); ok && u.Unrestricted() {
		return nil
	}
	devices, err := g.Devices(ctx, callerID)
	if err != nil {
		return err
	}
	allowed := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		allowed[d.DeviceSerial] = struct{}{}
	}

	var denied []string
	seen := make(map[string]struct{})
	for _, s := range serials {
		if _, ok := allowed[s]; ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		denied = append(denied, s)
	}
	if len(denied) == 0 {
		return nil
	}
	metrics.AccessDenied.Inc()
	return errors.Mark(&DeniedError{Serials: denied}, ErrDenied)
}

// Static is a fixed allow-list shared by every caller. An empty list
// allows every serial.
type Static struct {
	devices []domain.DeviceInfo
}

func NewStatic(serials []string) *Static {
	s := &Static{}
	for _, serial := range serials {
		serial = strings.TrimSpace(serial)
		if serial == "" {
			continue
		}
		s.devices = append(s.devices, domain.DeviceInfo{DeviceSerial: serial, Name: serial})
	}
	return s
}

func (s *Static) DevicesFor(context.Context, string) ([]domain.DeviceInfo, error) {
	return append([]domain.DeviceInfo(nil), s.devices...), nil
}

func (s *Static) Unrestricted() bool { return len(s.devices) == 0 }

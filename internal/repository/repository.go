package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

// Repos reads the user_devices table that maps callers to their devices.
type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

// DevicesFor lists the devices owned by callerID, ordered by serial. A
// device without a name is listed under its serial.
func (r *Repos) DevicesFor(ctx context.Context, callerID string) ([]domain.DeviceInfo, error) {
	var out []domain.DeviceInfo
	err := r.db.SelectContext(ctx, &out,
		`SELECT device_serial, COALESCE(device_name, device_serial) AS name
		   FROM user_devices
		  WHERE user_id = $1
		  ORDER BY device_serial`, callerID)
	if err != nil {
		return nil, errors.Wrapf(err, "list devices for %q", callerID)
	}
	return out, nil
}

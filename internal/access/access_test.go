package access

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

type fakeDirectory struct {
	devices map[string][]domain.DeviceInfo
	err     error
	calls   int
}

func (f *fakeDirectory) DevicesFor(_ context.Context, callerID string) ([]domain.DeviceInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.devices[callerID], nil
}

func TestAuthorizeAllowsOwnedDevices(t *testing.T) {
	dir := &fakeDirectory{devices: map[string][]domain.DeviceInfo{
		"u1": {{DeviceSerial: "SA1", Name: "Kitchen"}, {DeviceSerial: "SA2", Name: "Bedroom"}},
	}}
	g := NewGuard(dir)
	require.NoError(t, g.Authorize(context.Background(), "u1", []string{"SA2", "SA1"}))
}

func TestAuthorizeNamesDeniedSubset(t *testing.T) {
	dir := &fakeDirectory{devices: map[string][]domain.DeviceInfo{
		"u1": {{DeviceSerial: "SA1", Name: "Kitchen"}},
	}}
	g := NewGuard(dir)

	err := g.Authorize(context.Background(), "u1", []string{"SA3", "SA1", "SA2", "SA3"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDenied))

	var denied *DeniedError
	require.True(t, errors.As(err, &denied))
	require.Equal(t, []string{"SA3", "SA2"}, denied.Serials)
	require.Equal(t, "Access denied to: SA3, SA2", err.Error())
}

func TestAuthorizeUnknownCaller(t *testing.T) {
	g := NewGuard(&fakeDirectory{})
	err := g.Authorize(context.Background(), "nobody", []string{"SA1"})
	require.True(t, errors.Is(err, ErrDenied))
}

func TestAuthorizeDirectoryFailure(t *testing.T) {
	g := NewGuard(&fakeDirectory{err: errors.New("connection refused")})
	err := g.Authorize(context.Background(), "u1", []string{"SA1"})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrDenied))
	require.Contains(t, err.Error(), "load device directory")
}

func TestStaticAllowList(t *testing.T) {
	s := NewStatic([]string{" SA1", "SA2 ", ""})
	require.False(t, s.Unrestricted())

	devices, err := s.DevicesFor(context.Background(), "anyone")
	require.NoError(t, err)
	require.Equal(t, []domain.DeviceInfo{
		{DeviceSerial: "SA1", Name: "SA1"},
		{DeviceSerial: "SA2", Name: "SA2"},
	}, devices)

	g := NewGuard(s)
	require.NoError(t, g.Authorize(context.Background(), "anyone", []string{"SA1"}))
	require.Error(t, g.Authorize(context.Background(), "anyone", []string{"SA9"}))
}

func TestEmptyStaticListIsUnrestricted(t *testing.T) {
	s := NewStatic(nil)
	require.True(t, s.Unrestricted())

	g := NewGuard(s)
	require.NoError(t, g.Authorize(context.Background(), "anyone", []string{"SA1", "SA9"}))

	devices, err := g.Devices(context.Background(), "anyone")
	require.NoError(t, err)
	require.NotNil(t, devices)
	require.Empty(t, devices)
}

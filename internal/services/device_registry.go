package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DeviceRegistry hands out one Device per device id and evicts devices that
// have been idle longer than the configured TTL.
type DeviceRegistry struct {
	deps    DeviceDeps
	idleTTL time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu      sync.Mutex
	devices map[string]*Device
}

func NewDeviceRegistry(deps DeviceDeps, idleTTL time.Duration) *DeviceRegistry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &DeviceRegistry{
		deps:    deps,
		idleTTL: idleTTL,
		now:     deps.Now,
		logger:  deps.Logger,
		devices: make(map[string]*Device),
	}
}

// Get returns the device for id, creating and mounting it on first use. The
// mount runs in the creating request; concurrent requests see the loading
// state until it finishes.
func (r *DeviceRegistry) Get(ctx context.Context, id string) *Device {
	r.mu.Lock()
	device, ok := r.devices[id]
	if !ok {
		device = NewDevice(id, r.deps)
		r.devices[id] = device
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("device created", zap.String("device_id", id))
		device.Session.Mount(ctx)
	}
	device.touch()
	return device
}

func (r *DeviceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// Sweep closes and forgets every device idle for longer than the TTL.
func (r *DeviceRegistry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Device
	for id, device := range r.devices {
		if device.LastSeen().Before(cutoff) {
			idle = append(idle, device)
			delete(r.devices, id)
		}
	}
	r.mu.Unlock()

	for _, device := range idle {
		device.Close()
	}
	if len(idle) > 0 {
		r.logger.Info("evicted idle devices", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps periodically until ctx is cancelled, then closes every device.
func (r *DeviceRegistry) Run(ctx context.Context) error {
	interval := r.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *DeviceRegistry) Close() {
	r.mu.Lock()
	devices := r.devices
	r.devices = make(map[string]*Device)
	r.mu.Unlock()

	for _, device := range devices {
		device.Close()
	}
}

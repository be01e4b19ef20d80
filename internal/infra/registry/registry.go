// Package registry resolves remote devices on the bus and fans their updates out to handlers.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shelter-guard/internal/domain"
	"shelter-guard/internal/domain/model"
	"shelter-guard/internal/domain/ports/adapter"
	"shelter-guard/internal/infra/logging"
	"shelter-guard/internal/infra/netbus"
)

const (
	// CatalogueKey is the bus hash of known devices: device id -> Descriptor JSON.
	CatalogueKey = "registry:devices"
	// AnnounceChannel carries Descriptor JSON for devices that join after start.
	AnnounceChannel = "registry:announce"

	updatePrefix  = "device:"
	updateSuffix  = ":update"
	updatePattern = updatePrefix + "*" + updateSuffix

	defaultRetryDelay = time.Second
)

// UpdateChannel returns the bus channel a device publishes its updates on.
func UpdateChannel(deviceID string) string {
	return updatePrefix + deviceID + updateSuffix
}

type Descriptor struct {
	ID    string `json:"id"`
	Model string `json:"model,omitempty"`
	Name  string `json:"name,omitempty"`
}

var _ adapter.Device = (*RemoteDevice)(nil)

type RemoteDevice struct {
	desc Descriptor

	mu       sync.RWMutex
	handlers []adapter.UpdateHandler
}

func (d *RemoteDevice) ID() string { return d.desc.ID }

func (d *RemoteDevice) Descriptor() Descriptor { return d.desc }

func (d *RemoteDevice) OnUpdate(h adapter.UpdateHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

func (d *RemoteDevice) emit(ctx context.Context, u model.Update) {
	d.mu.RLock()
	hs := d.handlers
	d.mu.RUnlock()
	for _, h := range hs {
		h(ctx, u)
	}
}

type Registry struct {
	bus netbus.Bus
	log *zerolog.Logger

	mu      sync.RWMutex
	devices map[string]*RemoteDevice
	sub     netbus.Subscription

	// pause after a failed receive before the subscription reconnects
	retryDelay time.Duration
}

func New(bus netbus.Bus, logger *zerolog.Logger) *Registry {
	l := logger.With().Str("component", "Registry").Logger()
	return &Registry{
		bus:        bus,
		log:        &l,
		devices:    make(map[string]*RemoteDevice),
		retryDelay: defaultRetryDelay,
	}
}

// Start loads the device catalogue and subscribes to device updates.
// Find is meaningful only after Start returned nil.
func (r *Registry) Start(ctx context.Context) error {
	entries, err := r.bus.HGetAll(ctx, CatalogueKey)
	if err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}
	for key, raw := range entries {
		desc, err := decodeDescriptor(raw)
		if err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("skipping bad catalogue entry")
			continue
		}
		if desc.ID == "" {
			desc.ID = key
		}
		r.add(desc)
	}

	sub, err := r.bus.Subscribe(ctx, []string{AnnounceChannel}, []string{updatePattern})
	if err != nil {
		return fmt.Errorf("subscribe updates: %w", err)
	}

	r.mu.Lock()
	r.sub = sub
	n := len(r.devices)
	r.mu.Unlock()

	r.log.Info().Int("devices", n).Msg("registry started")
	return nil
}

// Find returns the device with the given id, or nil when the registry does not know it.
func (r *Registry) Find(id string) *RemoteDevice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devices[id]
}

// Devices lists known devices ordered by id.
func (r *Registry) Devices() []Descriptor {
	r.mu.RLock()
	out := make([]Descriptor, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d.desc)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Run receives bus messages until ctx is done, delivering updates on the calling goroutine.
// Receive errors are logged and the loop carries on; the subscription reconnects on the next receive.
func (r *Registry) Run(ctx context.Context) error {
	r.mu.RLock()
	sub := r.sub
	r.mu.RUnlock()
	if sub == nil {
		return domain.ErrRegistryNotStarted
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			// unblock ReceiveMessage
			_ = sub.Close()
		case <-stop:
		}
	}()

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, netbus.ErrClosed) {
				return fmt.Errorf("receive: %w", err)
			}
			r.log.Warn().Err(err).Dur("retry_in", r.retryDelay).Msg("bus receive failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay):
			}
			continue
		}
		r.dispatch(ctx, msg)
	}
}

func (r *Registry) dispatch(ctx context.Context, msg netbus.Message) {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	if msg.Channel == AnnounceChannel {
		desc, err := decodeDescriptor(msg.Payload)
		if err != nil || desc.ID == "" {
			r.log.Debug().Err(err).Str("payload", msg.Payload).Msg("dropping bad announce")
			return
		}
		if r.add(desc) {
			r.log.Info().Str("device_id", desc.ID).Str("model", desc.Model).Msg("device announced")
		}
		return
	}

	id, ok := deviceIDFromChannel(msg.Channel)
	if !ok {
		return
	}
	ctx = logging.WithDeviceID(ctx, id)
	log := logging.With(ctx, r.log)

	dev := r.Find(id)
	if dev == nil {
		log.Debug().Msg("update for unknown device dropped")
		return
	}
	u, err := model.DecodeUpdate([]byte(msg.Payload))
	if err != nil {
		log.Debug().Err(err).Msg("undecodable update dropped")
		return
	}
	dev.emit(ctx, u)
}

// add registers desc unless a device with the same id exists; reports whether it was added.
func (r *Registry) add(desc Descriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[desc.ID]; ok {
		return false
	}
	r.devices[desc.ID] = &RemoteDevice{desc: desc}
	return true
}

func decodeDescriptor(raw string) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Descriptor{}, errors.Join(domain.ErrInvalidArgument, err)
	}
	return d, nil
}

func deviceIDFromChannel(ch string) (string, bool) {
	if len(ch) < len(updatePrefix)+len(updateSuffix) ||
		!strings.HasPrefix(ch, updatePrefix) || !strings.HasSuffix(ch, updateSuffix) {
		return "", false
	}
	id := ch[len(updatePrefix) : len(ch)-len(updateSuffix)]
	return id, id != ""
}

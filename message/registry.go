package message

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/mojom/bindings"
	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/system"
)

// Inbound is a decoded message ready for dispatch.
type Inbound struct {
	Header  Header
	Method  string
	Payload any
}

// IsResponse reports whether the message answers a request.
func (in *Inbound) IsResponse() bool { return in.Header.IsResponse() }

// ExpectsResponse reports whether the sender waits for a reply.
func (in *Inbound) ExpectsResponse() bool { return in.Header.ExpectsResponse() }

// RequestID returns the id pairing a request and its response.
func (in *Inbound) RequestID() uint64 { return in.Header.RequestID }

type routeKey struct {
	name     uint32
	response bool
}

type route struct {
	method string
	decode func(dec *bindings.Decoder, offset uint64) (any, error)
}

// Registry maps message names to payload codecs. Requests and responses
// of the same method share a name and are registered separately. A
// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	routes map[routeKey]route
	cfg    *bindings.Config
}

// NewRegistry returns an empty registry with default decode limits.
func NewRegistry() *Registry {
	return NewRegistryWithConfig(nil)
}

// NewRegistryWithConfig returns an empty registry that decodes with cfg.
// A nil cfg uses the defaults.
func NewRegistryWithConfig(cfg *bindings.Config) *Registry {
	return &Registry{
		routes: make(map[routeKey]route),
		cfg:    cfg,
	}
}

// Register routes requests named name to c.
func Register[T any](r *Registry, name uint32, method string, c bindings.PointerCodec[T]) error {
	return r.add(routeKey{name: name}, method, decoderFor(c))
}

// RegisterResponse routes responses named name to c.
func RegisterResponse[T any](r *Registry, name uint32, method string, c bindings.PointerCodec[T]) error {
	return r.add(routeKey{name: name, response: true}, method, decoderFor(c))
}

func decoderFor[T any](c bindings.PointerCodec[T]) func(*bindings.Decoder, uint64) (any, error) {
	return func(dec *bindings.Decoder, offset uint64) (any, error) {
		v, err := bindings.DecodeAt(dec, c, offset)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (r *Registry) add(key routeKey, method string, decode func(*bindings.Decoder, uint64) (any, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.routes[key]; ok {
		return errors.InvalidInput(errors.PhaseDispatch,
			fmt.Sprintf("message %d already registered for %s", key.name, prev.method))
	}
	r.routes[key] = route{method: method, decode: decode}
	return nil
}

// Lookup returns the method name registered for a header.
func (r *Registry) Lookup(h Header) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.routes[routeKey{name: h.Name, response: h.IsResponse()}]
	return rt.method, ok
}

// Len returns the number of registered routes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// Decode reads the header, picks the payload codec by name and direction
// and decodes the payload. It takes ownership of handles; all of them are
// closed on failure.
func (r *Registry) Decode(data []byte, handles []system.UntypedHandle) (*Inbound, error) {
	dec := bindings.NewDecoderWithConfig(data, handles, r.cfg)
	in, err := r.decode(dec)
	if err != nil {
		_ = dec.Abort()
		return nil, err
	}
	_ = dec.Close()
	return in, nil
}

func (r *Registry) decode(dec *bindings.Decoder) (*Inbound, error) {
	h, err := bindings.DecodeAt(dec, HeaderCodec, 0)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	rt, ok := r.routes[routeKey{name: h.Name, response: h.IsResponse()}]
	r.mu.RUnlock()
	if !ok {
		Logger().Debug("unknown message",
			zap.Uint32("name", h.Name),
			zap.Bool("response", h.IsResponse()),
			zap.Uint64("request_id", h.RequestID))
		return nil, errors.NotFound(errors.PhaseDispatch, "message", h.Name)
	}

	payload, err := rt.decode(dec, uint64(headerChunkSize(dec)))
	if err != nil {
		return nil, errors.WithPath(err, "payload")
	}
	Logger().Debug("message decoded",
		zap.String("method", rt.method),
		zap.Uint32("name", h.Name),
		zap.Uint64("request_id", h.RequestID))
	return &Inbound{Header: h, Method: rt.method, Payload: payload}, nil
}

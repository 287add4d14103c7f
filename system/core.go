package system

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/mojom/errors"
)

// Core is an in-process handle table. Handle 0 is reserved and always
// invalid. A Core is safe for concurrent use.
type Core struct {
	entries   []entry
	freeList  []uint32
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	obj   object
	kind  HandleType
	valid bool
}

// NewCore creates an empty handle table.
func NewCore() *Core {
	return &Core{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

func (c *Core) insert(kind HandleType, obj object) (UntypedHandle, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return UntypedHandle{}, errors.New(errors.PhaseTransport, errors.KindClosed).
			Detail("core shut down").
			Build()
	}

	e := entry{obj: obj, kind: kind, valid: true}
	var value uint32
	if n := len(c.freeList); n > 0 {
		value = c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
		c.entries[value-1] = e
	} else {
		c.entries = append(c.entries, e)
		value = uint32(len(c.entries))
	}
	c.mu.Unlock()

	Logger().Debug("handle created", zap.Uint32("handle", value), zap.Stringer("kind", kind))
	c.notify(Event{Handle: value, Kind: kind, Type: EventCreated})
	return UntypedHandle{core: c, value: value}, nil
}

func (c *Core) lookup(value uint32) (object, HandleType, bool) {
	if value == 0 {
		return nil, TypeInvalid, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := value - 1
	if int(idx) >= len(c.entries) {
		return nil, TypeInvalid, false
	}
	e := c.entries[idx]
	if !e.valid {
		return nil, TypeInvalid, false
	}
	return e.obj, e.kind, true
}

// remove drops the entry without closing the object.
func (c *Core) remove(value uint32) (object, HandleType, bool) {
	if value == 0 {
		return nil, TypeInvalid, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := value - 1
	if int(idx) >= len(c.entries) {
		return nil, TypeInvalid, false
	}
	e := &c.entries[idx]
	if !e.valid {
		return nil, TypeInvalid, false
	}

	obj, kind := e.obj, e.kind
	e.valid = false
	e.obj = nil
	c.freeList = append(c.freeList, value)
	return obj, kind, true
}

func (c *Core) closeHandle(value uint32) error {
	obj, kind, ok := c.remove(value)
	if !ok {
		return badHandle(value, TypeInvalid)
	}
	obj.close()

	Logger().Debug("handle closed", zap.Uint32("handle", value), zap.Stringer("kind", kind))
	c.notify(Event{Handle: value, Kind: kind, Type: EventClosed})
	return nil
}

// detach removes a handle for transfer through a pipe. The object stays
// open and is re-inserted by attach on the receiving side.
func (c *Core) detach(value uint32) (transit, error) {
	obj, kind, ok := c.remove(value)
	if !ok {
		return transit{}, badHandle(value, TypeInvalid)
	}
	c.notify(Event{Handle: value, Kind: kind, Type: EventSent})
	return transit{obj: obj, kind: kind}, nil
}

func (c *Core) attach(t transit) (UntypedHandle, error) {
	h, err := c.insert(t.kind, t.obj)
	if err != nil {
		t.obj.close()
		return UntypedHandle{}, err
	}
	c.notify(Event{Handle: h.value, Kind: t.kind, Type: EventReceived})
	return h, nil
}

// transit is a handle's object while it travels inside a message.
type transit struct {
	obj  object
	kind HandleType
}

// Subscribe adds an observer for lifecycle events.
func (c *Core) Subscribe(o Observer) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, o)
}

// Unsubscribe removes an observer.
func (c *Core) Unsubscribe(o Observer) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	for i, obs := range c.observers {
		if obs == o {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (c *Core) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, e := range c.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Shutdown closes every live handle and stops accepting new ones.
func (c *Core) Shutdown() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	var live []uint32
	for i, e := range c.entries {
		if e.valid {
			live = append(live, uint32(i+1))
		}
	}
	c.mu.Unlock()

	for _, v := range live {
		_ = c.closeHandle(v)
	}
	return nil
}

func (c *Core) notify(e Event) {
	c.obsMu.RLock()
	defer c.obsMu.RUnlock()
	for _, o := range c.observers {
		o.OnHandleEvent(e)
	}
}

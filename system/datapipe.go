package system

import (
	"sync"

	"github.com/wippyai/mojom/errors"
)

const (
	producerSide = 0
	consumerSide = 1
)

type dataPipe struct {
	mu       sync.Mutex
	buf      []byte
	capacity int
	closed   [2]bool
}

type dataPipeEnd struct {
	pipe *dataPipe
	side int
}

func (e *dataPipeEnd) close() {
	e.pipe.mu.Lock()
	e.pipe.closed[e.side] = true
	if e.side == consumerSide {
		e.pipe.buf = nil
	}
	e.pipe.mu.Unlock()
}

// CreateDataPipe returns a producer and consumer sharing a byte stream
// that buffers up to capacity bytes.
func (c *Core) CreateDataPipe(capacity int) (ProducerHandle, ConsumerHandle, error) {
	if capacity <= 0 {
		return ProducerHandle{}, ConsumerHandle{}, errors.InvalidInput(errors.PhaseTransport, "data pipe capacity must be positive")
	}
	p := &dataPipe{capacity: capacity, buf: make([]byte, 0, capacity)}

	prod, err := c.insert(TypeDataPipeProducer, &dataPipeEnd{pipe: p, side: producerSide})
	if err != nil {
		return ProducerHandle{}, ConsumerHandle{}, err
	}
	cons, err := c.insert(TypeDataPipeConsumer, &dataPipeEnd{pipe: p, side: consumerSide})
	if err != nil {
		_ = prod.Close()
		return ProducerHandle{}, ConsumerHandle{}, err
	}
	return ProducerHandle{prod}, ConsumerHandle{cons}, nil
}

func dataEnd(h UntypedHandle, want HandleType) (*dataPipeEnd, error) {
	if !h.IsValid() {
		return nil, badHandle(h.value, want)
	}
	obj, kind, ok := h.core.lookup(h.value)
	if !ok || kind != want {
		return nil, badHandle(h.value, want)
	}
	return obj.(*dataPipeEnd), nil
}

// WriteData copies as much of p as fits and returns the count written.
func (h ProducerHandle) WriteData(p []byte) (int, error) {
	end, err := dataEnd(h.UntypedHandle, TypeDataPipeProducer)
	if err != nil {
		return 0, err
	}

	dp := end.pipe
	dp.mu.Lock()
	defer dp.mu.Unlock()

	if dp.closed[consumerSide] {
		return 0, peerClosed("data pipe")
	}
	free := dp.capacity - len(dp.buf)
	if free == 0 {
		return 0, shouldWait("data pipe")
	}
	n := min(free, len(p))
	dp.buf = append(dp.buf, p[:n]...)
	return n, nil
}

// ReadData copies buffered bytes into p and returns the count read.
func (h ConsumerHandle) ReadData(p []byte) (int, error) {
	end, err := dataEnd(h.UntypedHandle, TypeDataPipeConsumer)
	if err != nil {
		return 0, err
	}

	dp := end.pipe
	dp.mu.Lock()
	defer dp.mu.Unlock()

	if len(dp.buf) == 0 {
		if dp.closed[producerSide] {
			return 0, peerClosed("data pipe")
		}
		return 0, shouldWait("data pipe")
	}
	n := copy(p, dp.buf)
	dp.buf = append(dp.buf[:0], dp.buf[n:]...)
	return n, nil
}

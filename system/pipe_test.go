package system

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	mojomerrors "github.com/wippyai/mojom/errors"
)

func TestMessagePipe_RoundTrip(t *testing.T) {
	core := NewCore()
	a, b, err := core.CreateMessagePipe()
	if err != nil {
		t.Fatalf("CreateMessagePipe: %v", err)
	}

	if err := a.WriteMessage([]byte("hello"), nil); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	data, handles, err := b.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if string(data) != "hello" || len(handles) != 0 {
		t.Errorf("got %q with %d handles", data, len(handles))
	}

	// other direction
	if err := b.WriteMessage([]byte("back"), nil); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	data, _, err = a.ReadMessage()
	if err != nil || string(data) != "back" {
		t.Errorf("reverse read = %q, %v", data, err)
	}
}

func TestMessagePipe_CopiesData(t *testing.T) {
	core := NewCore()
	a, b, _ := core.CreateMessagePipe()

	buf := []byte{1, 2, 3}
	_ = a.WriteMessage(buf, nil)
	buf[0] = 9

	data, _, _ := b.ReadMessage()
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("queued data aliased the caller's buffer: %v", data)
	}
}

func TestMessagePipe_ShouldWaitAndPeerClosed(t *testing.T) {
	core := NewCore()
	a, b, _ := core.CreateMessagePipe()

	if _, _, err := b.ReadMessage(); !errors.Is(err, ErrShouldWait) {
		t.Fatalf("empty read err = %v, want ErrShouldWait", err)
	}

	_ = a.WriteMessage([]byte{1}, nil)
	_ = a.Close()

	// queued data survives the peer closing
	if _, _, err := b.ReadMessage(); err != nil {
		t.Fatalf("read after peer close: %v", err)
	}
	if _, _, err := b.ReadMessage(); !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("err = %v, want ErrPeerClosed", err)
	}
	if err := b.WriteMessage([]byte{1}, nil); !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("write err = %v, want ErrPeerClosed", err)
	}
}

func TestMessagePipe_TransfersHandles(t *testing.T) {
	core := NewCore()
	obs := &testObserver{}
	a, b, _ := core.CreateMessagePipe()
	buf, _ := core.CreateSharedBuffer(8)
	raw, _ := buf.Bytes()
	raw[0] = 42
	core.Subscribe(obs)

	if err := a.WriteMessage(nil, []UntypedHandle{buf.Untyped()}); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if buf.Type() != TypeInvalid {
		t.Error("sent handle should no longer be usable by the sender")
	}

	_, handles, err := b.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if len(handles) != 1 || handles[0].Type() != TypeSharedBuffer {
		t.Fatalf("handles = %+v", handles)
	}
	got, _ := handles[0].ToSharedBuffer().Bytes()
	if got[0] != 42 {
		t.Error("received buffer does not share the region")
	}

	var sent, received bool
	for _, e := range obs.events {
		sent = sent || e.Type == EventSent
		received = received || e.Type == EventReceived
	}
	if !sent || !received {
		t.Errorf("events = %+v, want sent and received", obs.events)
	}
}

func TestMessagePipe_RejectsBadHandles(t *testing.T) {
	core := NewCore()
	other := NewCore()
	a, _, _ := core.CreateMessagePipe()
	foreign, _ := other.CreateSharedBuffer(8)
	closed, _ := core.CreateSharedBuffer(8)
	_ = closed.Close()

	tests := []struct {
		name    string
		handles []UntypedHandle
		kind    mojomerrors.Kind
	}{
		{"self", []UntypedHandle{a.Untyped()}, mojomerrors.KindInvalidInput},
		{"foreign core", []UntypedHandle{foreign.Untyped()}, mojomerrors.KindInvalidInput},
		{"closed", []UntypedHandle{closed.Untyped()}, mojomerrors.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.WriteMessage(nil, tt.handles)
			if mojomerrors.KindOf(err) != tt.kind {
				t.Errorf("err = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestMessagePipe_CloseDropsQueuedHandles(t *testing.T) {
	core := NewCore()
	a, b, _ := core.CreateMessagePipe()
	buf, _ := core.CreateSharedBuffer(8)
	_ = a.WriteMessage(nil, []UntypedHandle{buf.Untyped()})

	_ = b.Close()
	_ = a.Close()
	if core.Len() != 0 {
		t.Errorf("Len = %d, queued handles leaked", core.Len())
	}
}

func TestMessagePipe_Wait(t *testing.T) {
	core := NewCore()
	a, b, _ := core.CreateMessagePipe()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := b.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait on empty pipe = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- b.Wait(context.Background()) }()
	_ = a.WriteMessage([]byte{7}, nil)
	if err := <-done; err != nil {
		t.Fatalf("Wait after write: %v", err)
	}

	_, _, _ = b.ReadMessage()
	go func() { done <- b.Wait(context.Background()) }()
	_ = a.Close()
	if err := <-done; !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("Wait after peer close = %v", err)
	}
}

func TestDataPipe(t *testing.T) {
	core := NewCore()
	prod, cons, err := core.CreateDataPipe(4)
	if err != nil {
		t.Fatalf("CreateDataPipe: %v", err)
	}

	n, err := prod.WriteData([]byte("abcdef"))
	if err != nil || n != 4 {
		t.Fatalf("WriteData = %d, %v; want 4", n, err)
	}
	if _, err := prod.WriteData([]byte("x")); !errors.Is(err, ErrShouldWait) {
		t.Fatalf("full pipe err = %v", err)
	}

	buf := make([]byte, 3)
	n, err = cons.ReadData(buf)
	if err != nil || string(buf[:n]) != "abc" {
		t.Fatalf("ReadData = %q, %v", buf[:n], err)
	}
	n, _ = cons.ReadData(buf)
	if string(buf[:n]) != "d" {
		t.Fatalf("second ReadData = %q", buf[:n])
	}
	if _, err := cons.ReadData(buf); !errors.Is(err, ErrShouldWait) {
		t.Fatalf("empty pipe err = %v", err)
	}

	_ = prod.Close()
	if _, err := cons.ReadData(buf); !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("err = %v, want ErrPeerClosed", err)
	}

	if _, _, err := core.CreateDataPipe(0); err == nil {
		t.Error("zero capacity should fail")
	}
}

func TestDataPipe_WrongType(t *testing.T) {
	core := NewCore()
	prod, cons, _ := core.CreateDataPipe(4)
	if _, err := prod.Untyped().ToConsumer().ReadData(make([]byte, 1)); err == nil {
		t.Error("reading through a producer should fail")
	}
	_ = cons.Close()
	if _, err := prod.WriteData([]byte{1}); !errors.Is(err, ErrPeerClosed) {
		t.Errorf("write after consumer close = %v", err)
	}
}

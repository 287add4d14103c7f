package main

import (
	"github.com/wippyai/mojom/bindings"
	"github.com/wippyai/mojom/message"
	"github.com/wippyai/mojom/system"
)

const demoName = 1

type demoParams struct {
	Greeting string
	Values   []int32
	Enabled  bool
	Limits   map[string]uint16
	Reply    *system.MessagePipeHandle
}

var demoCodec = bindings.NewStruct[demoParams]("DemoParams",
	bindings.Field("greeting", bindings.Codec[string](bindings.String),
		func(p *demoParams) *string { return &p.Greeting }),
	bindings.Field("values", bindings.Codec[[]int32](bindings.Array(bindings.Int32)),
		func(p *demoParams) *[]int32 { return &p.Values }),
	bindings.Field("enabled", bindings.Bool,
		func(p *demoParams) *bool { return &p.Enabled }),
	bindings.Field("limits", bindings.Codec[map[string]uint16](bindings.Map[string, uint16](bindings.String, bindings.Uint16)),
		func(p *demoParams) *map[string]uint16 { return &p.Limits }),
	bindings.Field("reply", bindings.Nullable(bindings.MessagePipe),
		func(p *demoParams) **system.MessagePipeHandle { return &p.Reply }),
)

// demoMessage encodes a request that exercises strings, arrays, maps and
// a handle slot. The handles are closed once the bytes exist.
func demoMessage() ([]byte, error) {
	core := system.NewCore()
	defer func() { _ = core.Shutdown() }()

	reply, _, err := core.CreateMessagePipe()
	if err != nil {
		return nil, err
	}
	msg, err := message.Build[demoParams](message.NewRequestHeader(demoName, 7), demoCodec, demoParams{
		Greeting: "hello",
		Values:   []int32{1, 2, 3},
		Enabled:  true,
		Limits:   map[string]uint16{"depth": 100, "size": 4096},
		Reply:    &reply,
	})
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}

// Package message frames Mojom payloads for transport.
//
// Every message is a header chunk followed by the payload struct. The
// header names the method, carries the response flags and, from version 1
// on, a request id:
//
//	msg, err := message.Build[EchoParams](message.NewRequestHeader(3, id), EchoParamsCodec, params)
//	err = pipe.WriteMessage(msg.Data, msg.Handles)
//
// On the receiving side a Registry maps names to payload codecs and turns
// raw bytes into an Inbound value for dispatch.
package message

// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// frame decoder for the ssechat stream protocol. It consumes raw body chunks
// as they arrive and yields complete frames, carrying partial frames and
// partial UTF-8 sequences across chunk boundaries.
//
// The protocol is a narrow subset of SSE: frames are separated by a blank
// line, a data frame is a single "data: " line carrying a JSON payload, and
// "event: end" terminates the stream.
//
// See the WHATWG event stream format:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import (
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ssechat/internal/errors"
	"github.com/diogo/ssechat/internal/models"
)

// FrameType classifies a decoded frame
type FrameType int

const (
	// FrameData carries one payload that appends one message.
	FrameData FrameType = iota
	// FrameEnd terminates the stream normally.
	FrameEnd
)

func (t FrameType) String() string {
	switch t {
	case FrameData:
		return "data"
	case FrameEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Frame represents a single decoded frame, delimited by a blank line
// in the upstream byte stream.
type Frame struct {
	Type FrameType

	// Payload is set for FrameData only.
	Payload models.Payload
}

// Message returns the conversation message carried by a data frame
func (f Frame) Message() models.Message {
	return f.Payload.Message()
}

// ParsePayload parses the JSON body of a data frame.
// The body must be a JSON object with a string "text" field; "model" is optional.
func ParsePayload(data string) (models.Payload, error) {
	if !gjson.Valid(data) {
		return models.Payload{}, apierrors.NewMalformedFrameError(data, "invalid JSON")
	}

	result := gjson.Parse(data)
	if !result.IsObject() {
		return models.Payload{}, apierrors.NewMalformedFrameError(data, "payload is not an object")
	}

	text := result.Get("text")
	if text.Type != gjson.String {
		return models.Payload{}, apierrors.NewMalformedFrameError(data, "missing text field")
	}

	model := result.Get("model")
	payload := models.Payload{Text: text.String()}
	if model.Type == gjson.String {
		payload.Model = model.String()
	}

	return payload, nil
}

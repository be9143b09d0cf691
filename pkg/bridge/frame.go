package bridge

import (
	"encoding/json"
	stderrors "errors"

	"github.com/vango-dev/fragment/internal/errors"
)

// FrameType identifies a bridge frame.
type FrameType string

const (
	// FrameHashChange is sent by the client with its current URL, on
	// connect and after every hashchange event.
	FrameHashChange FrameType = "hashchange"

	// FramePartial carries loaded content for a target element.
	FramePartial FrameType = "partial"

	// FrameNavigate asks the client to change its location.
	FrameNavigate FrameType = "navigate"

	// FrameError reports a failure to the client.
	FrameError FrameType = "error"
)

// Frame is a JSON text frame exchanged with the browser client.
type Frame struct {
	Type    FrameType `json:"type"`
	Href    string    `json:"href,omitempty"`
	Target  string    `json:"target,omitempty"`
	URL     string    `json:"url,omitempty"`
	HTML    string    `json:"html,omitempty"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
}

// decodeFrame parses a client frame. Only hashchange frames are accepted.
func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, errors.New("E140").Wrap(err)
	}
	if f.Type != FrameHashChange {
		return Frame{}, errors.New("E140").WithDetail("Unexpected frame type " + string(f.Type) + ".")
	}
	return f, nil
}

// errorFrame converts err to an error frame. A coded error anywhere in the
// chain keeps its code; anything else is reported under code.
func errorFrame(err error, code string) Frame {
	var fe *errors.FragmentError
	if stderrors.As(err, &fe) {
		return Frame{Type: FrameError, Code: fe.Code, Message: err.Error()}
	}
	fe = errors.New(code).Wrap(err)
	return Frame{Type: FrameError, Code: fe.Code, Message: fe.Error()}
}

package common

import (
	"errors"
	"strconv"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// --------------------------------------------------------------------------
// Protocol Definition
// --------------------------------------------------------------------------

// A request is a flat message whose Command names the remote method and whose pairs
// hold the encoded arguments at the root key. A response carries one of the commands
// below: CmdResult with the encoded result, or CmdError with the error text under
// ErrorKey.
const (
	CmdResult = "result"
	CmdError  = "error"

	// ErrorKey holds the error text of an error response
	ErrorKey = "error"
	// CodeKey optionally holds a numeric error code of an error response
	CodeKey = "code"
)

// ErrRemote is wrapped by all errors decoded from an error response
var ErrRemote = errors.New("remote error")

// RemoteError is the error returned for an error response
type RemoteError struct {
	Code uint64
	Msg  string
}

func (e *RemoteError) Error() string {
	if e.Code != 0 {
		return "remote error (" + strconv.FormatUint(e.Code, 10) + "): " + e.Msg
	}
	return "remote error: " + e.Msg
}

func (e *RemoteError) Unwrap() error {
	return ErrRemote
}

// Coder is implemented by errors that carry a numeric code for the wire
type Coder interface {
	ErrorCode() uint64
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewResultResponse creates an empty result response, the caller encodes the result
// at the root key
func NewResultResponse() *urlmsg.Message {
	return urlmsg.NewCommand(CmdResult)
}

// NewErrorResponse creates an error response for err
func NewErrorResponse(err error) *urlmsg.Message {
	msg := urlmsg.NewCommand(CmdError)
	if err == nil {
		msg.Set(ErrorKey, "unknown error")
		return msg
	}
	msg.Set(ErrorKey, err.Error())

	var coder Coder
	if errors.As(err, &coder) && coder.ErrorCode() != 0 {
		msg.Set(CodeKey, strconv.FormatUint(coder.ErrorCode(), 10))
	}
	return msg
}

// ResponseError returns the error carried by an error response, nil for a result
// response and an error for any other command
func ResponseError(msg *urlmsg.Message) error {
	switch msg.Command {
	case CmdResult:
		return nil
	case CmdError:
		remote := &RemoteError{Msg: msg.Value(ErrorKey)}
		if code, ok := msg.Get(CodeKey); ok {
			remote.Code, _ = strconv.ParseUint(code, 10, 64)
		}
		return remote
	default:
		return errors.New("unexpected response command: " + strconv.Quote(msg.Command))
	}
}

package lldp

import "fmt"

// EncodingError is returned when the neighbor table is not valid UTF-8 text
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid (non unicode) input returned: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// MalformedPayloadError is returned when the text is not JSON or lacks the
// lldp envelope
type MalformedPayloadError struct {
	Reason string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed neighbor table: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed neighbor table: %s", e.Reason)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

package inference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericRequestMessage is shown when a failed response carries no usable detail.
const GenericRequestMessage = "request failed, check the backend"

// ErrShape marks a response whose JSON does not match the expected schema.
var ErrShape = errors.New("unexpected response shape")

// Kind is the coarse error category used for logs and metrics.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindRequest
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRequest:
		return "request"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// ValidationError is a local precondition failure raised before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// RequestError is a non-2xx response. Detail is the backend-supplied message, or
// GenericRequestMessage when the body could not be parsed.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// TransportError covers network failures and malformed responses.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Classify maps err onto the error taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return KindRequest
	}
	var terr *TransportError
	if errors.As(err, &terr) {
		return KindTransport
	}
	return KindUnknown
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.Detail
	}
	var terr *TransportError
	if errors.As(err, &terr) && terr.Err != nil {
		return terr.Err.Error()
	}
	return err.Error()
}

// detailFromBody extracts {"detail": ...} from an error body. String details are
// returned as-is; structured details are returned as compact JSON.
func detailFromBody(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return GenericRequestMessage
	}
	raw := strings.TrimSpace(string(er.Detail))
	if raw == "" || raw == "null" {
		return GenericRequestMessage
	}
	var s string
	if err := json.Unmarshal(er.Detail, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return GenericRequestMessage
		}
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, er.Detail); err != nil {
		return raw
	}
	return buf.String()
}

package skins

import (
	"errors"
	"fmt"
)

var (
	InvalidFormat     = errors.New("the skin is not a PNG image")
	InvalidDimensions = errors.New("the skin must be 64x64 or 64x32 pixels")
	TransportFailure  = errors.New("unable to reach the skin source")
	UpstreamRejected  = errors.New("the skin source has rejected the request")
)

type InvalidDimensionsError struct {
	Width  int
	Height int
}

func (e *InvalidDimensionsError) Error() string {
	return fmt.Sprintf("image dimensions are not 64x64 or 64x32, the actual format is %dx%d", e.Width, e.Height)
}

func (e *InvalidDimensionsError) Is(target error) bool {
	return target == InvalidDimensions
}

// TransportError happens when the request to the upstream (or reading of the local file)
// hasn't been completed. Timeouts are reported with this error too.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == TransportFailure
}

// UpstreamRejectedError is returned when the upstream has answered, but the reply doesn't contain
// a signed textures property. Status is 0 when the reply came with the successful status code.
type UpstreamRejectedError struct {
	Endpoint string
	Status   int
	Reply    string
	Err      error
}

func (e *UpstreamRejectedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s responded with %d: %v", e.Endpoint, e.Status, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamRejectedError) Unwrap() error {
	return e.Err
}

func (e *UpstreamRejectedError) Is(target error) bool {
	return target == UpstreamRejected
}

// Upstream clients return errors implementing this interface for unsuccessful response codes
type statusError interface {
	StatusCode() int
}

func classifyUpstreamError(endpoint string, err error) error {
	var statusErr statusError
	if errors.As(err, &statusErr) {
		return &UpstreamRejectedError{
			Endpoint: endpoint,
			Status:   statusErr.StatusCode(),
			Err:      err,
		}
	}

	return &TransportError{
		Endpoint: endpoint,
		Err:      err,
	}
}

package analysis

import "errors"

var (
	// ErrNoSession - submit called without a bound user session
	ErrNoSession = errors.New("no user session bound")
	// ErrUnsupportedInput - the uploaded file does not declare a video media type
	ErrUnsupportedInput = errors.New("unsupported input: not a video file")
	// ErrConcurrentJob - submit called while another job is still in flight
	ErrConcurrentJob = errors.New("another analysis job is already in flight")
)

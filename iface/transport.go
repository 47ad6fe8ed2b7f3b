package iface

import (
	"context"
	"net/http"
)

type (
	// Transport performs a single request/response exchange with the
	// remote REST proxy. Implementations do not retry; retries are the
	// responsibility of the client.
	Transport interface {
		// Send posts the request body to the proxy and returns the raw
		// response. A non-nil error means no response was received.
		Send(ctx context.Context, req *Request) (*Response, error)
	}

	// Request is a single outbound call. Body holds an encoded command
	// or an encoded list of commands.
	Request struct {
		Path   string
		Body   []byte
		Header http.Header
	}

	// Response is the undecoded reply of the proxy.
	Response struct {
		StatusCode int
		Header     http.Header
		Body       []byte
	}
)

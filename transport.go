package restis

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"

	"github.com/restis/restis/iface"
)

type (
	// Transport abstracts a single request/response exchange with the
	// remote proxy.
	Transport = iface.Transport

	httpTransport struct {
		url    string
		client *http.Client
	}
)

const (
	singlePath      = "/"
	pipelinePath    = "/pipeline"
	transactionPath = "/multi-exec"
)

// NewHTTPTransport creates a transport posting to the proxy at url. A nil
// client is replaced by a pooled client.
func NewHTTPTransport(url string, client *http.Client) Transport {
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}

	return &httpTransport{
		url:    strings.TrimSuffix(url, "/"),
		client: client,
	}
}

func (t *httpTransport) Send(ctx context.Context, req *iface.Request) (*iface.Response, error) {
	httpReq, err := http.NewRequest(http.MethodPost, t.url+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	for name, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	resp, err := t.client.Do(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	return &iface.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (t *httpTransport) closeIdleConnections() {
	t.client.CloseIdleConnections()
}

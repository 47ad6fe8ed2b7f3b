package restis

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/efritz/backoff"
	"github.com/efritz/glock"
	"github.com/efritz/overcurrent"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	// Client is a goroutine-safe client for a key-value store behind a
	// REST proxy.
	Client interface {
		// Close releases idle connections held by the default transport.
		Close()

		// Do builds a command from a verb and its arguments, runs it, and
		// returns its formatted reply.
		Do(ctx context.Context, command string, args ...interface{}) (interface{}, error)

		// Run runs a command and returns its formatted reply.
		Run(ctx context.Context, command Command) (interface{}, error)

		// Pipeline creates a batch whose commands run independently in a
		// single request.
		Pipeline() Pipeline

		// Transaction creates a batch whose commands run atomically in a
		// single request.
		Transaction() Pipeline
	}

	client struct {
		transport      Transport
		token          string
		extraHeaders   http.Header
		encoded        bool
		retries        int
		backoffFactory BackoffFactory
		breakerFunc    BreakerFunc
		clock          glock.Clock
		logger         Logger
		metrics        *metrics
		formatting     bool
		returnCursor   bool
		readYourWrites bool
		syncToken      string
		mutex          sync.RWMutex
	}

	clientConfig struct {
		token          string
		httpClient     *http.Client
		transport      Transport
		headers        http.Header
		encoded        bool
		retries        int
		retryInterval  time.Duration
		backoffFactory BackoffFactory
		breakerFunc    BreakerFunc
		clock          glock.Clock
		logger         Logger
		registerer     prometheus.Registerer
		formatting     bool
		returnCursor   bool
		readYourWrites bool
	}

	// ConfigFunc is a function used to initialize a new client.
	ConfigFunc func(*clientConfig)

	// BackoffFactory creates the backoff governing the retries of a
	// single call.
	BackoffFactory func() backoff.Backoff
)

const (
	defaultRetries       = 1
	defaultRetryInterval = time.Second * 3

	headerEncoding  = "Upstash-Encoding"
	headerSyncToken = "Upstash-Sync-Token"
)

// NewClient creates a new Client for the proxy at url.
func NewClient(url string, configs ...ConfigFunc) (Client, error) {
	if url == "" {
		return nil, ErrMissingURL
	}

	config := &clientConfig{
		encoded:        true,
		retries:        defaultRetries,
		retryInterval:  defaultRetryInterval,
		breakerFunc:    noopBreakerFunc,
		clock:          glock.NewRealClock(),
		logger:         &defaultLogger{},
		formatting:     true,
		returnCursor:   true,
		readYourWrites: true,
	}

	for _, f := range configs {
		f(config)
	}

	if config.retries < 0 {
		return nil, errors.Errorf("retries must not be negative, got %d", config.retries)
	}

	if config.transport == nil {
		config.transport = NewHTTPTransport(url, config.httpClient)
	}

	if config.backoffFactory == nil {
		interval := config.retryInterval
		config.backoffFactory = func() backoff.Backoff {
			return backoff.NewConstantBackoff(interval)
		}
	}

	return &client{
		transport:      config.transport,
		token:          config.token,
		extraHeaders:   config.headers,
		encoded:        config.encoded,
		retries:        config.retries,
		backoffFactory: config.backoffFactory,
		breakerFunc:    config.breakerFunc,
		clock:          config.clock,
		logger:         config.logger,
		metrics:        newMetrics(config.registerer),
		formatting:     config.formatting,
		returnCursor:   config.returnCursor,
		readYourWrites: config.readYourWrites,
	}, nil
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) ConfigFunc {
	return func(c *clientConfig) { c.token = token }
}

// WithHTTPClient sets the HTTP client used by the default transport
// (default is a pooled go-cleanhttp client).
func WithHTTPClient(client *http.Client) ConfigFunc {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithTransport replaces the default HTTP transport.
func WithTransport(transport Transport) ConfigFunc {
	return func(c *clientConfig) { c.transport = transport }
}

// WithHeaders sets additional headers sent with every request.
func WithHeaders(headers http.Header) ConfigFunc {
	return func(c *clientConfig) { c.headers = headers }
}

// WithEncoding toggles base64 encoding of returned string values
// (default is on).
func WithEncoding(encoded bool) ConfigFunc {
	return func(c *clientConfig) { c.encoded = encoded }
}

// WithRetries sets the number of times a request failing with a
// transport error is re-sent (default is 1).
func WithRetries(retries int) ConfigFunc {
	return func(c *clientConfig) { c.retries = retries }
}

// WithRetryInterval sets the constant wait between attempts (default is
// 3 seconds). It is ignored when WithBackoff is used.
func WithRetryInterval(interval time.Duration) ConfigFunc {
	return func(c *clientConfig) { c.retryInterval = interval }
}

// WithBackoff sets the factory of the backoff used between attempts.
func WithBackoff(factory BackoffFactory) ConfigFunc {
	return func(c *clientConfig) { c.backoffFactory = factory }
}

// WithBreaker sets the circuit breaker instance to use around each
// request. The default uses a no-op circuit breaker.
func WithBreaker(breaker overcurrent.CircuitBreaker) ConfigFunc {
	return func(c *clientConfig) { c.breakerFunc = breaker.Call }
}

// WithBreakerRegistry sets the overcurrent registry to use and the
// name of the circuit breaker config to use around each request.
// The default uses a no-op circuit breaker.
func WithBreakerRegistry(registry overcurrent.Registry, name string) ConfigFunc {
	return func(c *clientConfig) {
		c.breakerFunc = func(f overcurrent.BreakerFunc) error {
			return registry.Call(name, f, nil)
		}
	}
}

// WithLogger sets the logger instance (the default will use Go's
// builtin logging library).
func WithLogger(logger Logger) ConfigFunc {
	return func(c *clientConfig) { c.logger = logger }
}

// WithFormatting toggles formatting of replies (default is on). When
// off, replies are returned as decoded.
func WithFormatting(formatting bool) ConfigFunc {
	return func(c *clientConfig) { c.formatting = formatting }
}

// WithReturnCursor toggles the cursor in formatted scan replies
// (default is on). When off, only the scanned elements are returned.
func WithReturnCursor(returnCursor bool) ConfigFunc {
	return func(c *clientConfig) { c.returnCursor = returnCursor }
}

// WithReadYourWrites toggles forwarding of the proxy's sync token so
// that later requests observe earlier writes (default is on).
func WithReadYourWrites(readYourWrites bool) ConfigFunc {
	return func(c *clientConfig) { c.readYourWrites = readYourWrites }
}

// WithRegisterer sets the registerer of the client's metrics. By default
// metrics are not registered.
func WithRegisterer(registerer prometheus.Registerer) ConfigFunc {
	return func(c *clientConfig) { c.registerer = registerer }
}

func withClock(clock glock.Clock) ConfigFunc {
	return func(c *clientConfig) { c.clock = clock }
}

//
// Client Implementation

func (c *client) Close() {
	if t, ok := c.transport.(*httpTransport); ok {
		t.closeIdleConnections()
	}
}

func (c *client) Do(ctx context.Context, command string, args ...interface{}) (interface{}, error) {
	return c.Run(ctx, NewCommand(command, args...))
}

func (c *client) Run(ctx context.Context, command Command) (interface{}, error) {
	if command.err != nil {
		return nil, command.err
	}

	body, err := encodeCommand(command)
	if err != nil {
		return nil, errors.Wrap(err, "encoding command")
	}

	var value interface{}
	if err := c.exchange(ctx, singlePath, body, func(body []byte) error {
		r, err := decodeSingle(body, c.encoded)
		if err != nil {
			return err
		}

		value = r.value
		return r.err
	}); err != nil {
		return nil, err
	}

	return c.format(command, value)
}

func (c *client) Pipeline() Pipeline {
	return newPipeline(c, modePipeline)
}

func (c *client) Transaction() Pipeline {
	return newPipeline(c, modeTransaction)
}

//
// Client Helper Functions

// Send an encoded batch and pair each reply with the command at the
// same position.
func (c *client) runBatch(ctx context.Context, mode batchMode, commands []Command) ([]Result, error) {
	body, err := encodeBatch(commands)
	if err != nil {
		return nil, errors.Wrap(err, "encoding batch")
	}

	var replies []reply
	if err := c.exchange(ctx, mode.path(), body, func(body []byte) error {
		if message, ok := decodeError(body); ok {
			if mode == modeTransaction {
				return &BatchAbortedError{Message: message}
			}

			return &CommandError{Message: message}
		}

		decoded, err := decodeBatch(body, len(commands), c.encoded)
		if err != nil {
			return err
		}

		replies = decoded
		return nil
	}); err != nil {
		return nil, err
	}

	results := make([]Result, len(commands))
	for i, r := range replies {
		if r.err != nil {
			results[i].Err = r.err
			continue
		}

		results[i].Value, results[i].Err = c.format(commands[i], r.value)
	}

	return results, nil
}

// Format a reply according to the client settings and the command's
// opt-outs.
func (c *client) format(command Command, value interface{}) (interface{}, error) {
	if !c.formatting || command.raw {
		return native(value), nil
	}

	if !c.returnCursor && !command.keepCursor {
		command.noCursor = true
	}

	return formatReply(command, value)
}

func (c *client) requestHeaders() http.Header {
	header := http.Header{}
	for name, values := range c.extraHeaders {
		for _, value := range values {
			header.Add(name, value)
		}
	}

	header.Set("Content-Type", "application/json")

	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	if c.encoded {
		header.Set(headerEncoding, "base64")
	}

	if c.readYourWrites {
		c.mutex.RLock()
		token := c.syncToken
		c.mutex.RUnlock()

		if token != "" {
			header.Set(headerSyncToken, token)
		}
	}

	return header
}

func (c *client) storeSyncToken(header http.Header) {
	if !c.readYourWrites {
		return
	}

	if token := header.Get(headerSyncToken); token != "" {
		c.mutex.Lock()
		c.syncToken = token
		c.mutex.Unlock()
	}
}

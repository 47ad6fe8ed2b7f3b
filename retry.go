package restis

import (
	"context"
	"net/http"
	"time"

	"github.com/bradhe/stopwatch"
	"github.com/efritz/overcurrent"
	"github.com/pkg/errors"

	"github.com/restis/restis/iface"
)

type (
	// BreakerFunc bridges the interface between the Call function of
	// an overcurrent breaker and an overcurrent registry.
	BreakerFunc func(overcurrent.BreakerFunc) error

	// decodeFunc consumes a response body. A CommandError or a
	// BatchAbortedError ends the exchange; any other error marks the
	// response as malformed.
	decodeFunc func(body []byte) error
)

func noopBreakerFunc(f overcurrent.BreakerFunc) error {
	return f(context.Background())
}

// Send the body to the proxy, retrying transient failures. The same
// body is re-sent on every attempt and each attempt waits for the next
// interval of a fresh backoff.
func (c *client) exchange(ctx context.Context, path string, body []byte, decode decodeFunc) error {
	var (
		backoff = c.backoffFactory()
		err     error
	)

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			interval := backoff.NextInterval()
			c.metrics.retries.Inc()
			c.logger.Printf("Request to %s failed (%s), retrying in %s", path, err.Error(), interval)

			if waitErr := c.wait(ctx, interval); waitErr != nil {
				return waitErr
			}
		}

		if err = c.attempt(ctx, path, body, decode); err == nil || !shouldRetry(err) {
			return err
		}
	}

	c.logger.Printf("Request to %s failed after %d attempts (%s)", path, c.retries+1, err.Error())
	return err
}

// Wait for the retry interval unless the context is done first. A
// non-positive interval retries immediately.
func (c *client) wait(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return ctx.Err()
	}

	select {
	case <-c.clock.After(interval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Perform a single request/response exchange within the circuit breaker.
// Only transport failures count against the breaker; command errors are
// carried out of the breaker call separately.
func (c *client) attempt(ctx context.Context, path string, body []byte, decode decodeFunc) error {
	var (
		final   error
		began   = time.Now()
		start   = stopwatch.Start()
		request = &iface.Request{
			Path:   path,
			Body:   body,
			Header: c.requestHeaders(),
		}
	)

	err := c.breakerFunc(func(_ context.Context) error {
		resp, err := c.transport.Send(ctx, request)
		if err != nil {
			return &TransportError{Err: err}
		}

		c.storeSyncToken(resp.Header)

		if resp.StatusCode >= http.StatusInternalServerError {
			return &TransportError{StatusCode: resp.StatusCode, Body: resp.Body}
		}

		if err := decode(resp.Body); err != nil {
			if isFinal(err) {
				final = err
				return nil
			}

			return &TransportError{StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
		}

		return nil
	})

	elapsed := start.Stop()
	c.metrics.duration.WithLabelValues(path).Observe(time.Since(began).Seconds())
	c.logger.Printf("Request to %s completed after %vms", path, elapsed.Milliseconds())

	if err != nil {
		if err == overcurrent.ErrCircuitOpen {
			c.logger.Printf("Request to %s rejected by circuit breaker", path)
		}

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			err = &TransportError{Err: err}
		}

		c.metrics.requests.WithLabelValues(path, outcomeTransportError).Inc()
		return err
	}

	c.metrics.requests.WithLabelValues(path, outcomeOf(final)).Inc()
	return final
}

func isFinal(err error) bool {
	var (
		commandErr *CommandError
		abortedErr *BatchAbortedError
	)

	return errors.As(err, &commandErr) || errors.As(err, &abortedErr)
}

func outcomeOf(err error) string {
	switch err.(type) {
	case nil:
		return outcomeSuccess
	case *BatchAbortedError:
		return outcomeAborted
	}

	return outcomeCommandError
}

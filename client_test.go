package restis

import (
	"context"
	"net/http"
	"time"

	"github.com/aphistic/sweet"
	"github.com/efritz/glock"
	"github.com/efritz/overcurrent"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/restis/restis/iface"
)

type ClientSuite struct{}

func (s *ClientSuite) TestNewClientMissingURL(t sweet.T) {
	_, err := NewClient("")
	Expect(err).To(Equal(ErrMissingURL))
}

func (s *ClientSuite) TestNewClientNegativeRetries(t sweet.T) {
	_, err := NewClient("https://proxy.test", WithRetries(-1))
	Expect(err).To(HaveOccurred())
}

func (s *ClientSuite) TestDo(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport, WithToken("secret"))
	)

	sendSequence(transport, respond(http.StatusOK, `{"result":"YmFy"}`))

	result, err := c.Do(context.Background(), "get", "foo")
	Expect(err).To(BeNil())
	Expect(result).To(Equal("bar"))
	Expect(transport.SendFuncCallCount).To(Equal(1))

	req := transport.SendFuncCallParams[0].Arg1
	Expect(req.Path).To(Equal("/"))
	Expect(string(req.Body)).To(Equal(`["GET","foo"]`))
	Expect(req.Header.Get("Authorization")).To(Equal("Bearer secret"))
	Expect(req.Header.Get("Upstash-Encoding")).To(Equal("base64"))
	Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))
}

func (s *ClientSuite) TestDoWithoutEncoding(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport, WithEncoding(false))
	)

	sendSequence(transport, respond(http.StatusOK, `{"result":"bar"}`))

	result, err := c.Do(context.Background(), "GET", "foo")
	Expect(err).To(BeNil())
	Expect(result).To(Equal("bar"))
	Expect(transport.SendFuncCallParams[0].Arg1.Header.Get("Upstash-Encoding")).To(BeEmpty())
}

func (s *ClientSuite) TestDoExtraHeaders(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport, WithHeaders(http.Header{"X-Trace": []string{"abc"}}))
	)

	sendSequence(transport, respond(http.StatusOK, `{"result":"PONG"}`))

	_, err := c.Run(context.Background(), Ping().Raw())
	Expect(err).To(BeNil())
	Expect(transport.SendFuncCallParams[0].Arg1.Header.Get("X-Trace")).To(Equal("abc"))
}

func (s *ClientSuite) TestRunValidationError(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport)
	)

	_, err := c.Run(context.Background(), Set("foo", "bar", SetOptions{NX: true, XX: true}))
	Expect(err).To(BeAssignableToTypeOf(&ValidationError{}))
	Expect(transport.SendFuncCallCount).To(Equal(0))

	_, err = c.Run(context.Background(), ZAdd("z", ZAddOptions{NX: true, XX: true}, ScoredMember{"a", 1}))
	Expect(err).To(BeAssignableToTypeOf(&ValidationError{}))
	Expect(transport.SendFuncCallCount).To(Equal(0))
}

func (s *ClientSuite) TestCommandErrorNotRetried(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport, WithRetries(3))
	)

	sendSequence(transport, respond(http.StatusBadRequest, `{"error":"WRONGTYPE Operation against a key holding the wrong kind of value"}`))

	_, err := c.Do(context.Background(), "INCR", "foo")
	Expect(err).To(Equal(&CommandError{Message: "WRONGTYPE Operation against a key holding the wrong kind of value"}))
	Expect(transport.SendFuncCallCount).To(Equal(1))
}

func (s *ClientSuite) TestRetryServerError(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport)
	)

	sendSequence(
		transport,
		respond(http.StatusServiceUnavailable, `upstream unavailable`),
		respond(http.StatusOK, `{"result":2}`),
	)

	result, err := c.Run(context.Background(), Incr("foo"))
	Expect(err).To(BeNil())
	Expect(result).To(Equal(int64(2)))
	Expect(transport.SendFuncCallCount).To(Equal(2))
	Expect(transport.SendFuncCallParams[0].Arg1.Body).To(Equal(transport.SendFuncCallParams[1].Arg1.Body))
}

func (s *ClientSuite) TestRetryNetworkError(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport)
	)

	sendSequence(
		transport,
		func(*iface.Request) (*iface.Response, error) { return nil, errors.New("connection reset") },
		respond(http.StatusOK, `{"result":"OK"}`),
	)

	result, err := c.Run(context.Background(), Set("foo", "bar", SetOptions{}))
	Expect(err).To(BeNil())
	Expect(result).To(Equal(true))
	Expect(transport.SendFuncCallCount).To(Equal(2))
}

func (s *ClientSuite) TestRetryMalformedBody(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport)
	)

	sendSequence(
		transport,
		respond(http.StatusOK, `<html>`),
		respond(http.StatusOK, `{"result":"YmFy"}`),
	)

	result, err := c.Run(context.Background(), Get("foo"))
	Expect(err).To(BeNil())
	Expect(result).To(Equal("bar"))
	Expect(transport.SendFuncCallCount).To(Equal(2))
}

func (s *ClientSuite) TestRetriesExhausted(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport, WithRetries(2))
	)

	sendSequence(transport, respond(http.StatusBadGateway, `bad gateway`))

	_, err := c.Run(context.Background(), Get("foo"))
	Expect(err).To(Equal(&TransportError{StatusCode: http.StatusBadGateway, Body: []byte("bad gateway")}))
	Expect(transport.SendFuncCallCount).To(Equal(3))
}

func (s *ClientSuite) TestNoRetries(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport, WithRetries(0))
	)

	sendSequence(transport, respond(http.StatusInternalServerError, `oops`))

	_, err := c.Run(context.Background(), Get("foo"))
	Expect(err).To(BeAssignableToTypeOf(&TransportError{}))
	Expect(transport.SendFuncCallCount).To(Equal(1))
}

func (s *ClientSuite) TestRetryWaitsForInterval(t sweet.T) {
	var (
		transport = NewMockTransport()
		clock     = glock.NewMockClock()
		c         = makeClient(transport, WithRetryInterval(time.Second*3), withClock(clock))
	)

	sendSequence(
		transport,
		respond(http.StatusServiceUnavailable, ``),
		respond(http.StatusOK, `{"result":"YmFy"}`),
	)

	go func() {
		// Unlock the after call in client
		clock.BlockingAdvance(time.Second * 3)
	}()

	result, err := c.Run(context.Background(), Get("foo"))
	Expect(err).To(BeNil())
	Expect(result).To(Equal("bar"))
	Expect(transport.SendFuncCallCount).To(Equal(2))
}

func (s *ClientSuite) TestRetryWaitCancelled(t sweet.T) {
	var (
		transport   = NewMockTransport()
		clock       = glock.NewMockClock()
		ctx, cancel = context.WithCancel(context.Background())
		c           = makeClient(transport, WithRetryInterval(time.Minute), withClock(clock))
	)

	defer cancel()

	sendSequence(transport, func(*iface.Request) (*iface.Response, error) {
		cancel()
		return &iface.Response{StatusCode: http.StatusServiceUnavailable}, nil
	})

	_, err := c.Run(ctx, Get("foo"))
	Expect(err).To(Equal(context.Canceled))
	Expect(transport.SendFuncCallCount).To(Equal(1))
}

func (s *ClientSuite) TestCircuitBreakerOpen(t sweet.T) {
	var (
		transport = NewMockTransport()
		count     = 1
		breaker   = func(c *clientConfig) {
			c.breakerFunc = func(f overcurrent.BreakerFunc) error {
				if count <= 0 {
					return overcurrent.ErrCircuitOpen
				}

				count--
				return f(context.Background())
			}
		}
		c = makeClient(transport, breaker, WithRetries(2))
	)

	sendSequence(transport, respond(http.StatusInternalServerError, `oops`))

	_, err := c.Run(context.Background(), Get("foo"))
	Expect(err).To(Equal(&TransportError{Err: overcurrent.ErrCircuitOpen}))
	Expect(transport.SendFuncCallCount).To(Equal(1))
}

func (s *ClientSuite) TestCommandErrorDoesNotTripBreaker(t sweet.T) {
	var (
		transport = NewMockTransport()
		failures  = 0
		breaker   = func(c *clientConfig) {
			c.breakerFunc = func(f overcurrent.BreakerFunc) error {
				err := f(context.Background())
				if err != nil {
					failures++
				}

				return err
			}
		}
		c = makeClient(transport, breaker)
	)

	sendSequence(transport, respond(http.StatusBadRequest, `{"error":"ERR syntax error"}`))

	_, err := c.Do(context.Background(), "SET", "foo", "bar", "BAD")
	Expect(err).To(BeAssignableToTypeOf(&CommandError{}))
	Expect(failures).To(Equal(0))
}

func (s *ClientSuite) TestReadYourWrites(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport)
	)

	transport.SendFunc = func(_ context.Context, req *iface.Request) (*iface.Response, error) {
		header := http.Header{}
		header.Set("Upstash-Sync-Token", "token-1")
		return &iface.Response{StatusCode: http.StatusOK, Header: header, Body: []byte(`{"result":"OK"}`)}, nil
	}

	_, err := c.Run(context.Background(), Set("a", 1, SetOptions{}))
	Expect(err).To(BeNil())
	_, err = c.Run(context.Background(), Set("b", 2, SetOptions{}))
	Expect(err).To(BeNil())

	Expect(transport.SendFuncCallParams[0].Arg1.Header.Get("Upstash-Sync-Token")).To(BeEmpty())
	Expect(transport.SendFuncCallParams[1].Arg1.Header.Get("Upstash-Sync-Token")).To(Equal("token-1"))
}

func (s *ClientSuite) TestReadYourWritesDisabled(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport, WithReadYourWrites(false))
	)

	transport.SendFunc = func(_ context.Context, req *iface.Request) (*iface.Response, error) {
		header := http.Header{}
		header.Set("Upstash-Sync-Token", "token-1")
		return &iface.Response{StatusCode: http.StatusOK, Header: header, Body: []byte(`{"result":"OK"}`)}, nil
	}

	c.Run(context.Background(), Set("a", 1, SetOptions{}))
	c.Run(context.Background(), Set("b", 2, SetOptions{}))
	Expect(transport.SendFuncCallParams[1].Arg1.Header.Get("Upstash-Sync-Token")).To(BeEmpty())
}

func (s *ClientSuite) TestFormattingDisabled(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport, WithFormatting(false))
	)

	sendSequence(transport, respond(http.StatusOK, `{"result":["Zg==","dg=="]}`))

	result, err := c.Run(context.Background(), HGetAll("h"))
	Expect(err).To(BeNil())
	Expect(result).To(Equal([]interface{}{"f", "v"}))
}

func (s *ClientSuite) TestRawCommand(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport)
	)

	sendSequence(transport, respond(http.StatusOK, `{"result":1}`))

	result, err := c.Run(context.Background(), Expire("foo", 10, ExpireAlways).Raw())
	Expect(err).To(BeNil())
	Expect(result).To(Equal(int64(1)))

	result, err = c.Run(context.Background(), Expire("foo", 10, ExpireAlways))
	Expect(err).To(BeNil())
	Expect(result).To(Equal(true))
}

func (s *ClientSuite) TestFormattingError(t sweet.T) {
	var (
		transport = NewMockTransport()
		c         = makeClient(transport)
	)

	sendSequence(transport, respond(http.StatusOK, `{"result":["Zg=="]}`))

	_, err := c.Run(context.Background(), HGetAll("h"))
	Expect(err).To(BeAssignableToTypeOf(&FormattingError{}))
	Expect(err.(*FormattingError).Family).To(Equal("HGETALL"))
	Expect(transport.SendFuncCallCount).To(Equal(1))
}

func (s *ClientSuite) TestMetrics(t sweet.T) {
	var (
		transport = NewMockTransport()
		registry  = prometheus.NewRegistry()
		c         = makeClient(transport, WithRegisterer(registry))
	)

	sendSequence(
		transport,
		respond(http.StatusServiceUnavailable, ``),
		respond(http.StatusOK, `{"result":"OK"}`),
	)

	_, err := c.Run(context.Background(), Set("foo", "bar", SetOptions{}))
	Expect(err).To(BeNil())

	m := c.(*client).metrics
	Expect(testutil.ToFloat64(m.retries)).To(Equal(float64(1)))
	Expect(testutil.ToFloat64(m.requests.WithLabelValues("/", outcomeTransportError))).To(Equal(float64(1)))
	Expect(testutil.ToFloat64(m.requests.WithLabelValues("/", outcomeSuccess))).To(Equal(float64(1)))

	families, err := registry.Gather()
	Expect(err).To(BeNil())
	Expect(families).NotTo(BeEmpty())
}

func (s *ClientSuite) TestDoKeysNamedLikeFlags(t sweet.T) {
	transport := NewMockTransport()
	sendSequence(
		transport,
		respond(http.StatusOK, `{"result":["YWxpY2U=","Ym9i"]}`),
		respond(http.StatusOK, `{"result":1}`),
	)

	c := makeClient(transport)

	members, err := c.Do(context.Background(), "ZINTER", 2, "WITHSCORES", "other")
	Expect(err).To(BeNil())
	Expect(members).To(Equal([]interface{}{"alice", "bob"}))

	added, err := c.Do(context.Background(), "ZADD", "k", 1, "INCR")
	Expect(err).To(BeNil())
	Expect(added).To(Equal(int64(1)))
}

func (s *ClientSuite) TestRequestDuration(t sweet.T) {
	var (
		transport = NewMockTransport()
		registry  = prometheus.NewRegistry()
		c         = makeClient(transport, WithRegisterer(registry))
	)

	sendSequence(transport, respond(http.StatusOK, `{"result":"OK"}`))

	_, err := c.Run(context.Background(), Set("foo", "bar", SetOptions{}))
	Expect(err).To(BeNil())

	families, err := registry.Gather()
	Expect(err).To(BeNil())

	var found bool
	for _, family := range families {
		if family.GetName() != "restis_request_duration_seconds" {
			continue
		}

		found = true
		histogram := family.GetMetric()[0].GetHistogram()
		Expect(histogram.GetSampleCount()).To(Equal(uint64(1)))

		// Sub-millisecond requests are still measured.
		Expect(histogram.GetSampleSum()).To(BeNumerically(">", 0))
	}

	Expect(found).To(BeTrue())
}

func (s *ClientSuite) TestSharedRegisterer(t sweet.T) {
	var (
		registry   = prometheus.NewRegistry()
		transport1 = NewMockTransport()
		transport2 = NewMockTransport()
	)

	sendSequence(transport1, respond(http.StatusOK, `{"result":"OK"}`))
	sendSequence(transport2, respond(http.StatusOK, `{"result":"OK"}`))

	var c1, c2 Client
	Expect(func() {
		c1 = makeClient(transport1, WithRegisterer(registry))
		c2 = makeClient(transport2, WithRegisterer(registry))
	}).NotTo(Panic())

	for _, c := range []Client{c1, c2} {
		_, err := c.Run(context.Background(), Set("foo", "bar", SetOptions{}))
		Expect(err).To(BeNil())
	}

	requests := c1.(*client).metrics.requests.WithLabelValues("/", outcomeSuccess)
	Expect(testutil.ToFloat64(requests)).To(Equal(float64(2)))
	Expect(c1.(*client).metrics.requests).To(BeIdenticalTo(c2.(*client).metrics.requests))
}

func (s *ClientSuite) TestClose(t sweet.T) {
	c, err := NewClient("https://proxy.test", WithLogger(testLogger))
	Expect(err).To(BeNil())
	c.Close()
}

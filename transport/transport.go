//
// Package transport executes HTTP requests on behalf of the exchange adapters. It knows nothing
// about any exchange's semantics: it sends bytes, returns the status and the body, and turns every
// failure to get a response into an *exchange.TransportError.
//
package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/lukehollenback/cryptox/constants"
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/logger"
	"github.com/lukehollenback/cryptox/metrics"
)

//
// Request is an outbound request. Body may be nil.
//
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

//
// Response is the status and body of a completed exchange. Non-2xx statuses are not errors at this
// level; interpreting them is up to the adapter.
//
type Response struct {
	Status int
	Body   []byte
}

//
// OK reports whether the status is in the 2xx range.
//
func (o *Response) OK() bool {
	return o.Status >= 200 && o.Status < 300
}

//
// Doer executes requests.
//
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

//
// DoerFunc adapts a function to the Doer interface.
//
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

//
// HTTP implements Doer on top of an *http.Client.
//
type HTTP struct {
	exchange   string
	httpClient *http.Client
	metrics    *metrics.Requests
	log        *logger.Logger
}

//
// Option configures an HTTP transport.
//
type Option func(*HTTP)

func WithHTTPClient(c *http.Client) Option {
	return func(o *HTTP) {
		if c != nil {
			o.httpClient = c
		}
	}
}

func WithMetrics(m *metrics.Requests) Option {
	return func(o *HTTP) {
		o.metrics = m
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(o *HTTP) {
		if l != nil {
			o.log = l
		}
	}
}

func NewHTTP(exchangeName string, opts ...Option) *HTTP {
	o := &HTTP{
		exchange:   exchangeName,
		httpClient: &http.Client{Timeout: constants.DefaultHTTPTimeout},
		log:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

//
// Do makes the specified request and returns the raw response, or a *exchange.TransportError if no
// response could be obtained.
//
func (o *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	started := time.Now()

	resp, err := o.do(ctx, req)
	if err != nil {
		o.metrics.Observe(o.exchange, req.Method, metrics.OutcomeError, time.Since(started))
		o.log.Debugw("request failed", "exchange", o.exchange, "method", req.Method, "error", err)

		return nil, &exchange.TransportError{Exchange: o.exchange, Err: err}
	}

	o.metrics.Observe(o.exchange, req.Method, strconv.Itoa(resp.Status), time.Since(started))
	o.log.Debugw("request completed", "exchange", o.exchange, "method", req.Method, "status", resp.Status)

	return resp, nil
}

func (o *HTTP) do(ctx context.Context, req *Request) (*Response, error) {
	//
	// Build the request.
	//
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	//
	// Make the request and read the whole body.
	//
	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Status: httpResp.StatusCode,
		Body:   respBody,
	}, nil
}

//
// roundTripper records metrics for requests made by vendor SDKs that bring their own request
// plumbing but accept an *http.Client.
//
type roundTripper struct {
	exchange string
	next     http.RoundTripper
	metrics  *metrics.Requests
}

func (o *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	resp, err := o.next.RoundTrip(req)
	if err != nil {
		o.metrics.Observe(o.exchange, req.Method, metrics.OutcomeError, time.Since(started))

		return nil, err
	}

	o.metrics.Observe(o.exchange, req.Method, strconv.Itoa(resp.StatusCode), time.Since(started))

	return resp, nil
}

//
// Instrument returns a copy of client whose requests are counted under the exchange's name. A nil
// client gets the default timeout.
//
func Instrument(exchangeName string, client *http.Client, m *metrics.Requests) *http.Client {
	instrumented := &http.Client{Timeout: constants.DefaultHTTPTimeout}
	if client != nil {
		copied := *client
		instrumented = &copied
	}

	next := instrumented.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	instrumented.Transport = &roundTripper{
		exchange: exchangeName,
		next:     next,
		metrics:  m,
	}

	return instrumented
}

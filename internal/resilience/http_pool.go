package resilience

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// HTTPPool wraps a shared transport with circuit breaker and retry
// protection for calls to external tracker and VCS APIs.
type HTTPPool struct {
	client         *http.Client
	circuitBreaker *CircuitBreaker
	retryConfig    RetryConfig
	mutex          sync.RWMutex
}

// NewHTTPPool creates a pooled HTTP client guarded by the given breaker.
func NewHTTPPool(maxIdle int, idleTimeout time.Duration, cb *CircuitBreaker) *HTTPPool {
	transport := &http.Transport{
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdle / 2,
		IdleConnTimeout:       idleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPPool{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		circuitBreaker: cb,
		retryConfig:    DefaultRetryConfig(),
	}
}

// DoRequest executes an HTTP GET-style request with circuit breaker and retry
func (p *HTTPPool) DoRequest(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	var resp *http.Response

	err := p.circuitBreaker.Call(func() error {
		var innerErr error
		resp, innerErr = RetryHTTP(ctx, p.retryConfig, func() (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, method, url, nil)
			if err != nil {
				return nil, err
			}

			for key, value := range headers {
				req.Header.Set(key, value)
			}

			start := time.Now()
			res, err := p.client.Do(req)
			duration := time.Since(start)

			if err != nil {
				slog.Warn("Request failed", "url", url, "error", err, "duration_ms", duration.Milliseconds())
				return nil, err
			}

			slog.Debug("Request completed", "url", url, "status", res.StatusCode, "duration_ms", duration.Milliseconds())
			return res, nil
		})
		if innerErr != nil {
			return innerErr
		}
		if resp != nil && resp.StatusCode >= 400 {
			// Drain so the connection can be reused, then surface the status
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return NewHTTPError(resp.StatusCode, resp.Status)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return resp, nil
}

// CircuitState returns the current breaker state for health reporting
func (p *HTTPPool) CircuitState() CircuitBreakerState {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.circuitBreaker.State()
}

// OnCircuitStateChange registers a callback for breaker transitions.
func (p *HTTPPool) OnCircuitStateChange(fn StateChangeFunc) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.circuitBreaker.OnStateChange(fn)
}

// Close releases idle connections held by the transport
func (p *HTTPPool) Close() error {
	if transport, ok := p.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"go.uber.org/zap"
)

// RequestConfig describes one outbound JSON request. Failures are not
// retried here; the caller surfaces them and the user re-triggers.
type RequestConfig struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	Body    interface{} // marshalled to JSON when non-nil
	Timeout time.Duration
}

// DoRequest performs a single outbound request with a finite timeout and
// returns the raw response body and status code. Errors are transport
// errors only; non-2xx statuses are the caller's to interpret.
func DoRequest(ctx context.Context, config RequestConfig) ([]byte, int, error) {
	zapLogger := logger.GetLogger().With(
		zap.String("operation", "http_request"),
		zap.String("method", config.Method),
	)

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	u, err := url.Parse(config.URL)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid URL: %w", err)
	}
	q := u.Query()
	for k, v := range config.Query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var bodyReader io.Reader
	if config.Body != nil {
		bodyBytes, err := json.Marshal(config.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewBuffer(bodyBytes)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, config.Method, u.String(), bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	for k, v := range config.Headers {
		req.Header.Set(k, v)
	}
	if config.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	zapLogger.Debug("Making HTTP request",
		zap.String("url", u.String()),
		zap.Duration("timeout", timeout),
	)

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		zapLogger.Warn("HTTP request failed",
			zap.String("url", u.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	zapLogger.Debug("HTTP request completed",
		zap.String("url", u.String()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_size", len(respBody)),
	)

	return respBody, resp.StatusCode, nil
}

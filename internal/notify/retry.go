// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests override it
// to avoid real sleeps.
var RetryBaseDelay = time.Second

const defaultMaxRetries = 5

// doWithRetry executes req and retries on HTTP 429 with exponential
// backoff starting at RetryBaseDelay: 1s, 2s, 4s, 8s, 16s by default.
//
// maxRetries <= 0 selects the default (5). The body of each 429 response is
// drained and closed before sleeping. A cancelled context during a wait
// returns ctx.Err(). When retries run out the last 429 response is returned
// for the caller to inspect.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log *zap.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		log.Debug("webhook rate limited",
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// maxRetries is the number of retries after the initial attempt.
const maxRetries = 3

// retryableStatus reports whether a response status is worth retrying.
// Rate limits and upstream hiccups are transient; other 4xx request
// errors are not.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// doWithRetry issues the request built by makeReq, retrying transient
// failures with exponential backoff. The request factory is called once
// per attempt so the body reader is fresh each time. Completions are safe
// to retry at this layer: a failed attempt has produced no output.
func doWithRetry(ctx context.Context, client *http.Client, makeReq func() (*http.Request, error)) (*http.Response, error) {
	policy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(_ *http.Response, err error) bool {
			return err != nil && ctx.Err() == nil
		}).
		WithBackoff(500*time.Millisecond, 8*time.Second).
		WithMaxRetries(maxRetries).
		Build()

	return failsafe.With(policy).
		WithContext(ctx).
		Get(func() (*http.Response, error) {
			req, reqErr := makeReq()
			if reqErr != nil {
				return nil, reqErr
			}
			resp, doErr := client.Do(req.WithContext(ctx))
			if doErr != nil {
				return nil, doErr
			}
			if retryableStatus(resp.StatusCode) {
				_ = resp.Body.Close()
				return nil, fmt.Errorf("transient upstream status %s", resp.Status)
			}
			return resp, nil
		})
}

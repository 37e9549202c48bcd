package uspto

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/letmevibethatforyou/patentsearch"
)

const errorBodySnippetLen = 200

// post marshals the payload and POSTs it with retry logic. Only rate
// limiting (429, honoring Retry-After) and network-level failures are
// retried; other HTTP errors and unparseable 200 bodies cannot succeed on a
// second attempt and fail immediately.
func (c *Client) post(ctx context.Context, payload interface{}) (map[string]interface{}, error) {
	secrets, err := c.credentials()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.do(ctx, secrets.APIKey, body)
		if err != nil {
			if ctxErr := contextError(ctx, err); ctxErr != nil {
				return nil, ctxErr
			}
			if attempt < c.maxRetries {
				c.sleep(c.retryDelay)
				continue
			}
			return nil, errors.Mark(
				errors.Wrap(err, "API request failed"),
				patentsearch.ErrUpstream,
			)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			delay := retryAfter(resp, c.retryDelay)
			drain(resp)
			c.sleep(delay)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var data map[string]interface{}
			decodeErr := json.NewDecoder(resp.Body).Decode(&data)
			drain(resp)
			if decodeErr != nil {
				return nil, errors.Mark(
					errors.Wrap(decodeErr, "error parsing API response"),
					patentsearch.ErrMalformedResponse,
				)
			}
			return data, nil
		}

		snippet := bodySnippet(resp.Body)
		drain(resp)
		sentinel := patentsearch.ErrUpstream
		if resp.StatusCode == http.StatusTooManyRequests {
			sentinel = patentsearch.ErrRateLimited
		}
		return nil, errors.Mark(
			errors.Newf("API error: %d - %s", resp.StatusCode, snippet),
			sentinel,
		)
	}

	// Unreachable while the loop returns on the final attempt; kept so the
	// function never falls through silently.
	return nil, errors.Mark(
		errors.New("maximum retries exceeded"),
		patentsearch.ErrRateLimited,
	)
}

// retryAfter reads the Retry-After header in seconds, falling back to the
// given default.
func retryAfter(resp *http.Response, fallbackDelay time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallbackDelay
}

// contextError maps a failed attempt to a cancellation sentinel when the
// caller's context is done, so canceled calls are not retried.
func contextError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.Mark(errors.Wrap(err, "API request timed out"), patentsearch.ErrTimeout)
	case errors.Is(ctx.Err(), context.Canceled):
		return errors.Mark(errors.Wrap(err, "API request canceled"), patentsearch.ErrCanceled)
	default:
		return nil
	}
}

// bodySnippet reads up to errorBodySnippetLen bytes of an error body.
func bodySnippet(r io.Reader) string {
	buf := make([]byte, errorBodySnippetLen)
	n, _ := io.ReadFull(r, buf)
	return string(buf[:n])
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

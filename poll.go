package videodb

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// poll waits for the job behind outputURL to leave the processing states and
// returns its payload. Failed polls are retried until the poll timeout,
// except for a rejected access token or a done context.
func (c *Client) poll(ctx context.Context, outputURL, requestID string) (json.RawMessage, error) {
	o := c.options

	start := time.Now()
	deadline := start.Add(o.pollTimeout)
	interval := o.pollInterval

	defer func() {
		c.metrics.observeJobWait(time.Since(start))
	}()

	var (
		attempts   int
		lastStatus = StatusProcessing
		lastErr    error
		lastResp   *resty.Response
	)

	for {
		attempts++

		env, resp, err := c.fetchJobStatus(ctx, outputURL, requestID, c.pollRequestTimeout(deadline))
		if resp != nil {
			lastResp = resp
		}

		switch {
		case err != nil:
			c.metrics.observePoll("error")
			if errors.Is(err, ErrAuthentication) || ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			o.requestLogger.Warnf("polling %s failed: %v (request_id: %s)", outputURL, err, requestID)

		case env.Status.Pending():
			c.metrics.observePoll("pending")
			lastErr = nil
			lastStatus = env.Status
			o.requestLogger.Debugf("waiting for job at %s, status %s (request_id: %s)", outputURL, env.Status, requestID)

		default:
			c.metrics.observePoll("done")
			result := env.unwrap()
			if result.Success {
				return result.Data, nil
			}
			return nil, &InvalidRequestError{
				Message:   result.failureMessage(),
				RequestID: requestID,
				Response:  resp,
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			o.requestLogger.Errorf("job at %s did not complete within %v (request_id: %s)", outputURL, o.pollTimeout, requestID)
			return nil, &PollTimeoutError{
				URL:        outputURL,
				Elapsed:    time.Since(start),
				Attempts:   attempts,
				LastStatus: lastStatus,
				RequestID:  requestID,
				Response:   lastResp,
				Err:        lastErr,
			}
		}

		delay := withJitter(interval, o.pollJitter)
		if delay > remaining {
			delay = remaining
		}

		if err := sleep(ctx, delay); err != nil {
			return nil, classifyTransportError(err, lastResp, requestID)
		}

		interval = time.Duration(float64(interval) * o.pollMultiplier)
		if interval > o.pollMaxInterval {
			interval = o.pollMaxInterval
		}
	}
}

// minPollRequestTimeout is the shortest time a status check is given, so the
// check made at the poll deadline can still complete.
const minPollRequestTimeout = 100 * time.Millisecond

// pollRequestTimeout bounds a status check by the client timeout and by what
// is left until the poll deadline.
func (c *Client) pollRequestTimeout(deadline time.Time) time.Duration {
	timeout := min(c.options.timeout, time.Until(deadline))
	return max(timeout, minPollRequestTimeout)
}

// fetchJobStatus issues one plain GET against the job's output URL.
func (c *Client) fetchJobStatus(ctx context.Context, outputURL, requestID string, timeout time.Duration) (*Envelope, *resty.Response, error) {
	resp, err := c.execute(ctx, http.MethodGet, outputURL, requestID, newRequestConfig([]RequestOption{WithTimeout(timeout)}))
	if err != nil {
		return nil, nil, err
	}

	env, err := decodeEnvelope(resp.Body())
	if err != nil {
		return nil, resp, &InvalidRequestError{
			Message:   resp.String(),
			RequestID: requestID,
			Response:  resp,
			Err:       err,
		}
	}

	return env, resp, nil
}

func withJitter(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	amount := float64(d) * jitter
	return time.Duration(float64(d) - amount + rand.Float64()*2*amount)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

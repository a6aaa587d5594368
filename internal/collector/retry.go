package collector

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"MarketLens/internal/model"
)

// withRetry runs fn up to retries+1 times, doubling the wait after each
// upstream failure. Other errors and context cancellation return immediately.
func withRetry[T any](ctx context.Context, log logrus.FieldLogger, retries int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 0; attempt <= retries; attempt++ {
		out, err = fn()
		if err == nil || !errors.Is(err, model.ErrUpstreamFetch) || attempt == retries {
			return out, err
		}
		wait := backoff << attempt
		log.WithFields(logrus.Fields{"attempt": attempt + 1, "wait": wait}).WithError(err).Warn("fetch failed, retrying")
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(wait):
		}
	}
	return out, err
}

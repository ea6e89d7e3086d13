package ratelimit

import (
    "context"
    "net/http"
    "sync"
    "time"

    "stocksearch/internal/fmp"
)

// TokenBucket provides a stdlib-only token bucket limiter.
// - rate: tokens per second
// - capacity: maximum tokens the bucket can hold (burst)
type TokenBucket struct {
    rate     float64
    capacity float64

    mu     sync.Mutex
    tokens float64
    last   time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
    if tokensPerSecond <= 0 { tokensPerSecond = 0.0000001 }
    if burst <= 0 { burst = 1 }
    return &TokenBucket{
        rate:     tokensPerSecond,
        capacity: float64(burst),
        tokens:   float64(burst), // start full to allow an initial burst
        last:     time.Now(),
    }
}

// Wait blocks until one token is available or ctx is canceled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
    for {
        tb.mu.Lock()
        now := time.Now()
        elapsed := now.Sub(tb.last).Seconds()
        if elapsed > 0 {
            tb.tokens += elapsed * tb.rate
            if tb.tokens > tb.capacity {
                tb.tokens = tb.capacity
            }
            tb.last = now
        }
        if tb.tokens >= 1 {
            tb.tokens -= 1
            tb.mu.Unlock()
            return nil
        }
        deficit := 1 - tb.tokens
        tb.mu.Unlock()
        waitDur := time.Duration(deficit/tb.rate*1e9) * time.Nanosecond
        if waitDur <= 0 { waitDur = time.Millisecond }
        timer := time.NewTimer(waitDur)
        select {
        case <-ctx.Done():
            timer.Stop()
            return ctx.Err()
        case <-timer.C:
        }
    }
}

// TokenBucketClient gates outbound requests through a token bucket.
type TokenBucketClient struct {
    C  fmp.HTTPClient
    TB *TokenBucket
}

func (t *TokenBucketClient) Do(req *http.Request) (*http.Response, error) {
    if t.TB != nil {
        if err := t.TB.Wait(req.Context()); err != nil { return nil, err }
    }
    return t.C.Do(req)
}

// Wrap applies the configured pacing to c. Requests per minute wins over a
// minimum interval; with neither set c is returned unchanged.
func Wrap(c fmp.HTTPClient, requestsPerMinute, burst int, minInterval time.Duration) fmp.HTTPClient {
    switch {
    case requestsPerMinute > 0:
        if burst <= 0 { burst = 1 }
        return &TokenBucketClient{C: c, TB: NewTokenBucket(float64(requestsPerMinute)/60.0, burst)}
    case minInterval > 0:
        return &MinInterval{C: c, Interval: minInterval}
    default:
        return c
    }
}

package httpx

import (
    "net"
    "net/http"
    "time"

    "github.com/rs/zerolog"
)

// Client is a small wrapper around http.Client for JSON APIs.
// It satisfies fmp.HTTPClient.
type Client struct {
    HTTP      *http.Client
    UserAgent string
    // Headers are set on every request that does not already carry them.
    Headers map[string]string
    // Logger gets one debug line per request. URL queries are never logged
    // since the API key travels there.
    Logger zerolog.Logger
}

func New(timeout time.Duration) *Client {
    transport := &http.Transport{
        Proxy: http.ProxyFromEnvironment,
        DialContext: (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
        MaxIdleConns:          100,
        MaxIdleConnsPerHost:   32,
        MaxConnsPerHost:       32,
        ForceAttemptHTTP2:     true,
        IdleConnTimeout:       90 * time.Second,
        TLSHandshakeTimeout:   3 * time.Second,
        ExpectContinueTimeout: 1 * time.Second,
        ResponseHeaderTimeout: 10 * time.Second,
    }
    return &Client{
        HTTP:      &http.Client{Timeout: timeout, Transport: transport},
        UserAgent: "stocksearch/1.0",
        Headers:   map[string]string{"Accept": "application/json"},
        Logger:    zerolog.Nop(),
    }
}

// Do sends req, filling in the user agent and default headers the caller left unset.
// Cancellation comes from req.Context().
func (c *Client) Do(req *http.Request) (*http.Response, error) {
    if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
        req.Header.Set("User-Agent", c.UserAgent)
    }
    for k, v := range c.Headers {
        if req.Header.Get(k) == "" {
            req.Header.Set(k, v)
        }
    }

    started := time.Now()
    res, err := c.HTTP.Do(req)
    ev := c.Logger.Debug().
        Str("method", req.Method).
        Str("host", req.URL.Host).
        Str("path", req.URL.Path).
        Dur("took", time.Since(started))
    if err != nil {
        ev.Err(err).Msg("upstream request failed")
        return nil, err
    }
    ev.Int("status", res.StatusCode).Msg("upstream request")
    return res, nil
}

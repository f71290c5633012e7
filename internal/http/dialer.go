package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/dnscache"
)

// WithDNSCache resolves hosts through resolver and caches the results for
// the lifetime of the resolver. Presets on the same host then share one
// lookup. Apply it after WithHTTPClient; it copies the underlying client
// instead of modifying it.
//
// Example:
//
//	resolver := &dnscache.Resolver{}
//	client := http.NewClient(http.WithDNSCache(resolver))
func WithDNSCache(resolver *dnscache.Resolver) Option {
	return func(c *Client) {
		if resolver == nil {
			return
		}

		var tr *http.Transport
		switch t := c.httpClient.Transport.(type) {
		case nil:
			tr = http.DefaultTransport.(*http.Transport).Clone()
		case *http.Transport:
			tr = t.Clone()
		default:
			// Unknown round tripper, leave dialing alone
			return
		}

		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
		tr.DialContext = cachingDialContext(resolver, dialer)

		hc := *c.httpClient
		hc.Transport = tr
		c.httpClient = &hc
	}
}

// cachingDialContext dials the resolved addresses of a host in order and
// returns the first connection that succeeds.
func cachingDialContext(resolver *dnscache.Resolver, dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		ips, err := resolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}
		if len(ips) == 0 {
			return nil, &net.DNSError{Err: "no addresses", Name: host, IsNotFound: true}
		}

		for _, ip := range ips {
			var conn net.Conn
			conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
		}
		return nil, err
	}
}

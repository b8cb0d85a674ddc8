// Package cdn rewrites media asset URLs to point at an image proxy host.
package cdn

import (
	"net/url"
	"strings"
)

// Transformer rewrites a raw asset URL into its CDN-served form.
type Transformer interface {
	Transform(rawURL string) string
}

// Proxy rewrites URLs camo-style: https://{host}/{escaped source url}.
type Proxy struct {
	host string
}

// NewProxy creates a Proxy for the given CDN host name.
func NewProxy(host string) *Proxy {
	return &Proxy{host: strings.TrimSuffix(host, "/")}
}

// Transform rewrites rawURL to be served through the proxy host. Empty input
// and already-proxied URLs are returned unchanged.
func (p *Proxy) Transform(rawURL string) string {
	if rawURL == "" || p.host == "" {
		return rawURL
	}
	if strings.HasPrefix(rawURL, "https://"+p.host+"/") {
		return rawURL
	}
	return "https://" + p.host + "/" + url.QueryEscape(rawURL)
}

// Identity is a Transformer that returns URLs unchanged. Used when no CDN
// host is configured and in tests.
type Identity struct{}

func (Identity) Transform(rawURL string) string { return rawURL }

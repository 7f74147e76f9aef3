// Package connectivity reports whether the remote todo service is reachable.
package connectivity

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"doit/internal/config"
)

// Probe reports the current online/offline status.
// Online is sampled synchronously at the start of a read.
type Probe interface {
	Online() bool
}

// Static is a probe with a fixed answer.
type Static bool

// Online implements Probe.
func (s Static) Online() bool { return bool(s) }

// DialProbe considers the service online when a TCP connection to Addr
// can be opened within Timeout.
type DialProbe struct {
	Addr    string
	Timeout time.Duration

	dial func(network, addr string, timeout time.Duration) (net.Conn, error)
}

// Online implements Probe.
func (p *DialProbe) Online() bool {
	dial := p.dial
	if dial == nil {
		dial = net.DialTimeout
	}
	conn, err := dial("tcp", p.Addr, p.Timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// NewDialProbe builds a DialProbe for the host of baseURL.
func NewDialProbe(baseURL string, timeout time.Duration) (*DialProbe, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("invalid base url: missing host: %s", baseURL)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			port = "80"
		default:
			port = "443"
		}
	}
	return &DialProbe{Addr: net.JoinHostPort(u.Hostname(), port), Timeout: timeout}, nil
}

// New returns the probe selected by cfg.Connectivity.Mode.
func New(cfg *config.Config) (Probe, error) {
	switch cfg.Connectivity.Mode {
	case config.ModeOnline:
		return Static(true), nil
	case config.ModeOffline:
		return Static(false), nil
	default:
		return NewDialProbe(cfg.Remote.BaseURL, cfg.Connectivity.Timeout)
	}
}

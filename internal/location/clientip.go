package location

import (
	"context"
	"net/netip"
	"sync"

	"climateguard/models"
)

// IPLocator geolocates a public IP address.
type IPLocator interface {
	LocateIP(ctx context.Context, ip string) (models.Location, error)
}

// ClientIP is a per-user Provider that geolocates the address the user's
// requests arrive from. Until a public address is known it reports ErrNoFix.
type ClientIP struct {
	name   string
	lookup IPLocator

	mu sync.Mutex
	ip string
}

func NewClientIP(name string, l IPLocator) *ClientIP {
	return &ClientIP{name: name, lookup: l}
}

func (p *ClientIP) Name() string { return p.name }

// SetIP stores ip and reports whether it changed. Addresses that cannot be
// geolocated (loopback, private, link-local, malformed) are ignored.
func (p *ClientIP) SetIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsMulticast() {
		return false
	}
	s := addr.String()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ip == s {
		return false
	}
	p.ip = s
	return true
}

func (p *ClientIP) IP() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ip
}

func (p *ClientIP) Locate(ctx context.Context) (models.Location, error) {
	ip := p.IP()
	if ip == "" || p.lookup == nil {
		return models.Location{}, ErrNoFix
	}
	return p.lookup.LocateIP(ctx, ip)
}

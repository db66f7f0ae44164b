package probe

import (
	"context"
	"net"
	"net/url"
	"time"
)

const defaultDNSTimeout = 3 * time.Second

// DNSDiagnoser explains transport failures by looking at how a target's
// host resolves. It is purely informational.
type DNSDiagnoser struct {
	Resolver *net.Resolver
	Timeout  time.Duration
}

func NewDNSDiagnoser() *DNSDiagnoser {
	return &DNSDiagnoser{Resolver: net.DefaultResolver, Timeout: defaultDNSTimeout}
}

func (d *DNSDiagnoser) Diagnose(ctx context.Context, target string) DNSStatus {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return CheckDNS(ctx, d.Resolver, extractHost(target))
}

// extractHost pulls the hostname from a URL string
func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

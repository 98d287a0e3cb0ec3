package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNS classes attached to Detail when DiagnoseDNS is enabled.
const (
	dnsResolves    = "RESOLVES"
	dnsNXDomain    = "NXDOMAIN"
	dnsNoARecord   = "NO_A_RECORD"
	dnsServfail    = "SERVFAIL_or_TIMEOUT"
	dnsInvalidName = "INVALID_NAME"
)

var dnsLookupTimeout = 3 * time.Second

// DiagnoseDNS classifies how a hostname resolves, to enrich the Detail of a
// failed probe. The class is diagnostic only.
func DiagnoseDNS(ctx context.Context, host string) string {
	host = strings.TrimSpace(host)
	if host == "" || strings.Contains(host, "://") {
		return dnsInvalidName
	}

	ctx, cancel := context.WithTimeout(ctx, dnsLookupTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", host)
	if err == nil && len(ips) > 0 {
		return dnsResolves
	}

	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			// A zone with NS records but no address records is a
			// different defect than a missing name.
			if ns, nsErr := r.LookupNS(ctx, host); nsErr == nil && len(ns) > 0 {
				return dnsNoARecord
			}
			return dnsNXDomain
		}
		if de.IsTemporary || de.Timeout() {
			return dnsServfail
		}
	}
	return dnsServfail
}

package feeds

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// errBlockedAddress is returned when a feed host resolves to an address the
// importer refuses to dial.
var errBlockedAddress = errors.New("address not allowed")

// publicAddress reports whether addr may be dialed for a feed fetch.
func publicAddress(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast():
		return false
	}
	return addr.IsGlobalUnicast()
}

// guardDial runs after DNS resolution, so redirects and discovered feed
// links are checked against the address actually being dialed.
func guardDial(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", address, errBlockedAddress)
	}
	if !publicAddress(ap.Addr()) {
		return fmt.Errorf("dialing %s: %w", address, errBlockedAddress)
	}
	return nil
}

// newTransport returns the importer's transport. Unless allowPrivate is set,
// connections to loopback, private, link-local and unspecified addresses are
// refused.
func newTransport(allowPrivate bool) http.RoundTripper {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if !allowPrivate {
		dialer := &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
			Control:   guardDial,
		}
		base.DialContext = dialer.DialContext
		// A proxy would be dialed instead of the feed host.
		base.Proxy = nil
	}
	return &userAgentTransport{base: base}
}

package seo

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

var errRemoteAddress = errors.New("refusing to crawl a non-loopback address (enable allow_remote to override)")

// localDialer returns a net.Dialer for the network sources. Unless
// allowRemote is set its Control function rejects every destination that is
// not a loopback address. The check runs after DNS resolution, so a hostname
// that resolves elsewhere is caught as well.
func localDialer(allowRemote bool) *net.Dialer {
	d := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !allowRemote {
		d.Control = requireLoopback
	}
	return d
}

func requireLoopback(_ string, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", errRemoteAddress, err)
	}

	// Unmap IPv4-in-IPv6 (e.g. ::ffff:127.0.0.1 -> 127.0.0.1).
	if !addrPort.Addr().Unmap().IsLoopback() {
		return fmt.Errorf("%w: %s", errRemoteAddress, addrPort.Addr())
	}
	return nil
}

// checkLocalURL rejects base URLs whose host is not localhost or a loopback
// literal. It is used where no dialer hook is available.
func checkLocalURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", errRemoteAddress, err)
	}

	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return nil
	}
	if addr, err := netip.ParseAddr(host); err == nil && addr.Unmap().IsLoopback() {
		return nil
	}
	return fmt.Errorf("%w: %s", errRemoteAddress, host)
}

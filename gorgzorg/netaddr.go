package gorgzorg

import (
	"net"
	"strings"
)

// localPrefixes are the dotted-quad prefixes GorgZorg is willing to talk to.
// The tool is strictly a private-network affair; everything else is refused
// before a socket is ever opened.
var localPrefixes = []string{"10.0", "127.0.0", "172.16", "192.168"}

// ValidateLocalIPv4 checks that addr is a dotted-quad IPv4 address inside
// the local-network policy: neither 0.0.0.0 nor 255.255.255.255, and
// beginning with one of the accepted private prefixes.
func ValidateLocalIPv4(addr string) error {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil || strings.Contains(addr, ":") {
		return NewError(ErrInvalidAddress, addr+" is not a valid IPv4 address")
	}
	if addr == "0.0.0.0" || addr == "255.255.255.255" {
		return NewError(ErrInvalidAddress, addr+" is not a usable host address")
	}
	if !hasLocalPrefix(addr) {
		return NewError(ErrInvalidAddress, "GorgZorg can only be run in a local network")
	}
	return nil
}

// FindLocalAddress enumerates the host's interface addresses and returns
// the first IPv4 address matching the local-network policy, loopback
// excluded. Used when the receiver is started without an explicit bind IP.
func FindLocalAddress() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", WrapErr(ErrInvalidAddress, err, "could not enumerate interfaces")
	}

	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.To4() == nil || ipnet.IP.IsLoopback() {
			continue
		}
		candidate := ipnet.IP.String()
		if hasLocalPrefix(candidate) {
			return candidate, nil
		}
	}

	return "", NewError(ErrInvalidAddress, "no valid IP address could be found")
}

func hasLocalPrefix(addr string) bool {
	for _, prefix := range localPrefixes {
		if strings.HasPrefix(addr, prefix) {
			return true
		}
	}
	return false
}

package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// TXT record keys published by a bridge.
const (
	TxtTour    = "tour"
	TxtName    = "name"
	TxtPath    = "path"
	TxtVersion = "version"
)

// Bridge is a tour bridge found on the network
type Bridge struct {
	// Instance is the mDNS instance name (the tour key)
	Instance string

	// Hostname is the mDNS hostname (e.g., "laptop.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the bridge listen port
	Port int

	// Metadata contains the TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("Tour bridge %s (%s) at %s", b.Tour(), b.Hostname, b.Addr())
}

// Addr returns host:port for dialing the bridge.
func (b *Bridge) Addr() string {
	return net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// Tour returns the advertised tour key, falling back to the instance name.
func (b *Bridge) Tour() string {
	if t := b.GetMetadata(TxtTour); t != "" {
		return t
	}
	return b.Instance
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}

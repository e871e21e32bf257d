package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/tourguide/internal/logging"
	"github.com/muurk/tourguide/internal/version"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type tour bridges advertise
	ServiceType = "_tourguide._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for bridge discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is assumed when an entry carries no port
	DefaultPort = 8787

	// BridgePath is the WebSocket path published in TXT records
	BridgePath = "/ws"
)

// Scanner handles mDNS bridge discovery
type Scanner struct {
	// Timeout is the maximum time to wait for bridge discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForBridges discovers all bridges on the local network until the
// scanner timeout or ctx ends.
func (s *Scanner) ScanForBridges(ctx context.Context) ([]*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu      sync.Mutex
		bridges []*Bridge
		seen    = make(map[string]bool)
	)
	done := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(done)
		for entry := range entries {
			b := parseServiceEntry(entry)
			if b == nil {
				continue
			}
			mu.Lock()
			if !seen[b.Addr()] {
				seen[b.Addr()] = true
				bridges = append(bridges, b)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// The resolver closes entries once it stops
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	logging.Debug("mDNS scan finished", zap.Int("bridges", len(bridges)))
	return append([]*Bridge(nil), bridges...), nil
}

// WaitForBridge waits for a bridge running the given tour key.
func (s *Scanner) WaitForBridge(ctx context.Context, tourKey string) (*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Bridge, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			b := parseServiceEntry(entry)
			if b != nil && b.Tour() == tourKey {
				select {
				case found <- b:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case b := <-found:
		return b, nil
	case <-ctx.Done():
		select {
		case b := <-found:
			return b, nil
		default:
		}
		return nil, fmt.Errorf("bridge for tour %s not found within timeout", tourKey)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Bridge.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Bridge {
	if entry == nil || entry.HostName == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Bridge{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     parseTXT(entry.Text),
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" records. A bare key maps to "".
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}
	return metadata
}

// ScanForBridges is a convenience function to scan with a custom timeout
func ScanForBridges(timeout time.Duration) ([]*Bridge, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForBridges(context.Background())
}

// Advertiser publishes a running bridge.
type Advertiser struct {
	server *zeroconf.Server
	txt    []string
}

// TXTRecords builds the TXT records for a bridge.
func TXTRecords(tourKey, tourName string) []string {
	return []string{
		TxtTour + "=" + tourKey,
		TxtName + "=" + tourName,
		TxtPath + "=" + BridgePath,
		TxtVersion + "=" + version.Short(),
	}
}

// Advertise registers a bridge for tourKey on port. Call Shutdown to withdraw it.
func Advertise(tourKey, tourName string, port int) (*Advertiser, error) {
	if tourKey == "" {
		return nil, fmt.Errorf("advertise: tour key is required")
	}
	if port <= 0 {
		return nil, fmt.Errorf("advertise: invalid port %d", port)
	}

	txt := TXTRecords(tourKey, tourName)
	srv, err := zeroconf.Register(tourKey, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising tour bridge",
		zap.String("service", ServiceType),
		zap.String("tour", tourKey),
		zap.Int("port", port),
	)
	return &Advertiser{server: srv, txt: txt}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	logging.Info("Stopped advertising tour bridge")
}

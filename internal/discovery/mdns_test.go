package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantTour string
		wantIP   string
		wantPort int
	}{
		{
			name: "bridge with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "onboarding"},
				HostName:      "laptop.local.",
				Port:          8787,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"tour=onboarding", "path=/ws"},
			},
			wantTour: "onboarding",
			wantIP:   "192.168.4.16",
			wantPort: 8787,
		},
		{
			name: "tour falls back to instance name",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "billing"},
				HostName:      "laptop.local.",
				Port:          9000,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantTour: "billing",
			wantIP:   "10.0.0.5",
			wantPort: 9000,
		},
		{
			name: "no port specified defaults",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "onboarding"},
				HostName:      "laptop.local.",
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantTour: "onboarding",
			wantIP:   "172.16.0.1",
			wantPort: DefaultPort,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "onboarding"},
				HostName:      "laptop.local.",
				Port:          8787,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantTour: "onboarding",
			wantIP:   "fe80::1",
			wantPort: 8787,
		},
		{
			name: "prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "onboarding"},
				HostName:      "laptop.local.",
				Port:          8787,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantTour: "onboarding",
			wantIP:   "192.168.1.50",
			wantPort: 8787,
		},
		{
			name: "empty hostname",
			entry: &zeroconf.ServiceEntry{
				Port:     8787,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				HostName: "laptop.local.",
				Port:     8787,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if b != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", b)
				}
				return
			}
			if b == nil {
				t.Fatal("parseServiceEntry() = nil, want bridge")
			}
			if b.Tour() != tt.wantTour {
				t.Errorf("bridge.Tour() = %v, want %v", b.Tour(), tt.wantTour)
			}
			if b.IP != tt.wantIP {
				t.Errorf("bridge.IP = %v, want %v", b.IP, tt.wantIP)
			}
			if b.Port != tt.wantPort {
				t.Errorf("bridge.Port = %v, want %v", b.Port, tt.wantPort)
			}
			if time.Since(b.DiscoveredAt) > time.Second {
				t.Errorf("bridge.DiscoveredAt is not recent: %v", b.DiscoveredAt)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"tour=onboarding", "name=Getting started", "flag", "path=/ws=x"})
	want := map[string]string{
		"tour": "onboarding",
		"name": "Getting started",
		"flag": "",
		"path": "/ws=x",
	}

	if len(got) != len(want) {
		t.Errorf("parseTXT() has %d entries, want %d", len(got), len(want))
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("parseTXT()[%q] = %q, want %q", key, got[key], value)
		}
	}
}

func TestTXTRecordsRoundTrip(t *testing.T) {
	meta := parseTXT(TXTRecords("onboarding", "Getting started"))
	b := &Bridge{Instance: "other", Metadata: meta}

	if b.Tour() != "onboarding" {
		t.Errorf("Tour() = %q, want %q", b.Tour(), "onboarding")
	}
	if b.GetMetadata(TxtPath) != BridgePath {
		t.Errorf("GetMetadata(path) = %q, want %q", b.GetMetadata(TxtPath), BridgePath)
	}
	if b.GetMetadata(TxtVersion) == "" {
		t.Error("GetMetadata(version) is empty")
	}
}

func TestAdvertiseValidation(t *testing.T) {
	if _, err := Advertise("", "x", 8787); err == nil {
		t.Error("Advertise() with empty key error = nil, want error")
	}
	if _, err := Advertise("onboarding", "x", 0); err == nil {
		t.Error("Advertise() with port 0 error = nil, want error")
	}

	// Shutdown on a nil advertiser is a no-op.
	var a *Advertiser
	a.Shutdown()
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

// Package discovery advertises and finds tour bridges over mDNS.
//
// A running bridge registers itself as a "_tourguide._tcp" service. The
// instance name is the tour key, and TXT records carry the tour name and
// the bridge path. The scan command browses for these services so a watcher
// can connect without knowing the address in advance.
//
// # Usage Example
//
//	// Advertise a bridge listening on port 8787
//	adv, err := discovery.Advertise("onboarding", "Onboarding", 8787)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adv.Shutdown()
//
//	// Find bridges with a 5-second timeout
//	bridges, err := discovery.ScanForBridges(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range bridges {
//	    fmt.Println(b)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Bridges must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery

package pcap

import (
	"net"
	"strconv"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/hed1ad/syscallguard/pkg/features"
)

// Feature indices of a host profile.
const (
	featIPv4 = iota
	featIPv6
	featTCP
	featUDP
	featICMPv4
	featICMPv6
	featDNS
	featARP
	featTCPSyn
	featTCPRst
	featTCPFin
	featPayload
	numFeatures
)

var featureNames = [numFeatures]string{
	"ipv4",
	"ipv6",
	"tcp",
	"udp",
	"icmpv4",
	"icmpv6",
	"dns",
	"arp",
	"tcp_syn",
	"tcp_rst",
	"tcp_fin",
	"payload_packets",
}

// FeatureNames returns the names of the per-host protocol counters.
func FeatureNames() []string {
	return append([]string(nil), featureNames[:]...)
}

type hostProfile struct {
	counts  [numFeatures]int
	packets int
	window  int
}

// Profiler aggregates packets into per-source-host protocol frequency profiles.
// Each profile is a features.Vector with one counter per FeatureNames entry,
// the network analogue of a process syscall histogram.
//
// With a positive window, a host's profile is emitted and reset after every
// window packets from that host.
type Profiler struct {
	window int
	order  []string
	hosts  map[string]*hostProfile
}

// NewProfiler creates a profiler. window <= 0 disables windowing.
func NewProfiler(window int) *Profiler {
	return &Profiler{
		window: window,
		hosts:  make(map[string]*hostProfile),
	}
}

// Add counts packet against its source host. When the packet completes a
// window, the finished profile is returned with ok set.
func (p *Profiler) Add(packet gopacket.Packet) (profile features.Vector, ok bool) {
	src, ok := source(packet)
	if !ok {
		return features.Vector{}, false
	}

	h, seen := p.hosts[src]
	if !seen {
		h = &hostProfile{}
		p.hosts[src] = h
		p.order = append(p.order, src)
	}
	h.count(packet)

	if p.window > 0 && h.packets >= p.window {
		profile = p.emit(src, h)
		return profile, true
	}
	return features.Vector{}, false
}

// Flush returns the profiles still being accumulated, in first-seen host
// order, and drops them from the profiler.
func (p *Profiler) Flush() []features.Vector {
	var out []features.Vector
	for _, src := range p.order {
		h := p.hosts[src]
		if h.packets == 0 {
			continue
		}
		out = append(out, p.emit(src, h))
	}

	p.order = nil
	p.hosts = make(map[string]*hostProfile)
	return out
}

func (p *Profiler) emit(src string, h *hostProfile) features.Vector {
	id := src
	if p.window > 0 {
		id = src + "#" + strconv.Itoa(h.window)
	}
	v := features.New(id, h.counts[:])

	h.counts = [numFeatures]int{}
	h.packets = 0
	h.window++
	return v
}

func (h *hostProfile) count(packet gopacket.Packet) {
	h.packets++

	if packet.Layer(layers.LayerTypeIPv4) != nil {
		h.counts[featIPv4]++
	}
	if packet.Layer(layers.LayerTypeIPv6) != nil {
		h.counts[featIPv6]++
	}
	if tcpLayer := packet.Layer(layers.LayerTypeTCP); tcpLayer != nil {
		h.counts[featTCP]++
		tcp := tcpLayer.(*layers.TCP)
		if tcp.SYN {
			h.counts[featTCPSyn]++
		}
		if tcp.RST {
			h.counts[featTCPRst]++
		}
		if tcp.FIN {
			h.counts[featTCPFin]++
		}
	}
	if packet.Layer(layers.LayerTypeUDP) != nil {
		h.counts[featUDP]++
	}
	if packet.Layer(layers.LayerTypeICMPv4) != nil {
		h.counts[featICMPv4]++
	}
	if packet.Layer(layers.LayerTypeICMPv6) != nil {
		h.counts[featICMPv6]++
	}
	if packet.Layer(layers.LayerTypeDNS) != nil {
		h.counts[featDNS]++
	}
	if packet.Layer(layers.LayerTypeARP) != nil {
		h.counts[featARP]++
	}
	if app := packet.ApplicationLayer(); app != nil && len(app.Payload()) > 0 {
		h.counts[featPayload]++
	}
}

// source returns the sending host of packet. Packets without an IP or ARP
// sender are not attributed to any host.
func source(packet gopacket.Packet) (string, bool) {
	if ipLayer := packet.Layer(layers.LayerTypeIPv4); ipLayer != nil {
		return ipLayer.(*layers.IPv4).SrcIP.String(), true
	}
	if ipLayer := packet.Layer(layers.LayerTypeIPv6); ipLayer != nil {
		return ipLayer.(*layers.IPv6).SrcIP.String(), true
	}
	if arpLayer := packet.Layer(layers.LayerTypeARP); arpLayer != nil {
		return net.IP(arpLayer.(*layers.ARP).SourceProtAddress).String(), true
	}
	return "", false
}

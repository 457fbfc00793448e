// Package pcap turns packet captures into per-host protocol frequency profiles.
//
// Captures are decoded with the pure-Go pcapgo reader, so no libpcap is needed.
package pcap

import (
	"context"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"

	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/features"
)

// Reader reads packets from a PCAP stream and aggregates them into profiles.
type Reader struct {
	closer   io.Closer
	packets  *gopacket.PacketSource
	profiler *Profiler
	window   int
}

// Option configures a PCAP reader.
type Option func(*Reader)

// WithWindow emits a profile every n packets per host instead of one per capture.
func WithWindow(n int) Option {
	return func(r *Reader) {
		r.window = n
	}
}

// NewFileReader creates a reader for PCAP files.
func NewFileReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}

	r, err := NewReaderFrom(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file

	return r, nil
}

// NewReaderFrom reads a PCAP stream from src.
func NewReaderFrom(src io.Reader, opts ...Option) (*Reader, error) {
	handle, err := pcapgo.NewReader(src)
	if err != nil {
		return nil, errors.Wrap(err, "read pcap header")
	}

	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}

	r.packets = gopacket.NewPacketSource(handle, handle.LinkType())
	r.packets.DecodeOptions = gopacket.Lazy
	r.profiler = NewProfiler(r.window)

	return r, nil
}

// FeatureNames returns the names of the profile counters.
func (r *Reader) FeatureNames() []string {
	return FeatureNames()
}

// Read consumes the whole capture and returns every host profile.
func (r *Reader) Read() ([]features.Vector, error) {
	var data []features.Vector

	for {
		packet, err := r.packets.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read packet")
		}

		if profile, ok := r.profiler.Add(packet); ok {
			data = append(data, profile)
		}
	}

	return append(data, r.profiler.Flush()...), nil
}

// Stream emits profiles as host windows complete, then the remaining partial
// profiles once the capture is exhausted.
func (r *Reader) Stream(ctx context.Context) (<-chan features.Vector, error) {
	out := make(chan features.Vector, 1000)

	send := func(v features.Vector) bool {
		select {
		case out <- v:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(out)
		for {
			if ctx.Err() != nil {
				return
			}

			packet, err := r.packets.NextPacket()
			if err != nil {
				// io.EOF or a truncated capture both end the stream
				break
			}
			if profile, ok := r.profiler.Add(packet); ok {
				if !send(profile) {
					return
				}
			}
		}

		for _, profile := range r.profiler.Flush() {
			if !send(profile) {
				return
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

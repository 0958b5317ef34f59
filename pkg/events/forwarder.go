package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/snappy"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register transports
	_ "go.nanomsg.org/mangos/v3/transport/inproc"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"

	"github.com/dd0wney/cluso-gridswitch/pkg/logging"
)

// Wire prefixes. Subscribers filter on them with mangos.OptionSubscribe.
var (
	PrefixPlain      = []byte("TOPO:")
	PrefixCompressed = []byte("TOPZ:")
)

// ErrUnknownFrame is returned by DecodeFrame for messages without a known prefix.
var ErrUnknownFrame = errors.New("unknown topology frame")

// Forwarder republishes TopologyChanged events on a nanomsg PUB socket so
// processes outside the engine can follow topology changes.
type Forwarder struct {
	sock     mangos.Socket
	sub      *Subscription
	compress bool
	logger   logging.Logger

	wg   sync.WaitGroup
	sent atomic.Uint64
}

// ForwarderConfig configures a Forwarder
type ForwarderConfig struct {
	// Listen is a mangos address, e.g. tcp://*:9190 or inproc://topology
	Listen string
	// Compress snappy-encodes frame bodies
	Compress bool
}

// NewForwarder binds a PUB socket and starts relaying events from topic
// TopicTopology of b until ctx ends or Close is called.
func NewForwarder(ctx context.Context, b *Bus, cfg ForwarderConfig, logger logging.Logger) (*Forwarder, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(cfg.Listen); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket: %w", err)
	}
	sub, err := b.Subscribe(ctx, TopicTopology)
	if err != nil {
		sock.Close()
		return nil, err
	}

	f := &Forwarder{
		sock:     sock,
		sub:      sub,
		compress: cfg.Compress,
		logger:   logger.With(logging.Component("events"), logging.String("listen", cfg.Listen)),
	}
	f.wg.Add(1)
	go f.run()
	f.logger.Info("topology forwarder started", logging.Bool("compress", cfg.Compress))
	return f, nil
}

func (f *Forwarder) run() {
	defer f.wg.Done()
	for ev := range f.sub.Events() {
		msg, err := EncodeFrame(ev, f.compress)
		if err != nil {
			f.logger.Error("failed to encode topology event", logging.Error(err))
			continue
		}
		if err := f.sock.Send(msg); err != nil {
			f.logger.Warn("failed to publish topology event", logging.Error(err))
			continue
		}
		f.sent.Add(1)
	}
}

// Sent returns the number of frames published
func (f *Forwarder) Sent() uint64 {
	return f.sent.Load()
}

// Close stops relaying and closes the socket
func (f *Forwarder) Close() error {
	f.sub.Unsubscribe()
	f.wg.Wait()
	return f.sock.Close()
}

// EncodeFrame renders ev as a prefixed JSON frame, snappy-compressed when
// compress is set.
func EncodeFrame(ev TopologyChanged, compress bool) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	if compress {
		return append(append([]byte(nil), PrefixCompressed...), snappy.Encode(nil, data)...), nil
	}
	return append(append([]byte(nil), PrefixPlain...), data...), nil
}

// DecodeFrame parses a frame produced by EncodeFrame.
func DecodeFrame(msg []byte) (TopologyChanged, error) {
	var ev TopologyChanged
	var data []byte
	switch {
	case bytes.HasPrefix(msg, PrefixPlain):
		data = msg[len(PrefixPlain):]
	case bytes.HasPrefix(msg, PrefixCompressed):
		decoded, err := snappy.Decode(nil, msg[len(PrefixCompressed):])
		if err != nil {
			return ev, fmt.Errorf("decompress frame: %w", err)
		}
		data = decoded
	default:
		return ev, ErrUnknownFrame
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode frame: %w", err)
	}
	return ev, nil
}

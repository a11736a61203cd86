package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/thejerf/suture/v4"

	"calmh.dev/xbee"
	"calmh.dev/xbee/api"
)

type monitorCmd struct {
	Listen string `default:"0.0.0.0:2116" help:"HTTP listener address for metrics"`
	State  string `help:"Directory for persistent per-node state" type:"path" env:"XBEE_STATE"`

	MQTTBroker   string `help:"MQTT broker address" env:"MQTT_BROKER"`
	MQTTClientID string `help:"MQTT client ID" env:"MQTT_CLIENT_ID"`
	MQTTUsername string `help:"MQTT username" default:"" env:"MQTT_USERNAME"`
	MQTTPassword string `help:"MQTT password" default:"" env:"MQTT_PASSWORD"`
	MQTTPrefix   string `help:"MQTT topic prefix" default:"xbee" env:"MQTT_PREFIX"`
}

func (m *monitorCmd) Run(cli *CLI, ctx context.Context) error {
	pm := &persistentMetrics{reg: prometheus.DefaultRegisterer}
	if m.State != "" {
		db, err := leveldb.OpenFile(m.State, nil)
		if err != nil {
			return fmt.Errorf("state: %w", err)
		}
		defer db.Close()
		pm.db = db
	}

	svc := &monitorService{
		cli:     cli,
		metrics: newMetrics(prometheus.DefaultRegisterer, pm),
	}
	if m.MQTTBroker != "" {
		client, err := getClient(m)
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		defer client.Disconnect(250)
		svc.pub = newPublisher(client, m.MQTTClientID, m.MQTTPrefix)
	}

	main := suture.NewSimple("xbeemon")
	main.Add(&httpService{addr: m.Listen})
	main.Add(svc)

	slog.Info("starting", "http", m.Listen, "port", cli.Port, "addr", cli.Addr, "mode", cli.Mode)
	if err := main.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type httpService struct {
	addr string
}

func (s *httpService) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	err := srv.ListenAndServe()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// monitorService owns one connection to the module. It returns when the
// connection fails, and the supervisor opens a new one.
type monitorService struct {
	cli     *CLI
	metrics *metrics
	pub     *publisher
}

func (s *monitorService) String() string {
	return "monitor"
}

func (s *monitorService) Serve(ctx context.Context) error {
	conn, err := s.cli.open(func(cfg *xbee.Config) {
		cfg.OnParseError = func(error) { s.metrics.parseErrors.Inc() }
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.AddFrameListener(s.frameReceived)
	conn.AddDataListener(s.dataReceived)
	conn.AddIOSampleListener(s.sampleReceived)

	s.identify(ctx, conn)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return fmt.Errorf("connection lost: %w", conn.Err())
	}
}

// identify queries the local module's address and node identifier.
func (s *monitorService) identify(ctx context.Context, conn *xbee.Conn) {
	var vals [][]byte
	for _, cmd := range []string{"SH", "SL", "NI"} {
		t0 := time.Now()
		v, err := conn.ATCommand(ctx, cmd, nil)
		s.metrics.requestSeconds.Observe(time.Since(t0).Seconds())
		if err != nil {
			slog.Warn("querying local module", "command", cmd, "error", err)
			return
		}
		vals = append(vals, v)
	}

	addr := api.Addr64(uintBE(vals[0])<<32 | uintBE(vals[1]))
	ni := string(vals[2])
	s.metrics.nodeInfo.WithLabelValues(addr.String(), sanitizeString(ni)).Set(1)
	slog.Info("connected", "addr", addr, "ni", ni)
}

// uintBE decodes a big-endian register value; modules drop leading zero
// bytes from AT responses.
func uintBE(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func (s *monitorService) frameReceived(f api.Frame) {
	s.metrics.framesReceived.WithLabelValues(f.Type().String()).Inc()
	slog.Debug("frame received", "type", f.Type())
}

func (s *monitorService) dataReceived(msg xbee.Message) {
	remote := msg.Remote.String()
	s.metrics.dataBytes.WithLabelValues(remote).Add(float64(len(msg.Data)))
	frames := s.seen(remote)

	rssi, hasRSSI := rssiOf(msg.Frame)
	if hasRSSI {
		s.metrics.rssi.WithLabelValues(remote).Set(rssi)
	}

	if s.pub != nil {
		s.pub.publishData(msg)
		s.pub.publishMetric(msg.Remote, "frames_received", frames)
		if hasRSSI {
			s.pub.publishMetric(msg.Remote, "rssi", rssi)
		}
	}
}

func (s *monitorService) sampleReceived(sample xbee.IOSample) {
	remote := sample.Remote.String()
	s.metrics.ioSamples.WithLabelValues(remote).Inc()
	frames := s.seen(remote)

	if s.pub != nil {
		s.pub.publishSample(sample)
		s.pub.publishMetric(sample.Remote, "frames_received", frames)
	}
}

// seen records a frame from remote and returns its total frame count.
func (s *monitorService) seen(remote string) float64 {
	s.metrics.remoteLastSeen.Set(float64(time.Now().Unix()), remote)
	return s.metrics.remoteFrames.Add(1, remote)
}

// rssiOf returns the signal strength in dBm for frame types that carry it.
func rssiOf(f api.Frame) (float64, bool) {
	switch f := f.(type) {
	case api.RX64:
		return -float64(f.RSSI), true
	case api.RX16:
		return -float64(f.RSSI), true
	}
	return 0, false
}

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"calmh.dev/hassmqtt"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"calmh.dev/xbee"
)

const publishTimeout = 5 * time.Second

func getClient(m *monitorCmd) (mqtt.Client, error) {
	if m.MQTTClientID == "" {
		hn, _ := os.Hostname()
		home, _ := os.UserHomeDir()
		hf := sha256.New()
		fmt.Fprintf(hf, "%s\n%s\n", hn, home)
		m.MQTTClientID = fmt.Sprintf("x%x", hf.Sum(nil))[:12]
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(m.MQTTBroker)
	opts.SetClientID(m.MQTTClientID)
	opts.SetAutoReconnect(true)
	if m.MQTTUsername != "" && m.MQTTPassword != "" {
		opts.SetUsername(m.MQTTUsername)
		opts.SetPassword(m.MQTTPassword)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return client, nil
}

// publisher sends received data to MQTT, raw under <prefix>/<remote>/ and
// as Home Assistant sensors through hassmqtt.
type publisher struct {
	client   mqtt.Client
	clientID string
	prefix   string

	mut     sync.Mutex
	metrics map[string]*hassmqtt.Metric
}

func newPublisher(client mqtt.Client, clientID, prefix string) *publisher {
	return &publisher{
		client:   client,
		clientID: clientID,
		prefix:   prefix,
		metrics:  make(map[string]*hassmqtt.Metric),
	}
}

func (p *publisher) publishData(msg xbee.Message) {
	p.publish(fmt.Sprintf("%s/%s/data", p.prefix, msg.Remote), msg.Data)
}

func (p *publisher) publishSample(s xbee.IOSample) {
	p.publish(fmt.Sprintf("%s/%s/sample", p.prefix, s.Remote), hex.EncodeToString(s.Sample))
}

func (p *publisher) publish(topic string, payload any) {
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		slog.Warn("publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		slog.Warn("publish", "topic", topic, "error", err)
	}
}

var metricClasses = map[string]struct{ class, unit, name string }{
	"rssi":            {"signal_strength", "dBm", "RSSI"},
	"frames_received": {"", "", "Frames received"},
}

func (p *publisher) publishMetric(remote xbee.RemoteDevice, id string, val float64) {
	mc, ok := metricClasses[id]
	if !ok {
		return
	}

	key := remote.String() + "/" + id
	p.mut.Lock()
	metric, ok := p.metrics[key]
	if !ok {
		metric = &hassmqtt.Metric{
			Device: &hassmqtt.Device{
				Namespace: "xbee",
				ClientID:  p.clientID,
				ID:        remote.String(),
				Name:      "XBee " + remote.String(),
			},
			ID:          id,
			DeviceType:  "sensor",
			DeviceClass: mc.class,
			Unit:        mc.unit,
			Name:        mc.name,
		}
		p.metrics[key] = metric
	}
	p.mut.Unlock()

	if err := metric.Publish(p.client, val); err != nil {
		slog.Warn("publish metric", "remote", remote, "metric", id, "error", err)
	}
}

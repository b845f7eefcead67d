// Package telemetry publishes mirroring pipeline events over MQTT so
// external tooling can watch a session without touching the control
// loops. Publishing is fire-and-forget: a slow or absent broker never
// stalls the pipeline.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/teslashibe/reachy-mirror/internal/log"
	"github.com/teslashibe/reachy-mirror/pkg/robot"
)

// connectTimeout bounds the initial broker handshake.
const connectTimeout = 5 * time.Second

// Event is one published telemetry record.
type Event struct {
	ID      string        `json:"id"`
	Kind    string        `json:"kind"` // "command", "calibrated", "lifecycle"
	Time    time.Time     `json:"time"`
	Command robot.Command `json:"command,omitempty"`
	Detail  string        `json:"detail,omitempty"`
}

// Publisher sends events to an MQTT broker at QoS 0.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// Connect dials the broker. brokerURL uses paho syntax, e.g.
// "tcp://localhost:1883".
func Connect(brokerURL, topic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("reachy-mirror-" + uuid.NewString()[:8]).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.WaitTimeout(connectTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	log.Info("telemetry connected", "broker", brokerURL, "topic", topic)
	return &Publisher{client: client, topic: topic}, nil
}

// Command publishes an issued robot command.
func (p *Publisher) Command(cmd robot.Command) {
	p.publish(Event{Kind: "command", Command: cmd})
}

// Calibrated publishes a recalibration event with the new zero offset.
func (p *Publisher) Calibrated(zero float64) {
	p.publish(Event{Kind: "calibrated", Detail: fmt.Sprintf("zero=%.4f", zero)})
}

// Lifecycle publishes a pipeline lifecycle event ("started", "stopped",
// "fatal: ...").
func (p *Publisher) Lifecycle(detail string) {
	p.publish(Event{Kind: "lifecycle", Detail: detail})
}

func (p *Publisher) publish(ev Event) {
	ev.ID = uuid.NewString()
	ev.Time = time.Now()

	data, err := json.Marshal(ev)
	if err != nil {
		log.Warn("telemetry marshal failed", "error", err)
		return
	}
	// QoS 0, not retained: observers want the live stream, not history.
	p.client.Publish(p.topic, 0, false, data)
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

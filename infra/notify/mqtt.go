package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/commutewatch/infra/mqtt"
)

// AlertPayload is the JSON body published for every alert.
type AlertPayload struct {
	ID      string    `json:"id"`
	Monitor string    `json:"monitor"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// MQTTNotifier publishes alerts to a topic.
type MQTTNotifier struct {
	pub     mqtt.Publisher
	topic   string
	monitor string
	retain  bool
	now     func() time.Time
}

// NewMQTTNotifier publishes alerts of monitor to topic through pub.
func NewMQTTNotifier(pub mqtt.Publisher, topic, monitor string, retain bool) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, topic: topic, monitor: monitor, retain: retain, now: time.Now}
}

// Notify publishes one AlertPayload with a fresh id.
func (n *MQTTNotifier) Notify(ctx context.Context, title, message string) error {
	payload, err := json.Marshal(AlertPayload{
		ID:      uuid.NewString(),
		Monitor: n.monitor,
		Title:   title,
		Message: message,
		Time:    n.now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.pub.Publish(ctx, n.topic, payload, n.retain)
}

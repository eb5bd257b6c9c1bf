package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// AuditLogHandler returns a consumer handler that writes every JSON message
// to log as an audit entry. Bodies that are not JSON objects are rejected so
// they get requeued instead of silently dropped.
func AuditLogHandler(log *logrus.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var fields map[string]interface{}
		if err := json.Unmarshal(msg.Body, &fields); err != nil {
			return fmt.Errorf("failed to decode message %d: %w", msg.DeliveryTag, err)
		}
		log.WithFields(logrus.Fields(fields)).WithField("delivery_tag", msg.DeliveryTag).Info("Audit event")
		return nil
	}
}

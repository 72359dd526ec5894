package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/frozenfresh/internal/catalog"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

func (p *Producer) PublishOrderPlaced(ctx context.Context, order *catalog.Order, email string) error {
	return p.publish(ctx, order.ID, OrderPlaced{
		Envelope:      Envelope{Type: TypeOrderPlaced, OccurredAt: time.Now()},
		OrderID:       order.ID,
		UserID:        order.UserID,
		Email:         email,
		Items:         order.Items,
		Subtotal:      order.Subtotal,
		DeliveryFee:   order.DeliveryFee,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
	})
}

func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *catalog.Order, email string) error {
	return p.publish(ctx, order.ID, OrderStatusChanged{
		Envelope: Envelope{Type: TypeOrderStatusChanged, OccurredAt: time.Now()},
		OrderID:  order.ID,
		UserID:   order.UserID,
		Email:    email,
		Status:   order.Status,
	})
}

func (p *Producer) publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	amqpURI, cleanup := setupAmqpURI(ctx, t)
	defer cleanup()

	conn, err := Connect(amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := SetupChannel(conn, []QueueConfig{
		{QueueName: "ticket_purchased", RoutingKey: "ticket.purchased"},
	})
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	publisher := NewPublisher(ch)

	type notification struct {
		TicketID   string  `json:"ticketId"`
		TicketCode string  `json:"ticketCode"`
		EventID    string  `json:"eventId"`
		Quantity   int     `json:"quantity"`
		Total      float64 `json:"total"`
	}

	t.Run("success publish and consume", func(t *testing.T) {
		msg := notification{
			TicketID:   "t-1",
			TicketCode: "EV1-AAAA1111",
			EventID:    "ev-1",
			Quantity:   2,
			Total:      40,
		}

		err := publisher.Publish("ticket.purchased", msg)
		require.NoError(t, err)

		deliveries, err := ch.Consume("ticket_purchased", "test-consumer", true, false, false, false, nil)
		require.NoError(t, err)

		select {
		case d := <-deliveries:
			var got notification
			err := json.Unmarshal(d.Body, &got)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
			assert.Equal(t, "application/json", d.ContentType)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for message")
		}
	})

	t.Run("marshal error", func(t *testing.T) {
		// В json marshal нельзя сериализовать канал
		badMsg := struct {
			Ch chan int `json:"ch"`
		}{
			Ch: make(chan int),
		}

		err := publisher.Publish("ticket.purchased", badMsg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.Publish")
	})
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	key  string
	msgs []amqp.Publishing
	err  error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.key = key
	f.msgs = append(f.msgs, msg)
	return f.err
}

func TestNotifyPublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	n := NewAMQP(ch, "email_queue", time.Second)

	err := n.Notify(context.Background(), domain.MailMessage{
		Type: domain.MailTypeShiftAssigned,
		To:   "bella@example.com",
		Data: domain.ShiftAssignedMailData{FullName: "Bella", Role: "Bartender"},
	})
	require.NoError(t, err)

	require.Len(t, ch.msgs, 1)
	assert.Equal(t, "email_queue", ch.key)
	assert.Equal(t, "application/json", ch.msgs[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.msgs[0].DeliveryMode)

	var got struct {
		Type string `json:"type"`
		To   string `json:"to"`
		Data struct {
			FullName string `json:"fullName"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ch.msgs[0].Body, &got))
	assert.Equal(t, domain.MailTypeShiftAssigned, got.Type)
	assert.Equal(t, "bella@example.com", got.To)
	assert.Equal(t, "Bella", got.Data.FullName)
}

func TestNotifyReturnsPublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	n := NewAMQP(ch, "email_queue", time.Second)

	err := n.Notify(context.Background(), domain.MailMessage{Type: domain.MailTypeRotaPublished})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

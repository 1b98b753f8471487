package nats_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	onats "github.com/aretw0/onboard/pkg/adapters/nats"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Publish(t *testing.T) {
	ns, nc, err := onats.StartEmbedded()
	require.NoError(t, err)
	defer onats.Shutdown(nc, ns)

	msgs := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe("onboard.notifications.>", msgs)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	n := onats.New(nc)
	n.Notify(context.Background(), domain.Notification{
		SessionID:   "s1",
		Title:       "Registration failed",
		Description: "Email already registered",
		Severity:    domain.SeverityError,
	})

	select {
	case msg := <-msgs:
		assert.Equal(t, "onboard.notifications.error", msg.Subject)
		assert.Equal(t, "s1", msg.Header.Get(onats.SessionHeader))

		var got domain.Notification
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "Email already registered", got.Description)
		assert.Equal(t, domain.SeverityError, got.Severity)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}
}

func TestNotifier_CustomSubject(t *testing.T) {
	n := onats.New(nil, onats.WithSubject("tenant.a"))
	assert.Equal(t, "tenant.a.success", n.Subject(domain.SeveritySuccess))
}

func TestNotifier_ClosedConnectionDoesNotPanic(t *testing.T) {
	ns, nc, err := onats.StartEmbedded()
	require.NoError(t, err)
	onats.Shutdown(nc, ns)

	assert.NotPanics(t, func() {
		onats.New(nc).Notify(context.Background(), domain.Notification{SessionID: "s1", Severity: domain.SeveritySuccess})
	})
}

func TestConnect_Embedded(t *testing.T) {
	nc, closeFn, err := onats.Connect(onats.EmbeddedURL)
	require.NoError(t, err)
	defer closeFn()
	assert.True(t, nc.IsConnected())
}

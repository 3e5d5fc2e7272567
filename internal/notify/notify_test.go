package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/motorcheck/internal/maintenance"
	"github.com/ukydev/motorcheck/internal/models"
)

// MockSender is a mock implementation of Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type failingTimestamps struct{}

func (failingTimestamps) LastSent(ctx context.Context) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("store down")
}

func (failingTimestamps) MarkSent(ctx context.Context, at time.Time) error {
	return errors.New("store down")
}

var t0 = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func criticalReport() maintenance.Report {
	return maintenance.Report{
		Statuses: []models.ServiceStatus{
			{ServiceID: "oil", Name: "Oil", Status: models.StatusDanger},
			{ServiceID: "air", Name: "Air", Status: models.StatusWarning},
		},
		UrgentCount:   1,
		UpcomingCount: 1,
	}
}

func TestGate_Allow(t *testing.T) {
	ctx := context.Background()
	store := &MemoryTimestamps{}
	gate := NewGate(store, 0)
	assert.Equal(t, DefaultWindow, gate.Window)

	ok, err := gate.Allow(ctx, t0)
	require.NoError(t, err)
	assert.True(t, ok, "first notification is always allowed")

	require.NoError(t, gate.Record(ctx, t0))

	tests := []struct {
		name  string
		at    time.Time
		allow bool
	}{
		{"one hour later", t0.Add(time.Hour), false},
		{"just before window", t0.Add(12*time.Hour - time.Second), false},
		{"exactly at window", t0.Add(12 * time.Hour), true},
		{"a day later", t0.Add(24 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := gate.Allow(ctx, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.allow, ok)
		})
	}
}

func TestTrigger_Evaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("sends once per window", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("Send", mock.Anything, Notification{
			Title:     "Attention! 1 overdue service",
			Body:      "Oil needs attention. +1 more pending.",
			CreatedAt: t0,
		}).Return(nil).Once()

		trigger := NewTrigger(NewGate(&MemoryTimestamps{}, DefaultWindow), sender, nil)

		assert.True(t, trigger.Evaluate(ctx, criticalReport(), t0))
		assert.False(t, trigger.Evaluate(ctx, criticalReport(), t0.Add(6*time.Hour)))
		sender.AssertExpectations(t)
		sender.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("sends again after window", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("Send", mock.Anything, mock.Anything).Return(nil)

		trigger := NewTrigger(NewGate(&MemoryTimestamps{}, DefaultWindow), sender, nil)
		assert.True(t, trigger.Evaluate(ctx, criticalReport(), t0))
		assert.True(t, trigger.Evaluate(ctx, criticalReport(), t0.Add(13*time.Hour)))
		sender.AssertNumberOfCalls(t, "Send", 2)
	})

	t.Run("nothing critical", func(t *testing.T) {
		sender := new(MockSender)
		store := &MemoryTimestamps{}
		trigger := NewTrigger(NewGate(store, DefaultWindow), sender, nil)

		report := maintenance.Report{Statuses: []models.ServiceStatus{{Name: "Oil", Status: models.StatusOK}}}
		assert.False(t, trigger.Evaluate(ctx, report, t0))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

		_, set, _ := store.LastSent(ctx)
		assert.False(t, set)
	})

	t.Run("failed delivery consumes window", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("offline")).Once()
		sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		store := &MemoryTimestamps{}
		trigger := NewTrigger(NewGate(store, DefaultWindow), sender, nil)
		assert.False(t, trigger.Evaluate(ctx, criticalReport(), t0))

		last, set, err := store.LastSent(ctx)
		require.NoError(t, err)
		assert.True(t, set)
		assert.Equal(t, t0, last)

		assert.False(t, trigger.Evaluate(ctx, criticalReport(), t0.Add(time.Minute)))
		sender.AssertNumberOfCalls(t, "Send", 1)
		assert.True(t, trigger.Evaluate(ctx, criticalReport(), t0.Add(12*time.Hour)))
		sender.AssertNumberOfCalls(t, "Send", 2)
	})

	t.Run("slow delivery does not hold the gate", func(t *testing.T) {
		release := make(chan struct{})
		sending := make(chan struct{})
		sender := SenderFunc(func(ctx context.Context, n Notification) error {
			close(sending)
			<-release
			return nil
		})
		trigger := NewTrigger(NewGate(&MemoryTimestamps{}, DefaultWindow), sender, nil)

		first := make(chan bool)
		go func() { first <- trigger.Evaluate(ctx, criticalReport(), t0) }()
		<-sending

		second := make(chan bool)
		go func() { second <- trigger.Evaluate(ctx, criticalReport(), t0.Add(time.Minute)) }()
		select {
		case sent := <-second:
			assert.False(t, sent)
		case <-time.After(time.Second):
			t.Fatal("second evaluation waited for the first delivery")
		}

		close(release)
		assert.True(t, <-first)
	})

	t.Run("timestamp store failure suppresses send", func(t *testing.T) {
		sender := new(MockSender)
		trigger := NewTrigger(NewGate(failingTimestamps{}, DefaultWindow), sender, nil)
		assert.False(t, trigger.Evaluate(ctx, criticalReport(), t0))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error, complete bool) *fakeToken {
	tok := &fakeToken{done: make(chan struct{}), err: err}
	if complete {
		close(tok.done)
	}
	return tok
}

func (f *fakeToken) Wait() bool {
	<-f.done
	return true
}

func (f *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-f.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (f *fakeToken) Done() <-chan struct{} { return f.done }
func (f *fakeToken) Error() error          { return f.err }

type fakePublisher struct {
	topic   string
	qos     byte
	payload []byte
	token   mqtt.Token
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.topic = topic
	p.qos = qos
	p.payload, _ = payload.([]byte)
	return p.token
}

func TestMQTTSender_Send(t *testing.T) {
	n := Notification{Title: "Maintenance reminder", Body: "Oil needs attention.", CreatedAt: t0}

	t.Run("publishes json", func(t *testing.T) {
		pub := &fakePublisher{token: newFakeToken(nil, true)}
		sender := &MQTTSender{Client: pub, Topic: "motorcheck/notifications", QoS: 1}

		require.NoError(t, sender.Send(context.Background(), n))
		assert.Equal(t, "motorcheck/notifications", pub.topic)
		assert.Equal(t, byte(1), pub.qos)

		var out Notification
		require.NoError(t, json.Unmarshal(pub.payload, &out))
		assert.Equal(t, n.Title, out.Title)
		assert.Equal(t, n.Body, out.Body)
	})

	t.Run("broker error", func(t *testing.T) {
		pub := &fakePublisher{token: newFakeToken(errors.New("not authorized"), true)}
		sender := &MQTTSender{Client: pub, Topic: "t"}
		err := sender.Send(context.Background(), n)
		assert.ErrorContains(t, err, "not authorized")
	})

	t.Run("timeout", func(t *testing.T) {
		pub := &fakePublisher{token: newFakeToken(nil, false)}
		sender := &MQTTSender{Client: pub, Topic: "t", Timeout: 10 * time.Millisecond}
		err := sender.Send(context.Background(), n)
		assert.ErrorContains(t, err, "timed out")
	})

	t.Run("nil client", func(t *testing.T) {
		sender := &MQTTSender{Topic: "t"}
		assert.Error(t, sender.Send(context.Background(), n))
	})
}

func TestLogSender_Send(t *testing.T) {
	sender := &LogSender{}
	assert.NoError(t, sender.Send(context.Background(), Notification{Title: "x"}))
}

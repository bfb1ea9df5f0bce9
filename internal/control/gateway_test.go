package control

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/switchboard/internal/audit"
	"github.com/nerrad567/switchboard/internal/infrastructure/influxdb"
	"github.com/nerrad567/switchboard/internal/infrastructure/mqtt"
	"github.com/nerrad567/switchboard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGateway_Control(t *testing.T) {
	t.Run("owner publishes exactly once", func(t *testing.T) {
		owners := &mockOwners{}
		defer owners.AssertExpectations(t)
		sender := &mockSender{}
		defer sender.AssertExpectations(t)

		owners.On("DoesUserOwnDevice", mock.Anything, int64(7), int64(42)).Return(true, nil)
		sender.On("Send", mock.Anything, mock.MatchedBy(func(c Command) bool {
			return c.UserID == 7 && c.DeviceID == 42 && c.Action == "on" && c.ID != ""
		})).Return(nil).Once()

		g := NewGateway(owners, sender)
		out, err := g.Control(context.Background(), Request{UserID: 7, Action: "on", DeviceID: 42})

		require.NoError(t, err)
		assert.Equal(t, StatePublished, out.State)
		assert.NotEmpty(t, out.CommandID)
	})

	t.Run("non-owner is rejected without publishing", func(t *testing.T) {
		owners := &mockOwners{}
		defer owners.AssertExpectations(t)
		sender := &mockSender{}

		owners.On("DoesUserOwnDevice", mock.Anything, int64(7), int64(42)).Return(false, nil)

		g := NewGateway(owners, sender)
		out, err := g.Control(context.Background(), Request{UserID: 7, Action: "on", DeviceID: 42})

		assert.ErrorIs(t, err, ErrOwnershipDenied)
		assert.Equal(t, StateRejected, out.State)
		assert.Empty(t, out.CommandID)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("invalid input is rejected before the ownership check", func(t *testing.T) {
		tests := []Request{
			{UserID: 7, Action: "", DeviceID: 42},
			{UserID: 7, Action: "On", DeviceID: 42},
			{UserID: 7, Action: "on1", DeviceID: 42},
			{UserID: 7, Action: "turn-on", DeviceID: 42},
			{UserID: 7, Action: "on/../off", DeviceID: 42},
			{UserID: 7, Action: "on", DeviceID: 0},
			{UserID: 0, Action: "on", DeviceID: 42},
		}
		for _, req := range tests {
			owners := &mockOwners{}
			sender := &mockSender{}

			g := NewGateway(owners, sender)
			out, err := g.Control(context.Background(), req)

			assert.ErrorIs(t, err, ErrInvalidRequest, "request %+v", req)
			assert.Equal(t, StateRejected, out.State)
			owners.AssertNotCalled(t, "DoesUserOwnDevice", mock.Anything, mock.Anything, mock.Anything)
			sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		}
	})

	t.Run("transport failure stays authorized and is not retried", func(t *testing.T) {
		owners := &mockOwners{}
		sender := &mockSender{}
		defer sender.AssertExpectations(t)

		owners.On("DoesUserOwnDevice", mock.Anything, int64(7), int64(42)).Return(true, nil)
		sendErr := errors.Join(ErrTransport, mqtt.ErrNotConnected)
		sender.On("Send", mock.Anything, mock.Anything).Return(sendErr).Once()

		g := NewGateway(owners, sender)
		out, err := g.Control(context.Background(), Request{UserID: 7, Action: "on", DeviceID: 42})

		assert.ErrorIs(t, err, ErrTransport)
		assert.Equal(t, StateAuthorized, out.State)
		assert.NotEmpty(t, out.CommandID)
		sender.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("ownership storage failure is returned", func(t *testing.T) {
		owners := &mockOwners{}
		sender := &mockSender{}
		storeErr := errors.New("database is locked")

		owners.On("DoesUserOwnDevice", mock.Anything, int64(7), int64(42)).Return(false, storeErr)

		g := NewGateway(owners, sender)
		out, err := g.Control(context.Background(), Request{UserID: 7, Action: "on", DeviceID: 42})

		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, ErrOwnershipDenied)
		assert.Equal(t, StateReceived, out.State)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestGateway_Sinks(t *testing.T) {
	t.Run("published outcome is counted, stored and audited", func(t *testing.T) {
		owners := &mockOwners{}
		sender := &mockSender{}
		observer := &mockObserver{}
		defer observer.AssertExpectations(t)
		history := &mockHistory{}
		defer history.AssertExpectations(t)
		auditSink := &mockAudit{}
		defer auditSink.AssertExpectations(t)

		owners.On("DoesUserOwnDevice", mock.Anything, int64(7), int64(42)).Return(true, nil)
		sender.On("Send", mock.Anything, mock.Anything).Return(nil)
		observer.On("ObservePublish", mock.Anything).Once()
		observer.On("ObserveCommand", metrics.CommandPublished).Once()
		history.On("RecordCommand", mock.MatchedBy(func(r influxdb.CommandRecord) bool {
			return r.UserID == 7 && r.DeviceID == 42 && r.Action == "on" &&
				r.Result == metrics.CommandPublished && r.CommandID != ""
		})).Once()
		auditSink.On("Record", mock.MatchedBy(func(e *audit.Entry) bool {
			return e.Action == audit.ActionControl && e.EntityType == audit.EntityDevice &&
				e.EntityID == "42" && e.UserID == "7" && e.Details["result"] == metrics.CommandPublished
		})).Once()

		g := NewGateway(owners, sender, WithMetrics(observer), WithHistory(history), WithAudit(auditSink))
		_, err := g.Control(context.Background(), Request{UserID: 7, Action: "on", DeviceID: 42})
		require.NoError(t, err)
	})

	t.Run("denied outcome is counted and audited", func(t *testing.T) {
		owners := &mockOwners{}
		observer := &mockObserver{}
		defer observer.AssertExpectations(t)
		history := &mockHistory{}
		defer history.AssertExpectations(t)
		auditSink := &mockAudit{}
		defer auditSink.AssertExpectations(t)

		owners.On("DoesUserOwnDevice", mock.Anything, int64(7), int64(42)).Return(false, nil)
		observer.On("ObserveCommand", metrics.CommandDenied).Once()
		history.On("RecordCommand", mock.MatchedBy(func(r influxdb.CommandRecord) bool {
			return r.Result == metrics.CommandDenied && r.CommandID == ""
		})).Once()
		auditSink.On("Record", mock.MatchedBy(func(e *audit.Entry) bool {
			return e.Details["result"] == metrics.CommandDenied
		})).Once()

		g := NewGateway(owners, &mockSender{}, WithMetrics(observer), WithHistory(history), WithAudit(auditSink))
		_, err := g.Control(context.Background(), Request{UserID: 7, Action: "on", DeviceID: 42})
		assert.ErrorIs(t, err, ErrOwnershipDenied)
	})

	t.Run("invalid request is counted only", func(t *testing.T) {
		observer := &mockObserver{}
		defer observer.AssertExpectations(t)
		history := &mockHistory{}
		auditSink := &mockAudit{}

		observer.On("ObserveCommand", metrics.CommandInvalid).Once()

		g := NewGateway(&mockOwners{}, &mockSender{}, WithMetrics(observer), WithHistory(history), WithAudit(auditSink))
		_, err := g.Control(context.Background(), Request{UserID: 7, Action: "DROP", DeviceID: 42})

		assert.ErrorIs(t, err, ErrInvalidRequest)
		history.AssertNotCalled(t, "RecordCommand", mock.Anything)
		auditSink.AssertNotCalled(t, "Record", mock.Anything)
	})

	t.Run("works with a real collector", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		collector, err := metrics.New(reg)
		require.NoError(t, err)

		owners := &mockOwners{}
		owners.On("DoesUserOwnDevice", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		g := NewGateway(owners, &mockSender{}, WithMetrics(collector))
		_, err = g.Control(context.Background(), Request{UserID: 1, Action: "on", DeviceID: 1})
		assert.ErrorIs(t, err, ErrOwnershipDenied)

		n, err := testutil.GatherAndCount(reg, "switchboard_control_commands_total")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction("on"))
	assert.True(t, ValidAction("toggle"))
	assert.False(t, ValidAction(""))
	assert.False(t, ValidAction("ON"))
	assert.False(t, ValidAction("on\n"))
	assert.False(t, ValidAction("dim50"))
}

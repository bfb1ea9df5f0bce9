package control

import (
	"context"
	"time"

	"github.com/nerrad567/switchboard/internal/audit"
	"github.com/nerrad567/switchboard/internal/infrastructure/influxdb"
	"github.com/stretchr/testify/mock"
)

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(topic string, payload []byte, qos byte, retained bool) error {
	args := m.Called(topic, payload, qos, retained)
	return args.Error(0)
}

type mockOwners struct {
	mock.Mock
}

func (m *mockOwners) DoesUserOwnDevice(ctx context.Context, userID, deviceID int64) (bool, error) {
	args := m.Called(ctx, userID, deviceID)
	return args.Bool(0), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, cmd Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) ObserveCommand(result string) {
	m.Called(result)
}

func (m *mockObserver) ObservePublish(d time.Duration) {
	m.Called(d)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) RecordCommand(rec influxdb.CommandRecord) {
	m.Called(rec)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Record(entry *audit.Entry) {
	m.Called(entry)
}

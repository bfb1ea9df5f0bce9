package control

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/nerrad567/switchboard/internal/audit"
	"github.com/nerrad567/switchboard/internal/infrastructure/influxdb"
	"github.com/nerrad567/switchboard/internal/metrics"
)

// actionPattern restricts actions to lower-case ASCII letters. This is the
// only place actions are validated; the Publisher accepts any string.
var actionPattern = regexp.MustCompile(`^[a-z]+$`)

// State is where a control request ended up.
type State string

// Control request states. Received is the entry state; Published and
// Rejected are terminal. A transport failure leaves the request Authorized.
const (
	StateReceived   State = "received"
	StateAuthorized State = "authorized"
	StatePublished  State = "published"
	StateRejected   State = "rejected"
)

// Request is a (user, action, device) triple from the boundary.
type Request struct {
	UserID   int64
	Action   string
	DeviceID int64
}

// Outcome reports the final state. CommandID is set once authorized.
type Outcome struct {
	State     State  `json:"state"`
	CommandID string `json:"command_id,omitempty"`
}

// OwnershipChecker answers whether a user owns a device.
// Satisfied by *auth.Authority.
type OwnershipChecker interface {
	DoesUserOwnDevice(ctx context.Context, userID, deviceID int64) (bool, error)
}

// CommandSender delivers a command to the broker. Satisfied by *Publisher.
type CommandSender interface {
	Send(ctx context.Context, cmd Command) error
}

// CommandObserver counts outcomes. Satisfied by *metrics.Collector.
type CommandObserver interface {
	ObserveCommand(result string)
	ObservePublish(d time.Duration)
}

// HistorySink stores command outcomes. Satisfied by *influxdb.Client.
type HistorySink interface {
	RecordCommand(rec influxdb.CommandRecord)
}

// AuditSink stores audit entries. Satisfied by *audit.Recorder.
type AuditSink interface {
	Record(entry *audit.Entry)
}

// Logger defines the logging interface used by the Gateway.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Gateway joins the ownership check and the publisher. Every terminal
// outcome is counted, audited and sent to the history sink; failures of
// those sinks never fail the request.
type Gateway struct {
	owners  OwnershipChecker
	sender  CommandSender
	metrics CommandObserver
	history HistorySink
	audit   AuditSink
	logger  Logger
}

// GatewayOption configures optional Gateway collaborators.
type GatewayOption func(*Gateway)

// WithMetrics sets the outcome counter.
func WithMetrics(m CommandObserver) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// WithHistory sets the command history sink.
func WithHistory(h HistorySink) GatewayOption {
	return func(g *Gateway) { g.history = h }
}

// WithAudit sets the audit sink.
func WithAudit(a AuditSink) GatewayOption {
	return func(g *Gateway) { g.audit = a }
}

// WithLogger sets the logger.
func WithLogger(l Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// NewGateway creates a Gateway.
func NewGateway(owners OwnershipChecker, sender CommandSender, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		owners: owners,
		sender: sender,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ValidAction reports whether action is acceptable at the boundary.
func ValidAction(action string) bool {
	return actionPattern.MatchString(action)
}

// Control runs one request through the state machine. At most one publish
// happens, and only for an owner.
//
// Errors: ErrInvalidRequest, ErrOwnershipDenied, ErrTransport, or a wrapped
// storage error from the ownership check.
func (g *Gateway) Control(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{State: StateReceived}

	if !ValidAction(req.Action) || req.DeviceID <= 0 || req.UserID <= 0 {
		out.State = StateRejected
		g.finish(req, out, metrics.CommandInvalid, nil)
		return out, fmt.Errorf("%w: action %q device %d", ErrInvalidRequest, req.Action, req.DeviceID)
	}

	owned, err := g.owners.DoesUserOwnDevice(ctx, req.UserID, req.DeviceID)
	if err != nil {
		err = fmt.Errorf("checking ownership: %w", err)
		g.finish(req, out, metrics.CommandFailed, err)
		return out, err
	}
	if !owned {
		out.State = StateRejected
		g.finish(req, out, metrics.CommandDenied, nil)
		return out, ErrOwnershipDenied
	}

	out.State = StateAuthorized
	cmd := NewCommand(req.UserID, req.Action, req.DeviceID)
	out.CommandID = cmd.ID

	start := time.Now()
	err = g.sender.Send(ctx, cmd)
	if g.metrics != nil {
		g.metrics.ObservePublish(time.Since(start))
	}
	if err != nil {
		g.finish(req, out, metrics.CommandFailed, err)
		return out, err
	}

	out.State = StatePublished
	g.finish(req, out, metrics.CommandPublished, nil)
	return out, nil
}

func (g *Gateway) finish(req Request, out Outcome, result string, err error) {
	if g.metrics != nil {
		g.metrics.ObserveCommand(result)
	}

	if err != nil {
		g.logger.Error("device control failed",
			"user_id", req.UserID, "device_id", req.DeviceID, "action", req.Action,
			"state", out.State, "error", err)
	} else {
		g.logger.Info("device control",
			"user_id", req.UserID, "device_id", req.DeviceID, "action", req.Action,
			"result", result)
	}

	// Invalid requests carry arbitrary input; keep them out of the stores.
	if result == metrics.CommandInvalid {
		return
	}

	if g.history != nil {
		g.history.RecordCommand(influxdb.CommandRecord{
			CommandID: out.CommandID,
			UserID:    req.UserID,
			DeviceID:  req.DeviceID,
			Action:    req.Action,
			Result:    result,
			Time:      time.Now(),
		})
	}

	if g.audit != nil {
		details := map[string]any{
			"action": req.Action,
			"result": result,
			"state":  string(out.State),
		}
		if out.CommandID != "" {
			details["command_id"] = out.CommandID
		}
		g.audit.Record(&audit.Entry{
			Action:     audit.ActionControl,
			EntityType: audit.EntityDevice,
			EntityID:   strconv.FormatInt(req.DeviceID, 10),
			UserID:     strconv.FormatInt(req.UserID, 10),
			Source:     audit.SourceAPI,
			Details:    details,
		})
	}
}

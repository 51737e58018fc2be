package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sensioair/sensio-mcp/internal/metrics"
)

// Envelope is the outcome of one tool call. Body is indented JSON: the
// result on success, {"error": "..."} on failure.
type Envelope struct {
	Body    []byte
	IsError bool
	Kind    Kind
}

type handler func(ctx context.Context, caller string, args json.RawMessage) (any, error)

// Dispatcher routes tool calls by name and converts every outcome,
// including panics, into an Envelope.
type Dispatcher struct {
	handlers map[string]handler
}

func NewDispatcher(tools *Tools) *Dispatcher {
	return &Dispatcher{handlers: map[string]handler{
		ToolListDevices: func(ctx context.Context, caller string, _ json.RawMessage) (any, error) {
			return tools.ListDevices(ctx, caller)
		},
		ToolLatest: func(ctx context.Context, caller string, args json.RawMessage) (any, error) {
			var in LatestInput
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			return tools.Latest(ctx, caller, in)
		},
		ToolHistory: func(ctx context.Context, caller string, args json.RawMessage) (any, error) {
			var in HistoryInput
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			return tools.History(ctx, caller, in)
		},
		ToolParticleBreakdown: func(ctx context.Context, caller string, args json.RawMessage) (any, error) {
			var in BreakdownInput
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			return tools.ParticleBreakdown(ctx, caller, in)
		},
	}}
}

// Call runs the named tool for caller. It never panics and never returns
// an error: failures are reported in the envelope.
func (d *Dispatcher) Call(ctx context.Context, caller, name string, args json.RawMessage) (env Envelope) {
	callID := uuid.NewString()
	start := time.Now()
	label := name

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("call_id", callID).Str("tool", name).Interface("panic", r).Msg("tool call panicked")
			env = errorEnvelope(KindInternal, "internal error")
		}
		elapsed := time.Since(start)
		metrics.ToolCalls.WithLabelValues(label, string(env.Kind)).Inc()
		metrics.ToolCallDuration.WithLabelValues(label).Observe(elapsed.Seconds())

		ev := log.Info()
		if env.IsError {
			ev = log.Warn()
		}
		ev.Str("call_id", callID).
			Str("tool", name).
			Str("caller", caller).
			Str("kind", string(env.Kind)).
			Dur("duration", elapsed).
			Msg("tool call")
	}()

	h, ok := d.handlers[name]
	if !ok {
		label = "unknown"
		return failure(errors.Mark(errors.Newf("unknown tool: %s", name), ErrUnknownTool))
	}

	result, err := h(ctx, caller, args)
	if err != nil {
		if KindOf(err) == KindInternal {
			log.Error().Err(err).Str("call_id", callID).Str("tool", name).Msg("tool call failed")
		}
		return failure(err)
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return failure(errors.Wrap(err, "encode result"))
	}
	return Envelope{Body: body, Kind: KindOK}
}

// InvalidArguments is the validation envelope for arguments that could not
// be read as JSON.
func InvalidArguments(err error) Envelope {
	return failure(invalidf("invalid arguments: %v", err))
}

func failure(err error) Envelope {
	return errorEnvelope(KindOf(err), err.Error())
}

func errorEnvelope(kind Kind, msg string) Envelope {
	body, _ := json.MarshalIndent(map[string]string{"error": msg}, "", "  ")
	return Envelope{Body: body, IsError: true, Kind: kind}
}

// decodeArgs treats absent or null arguments as an empty object. Unknown
// fields are ignored.
func decodeArgs(args json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return invalidf("invalid arguments: %v", err)
	}
	return nil
}

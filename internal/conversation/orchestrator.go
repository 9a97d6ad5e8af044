package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/commerce-chat/internal/observability/metrics"
	"github.com/wolfman30/commerce-chat/internal/persona"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

var chatTracer = otel.Tracer("commerce.internal.conversation")

const defaultChatTimeout = 30 * time.Second

type chatState string

const (
	stateReceived      chatState = "received"
	stateAssembled     chatState = "assembled"
	stateBackendCalled chatState = "backend_called"
	stateParsed        chatState = "parsed"
	stateDispatched    chatState = "dispatched"
	stateResponded     chatState = "responded"
)

// Degrade reasons reported in logs and metrics.
const (
	reasonBackendError    = "backend_error"
	reasonBackendTimeout  = "backend_timeout"
	reasonMalformedOutput = "malformed_output"
)

// ChatResponse is what POST /chat serializes: answer, optional intent and the
// dispatcher's fields flattened alongside them.
type ChatResponse struct {
	Answer   string
	Intent   string
	Fields   Fields
	Degraded bool
	Reason   string
}

func (r ChatResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		if _, reserved := reservedFields[k]; reserved {
			continue
		}
		out[k] = v
	}
	out["answer"] = r.Answer
	if r.Intent != "" {
		out["intent"] = r.Intent
	}
	return json.Marshal(out)
}

// OrchestratorConfig wires the orchestrator's collaborators.
type OrchestratorConfig struct {
	Persona    *persona.Config
	LLM        LLMClient
	Dispatcher *Dispatcher
	Timeout    time.Duration
	DebugTrace bool
	Metrics    *metrics.ChatMetrics
	Logger     *logging.Logger
}

// Orchestrator runs one chat request: assemble, call the backend once, parse,
// dispatch. Backend and parse failures degrade to the persona's fallback answer.
type Orchestrator struct {
	persona    *persona.Config
	assembler  *Assembler
	llm        LLMClient
	dispatcher *Dispatcher
	timeout    time.Duration
	metrics    *metrics.ChatMetrics
	logger     *logging.Logger
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.LLM == nil {
		panic("conversation: orchestrator requires an LLM client")
	}
	if cfg.Persona == nil {
		cfg.Persona = persona.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = NewDispatcher(nil, "", cfg.Metrics, cfg.Logger)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChatTimeout
	}
	return &Orchestrator{
		persona:    cfg.Persona,
		assembler:  NewAssembler(cfg.Persona, cfg.Logger, cfg.DebugTrace),
		llm:        cfg.LLM,
		dispatcher: cfg.Dispatcher,
		timeout:    cfg.Timeout,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Handle returns an error only for validation failures (ErrValidation).
func (o *Orchestrator) Handle(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	o.transition(stateReceived)

	llmReq, mode, err := o.assembler.Assemble(req)
	if err != nil {
		return ChatResponse{}, err
	}
	o.transition(stateAssembled, "mode", string(mode))

	raw, err := o.callBackend(ctx, llmReq, mode)
	if err != nil {
		reason := reasonBackendError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = reasonBackendTimeout
		}
		o.logger.Error("language backend call failed", "mode", string(mode), "reason", reason, "error", err)
		return o.degrade(reason), nil
	}
	o.transition(stateBackendCalled)

	reply, err := ParseStructuredReply(raw, ReplyDefaults{
		Intent: o.persona.DefaultIntent(),
		Reply:  o.persona.FallbackReply(),
	})
	if err != nil {
		o.logger.Warn("model output violated the reply contract", "error", err, "output_bytes", len(raw))
		return o.degrade(reasonMalformedOutput), nil
	}
	o.transition(stateParsed, "intent", reply.Intent)
	o.observeIntent(reply.Intent)

	for _, reason := range AuditReply(reply.Reply) {
		o.metrics.ObserveReplyAudit(reason)
		o.logger.Warn("reply matched leak signal", "reason", reason, "intent", reply.Intent)
	}

	fields := o.dispatcher.Dispatch(ctx, reply)
	o.transition(stateDispatched, "fields", len(fields))

	o.metrics.ObserveOutcome("ok", "")
	o.transition(stateResponded, "outcome", "ok")
	return ChatResponse{
		Answer: reply.Reply,
		Intent: reply.Intent,
		Fields: fields,
	}, nil
}

// callBackend makes the single bounded backend attempt.
func (o *Orchestrator) callBackend(ctx context.Context, req LLMRequest, mode Mode) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	ctx, span := chatTracer.Start(ctx, "conversation.backend.complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("chat.mode", string(mode)),
		attribute.Int("chat.turns", len(req.Turns)),
	)

	start := time.Now()
	resp, err := o.llm.Complete(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend call failed")
	}
	o.metrics.ObserveBackendLatency(status, time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	span.SetAttributes(
		attribute.Int("chat.output_tokens", int(resp.Usage.OutputTokens)),
		attribute.String("chat.stop_reason", resp.StopReason),
	)
	return resp.Text, nil
}

func (o *Orchestrator) degrade(reason string) ChatResponse {
	o.metrics.ObserveOutcome("degraded", reason)
	o.transition(stateResponded, "outcome", "degraded", "reason", reason)
	return ChatResponse{
		Answer:   o.persona.DegradedAnswer(),
		Degraded: true,
		Reason:   reason,
	}
}

func (o *Orchestrator) observeIntent(intent string) {
	if !o.persona.KnowsIntent(intent) {
		intent = "other"
	}
	o.metrics.ObserveIntent(intent)
}

func (o *Orchestrator) transition(state chatState, args ...any) {
	o.logger.Debug("chat state", append([]any{"state", string(state)}, args...)...)
}

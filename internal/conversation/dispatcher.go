package conversation

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/wolfman30/commerce-chat/internal/observability/metrics"
	"github.com/wolfman30/commerce-chat/internal/persona"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

// Fields are supplementary response keys produced by dispatch rules.
type Fields map[string]any

// Rule computes fields for one intent. Rules read through injected
// collaborators only and never see or return the reply text for rewriting.
type Rule func(ctx context.Context, reply StructuredReply) (Fields, error)

// StatusField is the response key CHECK_STATUS attaches.
const StatusField = "status"

// Keys owned by the response itself; rules may not set them.
var reservedFields = map[string]struct{}{
	"answer": {},
	"intent": {},
}

// defaultLookupTimeout bounds one order status read so a down store cannot
// hold the chat response.
const defaultLookupTimeout = 500 * time.Millisecond

// Dispatcher maps intents to optional server-side side effects.
type Dispatcher struct {
	rules          map[string]Rule
	logger         *logging.Logger
	metrics        *metrics.ChatMetrics
	fallbackStatus string
	lookupTimeout  time.Duration
}

// NewDispatcher registers the default rule table. fallbackStatus answers
// CHECK_STATUS when the lookup fails or is empty; blank means
// DefaultOrderStatus. A nil lookup always answers fallbackStatus.
func NewDispatcher(lookup OrderStatusLookup, fallbackStatus string, m *metrics.ChatMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(fallbackStatus) == "" {
		fallbackStatus = DefaultOrderStatus
	}
	if lookup == nil {
		lookup = StaticOrderStatus(fallbackStatus)
	}
	d := &Dispatcher{
		rules:          make(map[string]Rule),
		logger:         logger,
		metrics:        m,
		fallbackStatus: fallbackStatus,
		lookupTimeout:  defaultLookupTimeout,
	}
	d.Register(persona.IntentCheckStatus, d.checkStatusRule(lookup))
	d.Register(persona.IntentOrderPlacement, d.orderPlacementRule)
	d.Register(persona.IntentPlaceOrder, d.orderPlacementRule)
	return d
}

// Register adds or replaces the rule for intent. Call it during wiring only;
// Dispatch does not lock the table.
func (d *Dispatcher) Register(intent string, rule Rule) {
	intent = strings.ToUpper(strings.TrimSpace(intent))
	if intent == "" || rule == nil {
		return
	}
	d.rules[intent] = rule
}

// Dispatch runs the rule for reply.Intent, if any. Rule failures are logged
// and yield no fields.
func (d *Dispatcher) Dispatch(ctx context.Context, reply StructuredReply) Fields {
	rule, ok := d.rules[strings.ToUpper(strings.TrimSpace(reply.Intent))]
	if !ok {
		return nil
	}
	fields, err := rule(ctx, reply)
	if err != nil {
		d.logger.Warn("intent rule failed", "intent", reply.Intent, "error", err)
		return nil
	}
	for key := range fields {
		if _, reserved := reservedFields[key]; reserved {
			d.logger.Warn("intent rule tried to set a reserved field", "intent", reply.Intent, "field", key)
			delete(fields, key)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// orderRefPattern finds an order number the model echoed back, e.g.
// "pedido #10482" or "order 10482".
var orderRefPattern = regexp.MustCompile(`(?i)\b(?:pedido|orden|order)\b\s*(?:n[uú]mero|no\.?|number)?\s*#?\s*([A-Z]{0,4}-?[0-9]{4,})|#([0-9]{4,})`)

// OrderReference extracts the first order number mentioned in text.
func OrderReference(text string) string {
	m := orderRefPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.ToUpper(m[1])
	}
	return m[2]
}

func (d *Dispatcher) checkStatusRule(lookup OrderStatusLookup) Rule {
	return func(ctx context.Context, reply StructuredReply) (Fields, error) {
		ref := OrderReference(reply.Reply)
		lookupCtx, cancel := context.WithTimeout(ctx, d.lookupTimeout)
		defer cancel()
		status, err := lookup.OrderStatus(lookupCtx, ref)
		if err != nil || strings.TrimSpace(status) == "" {
			if err != nil {
				d.logger.Warn("order status lookup failed", "order_ref", ref, "error", err)
			}
			status = d.fallbackStatus
		}
		return Fields{StatusField: status}, nil
	}
}

func (d *Dispatcher) orderPlacementRule(_ context.Context, reply StructuredReply) (Fields, error) {
	d.metrics.ObserveOrderIntent()
	d.logger.Info("order placement intent", "intent", reply.Intent)
	return nil, nil
}

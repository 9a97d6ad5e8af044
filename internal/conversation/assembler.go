package conversation

import (
	"strings"

	"github.com/wolfman30/commerce-chat/internal/persona"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

// ChatRequest is the body of POST /chat. History takes precedence when both
// fields are present.
type ChatRequest struct {
	Question *string `json:"question,omitempty"`
	History  []Turn  `json:"history,omitempty"`
}

// Mode reports which assembly mode a request selects.
type Mode string

const (
	ModeQuestion Mode = "question"
	ModeHistory  Mode = "history"
)

// Assembler builds backend payloads from the persona and the caller's turns.
type Assembler struct {
	persona *persona.Config
	logger  *logging.Logger
	trace   bool
}

// NewAssembler creates an assembler. When trace is true, payload shapes
// (never contents) are logged at debug level.
func NewAssembler(p *persona.Config, logger *logging.Logger, trace bool) *Assembler {
	if p == nil {
		p = persona.Default()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Assembler{persona: p, logger: logger, trace: trace}
}

// Assemble selects the mode and builds the request sent to the backend.
func (a *Assembler) Assemble(req ChatRequest) (LLMRequest, Mode, error) {
	switch {
	case req.History != nil:
		out, err := a.assembleHistory(req.History)
		return out, ModeHistory, err
	case req.Question != nil:
		out, err := a.assembleQuestion(*req.Question)
		return out, ModeQuestion, err
	default:
		return LLMRequest{}, "", ErrMissingInput
	}
}

func (a *Assembler) assembleQuestion(question string) (LLMRequest, error) {
	if strings.TrimSpace(question) == "" {
		return LLMRequest{}, ErrEmptyQuestion
	}
	text := a.persona.Instruction() + a.persona.Separator() + strings.TrimSpace(question)
	out := LLMRequest{
		Turns:      []Turn{UserText(text)},
		JSONOutput: true,
	}
	a.traceShape(ModeQuestion, out)
	return out, nil
}

func (a *Assembler) assembleHistory(history []Turn) (LLMRequest, error) {
	if len(history) == 0 {
		return LLMRequest{}, ErrEmptyHistory
	}
	for _, turn := range history {
		if err := turn.Validate(); err != nil {
			return LLMRequest{}, err
		}
	}
	turns := make([]Turn, len(history))
	copy(turns, history)
	out := LLMRequest{
		System:     []string{a.persona.Instruction()},
		Turns:      turns,
		JSONOutput: true,
	}
	a.traceShape(ModeHistory, out)
	return out, nil
}

func (a *Assembler) traceShape(mode Mode, req LLMRequest) {
	if !a.trace {
		return
	}
	parts, media := 0, 0
	for _, t := range req.Turns {
		parts += len(t.Parts)
		for _, p := range t.Parts {
			if _, ok := p.(InlineMediaPart); ok {
				media++
			}
		}
	}
	a.logger.Debug("chat payload assembled",
		"mode", string(mode),
		"turns", len(req.Turns),
		"parts", parts,
		"media_parts", media,
	)
}

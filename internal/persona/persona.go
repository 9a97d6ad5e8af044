// Package persona holds the process-wide assistant persona: the business
// ruleset sent to the language backend and the intent vocabulary it may emit.
package persona

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Intent labels of the built-in vocabulary.
const (
	IntentGreeting       = "GREETING"
	IntentProductInquiry = "PRODUCT_INQUIRY"
	IntentOrderPlacement = "ORDER_PLACEMENT"
	IntentDesignDetails  = "DESIGN_DETAILS"
	IntentShippingQuote  = "SHIPPING_QUOTE"
	IntentCheckStatus    = "CHECK_STATUS"
	IntentThanksGoodbye  = "THANKS_GOODBYE"

	// IntentPlaceOrder is the label older persona revisions used for ORDER_PLACEMENT.
	IntentPlaceOrder = "PLACE_ORDER"

	// UnknownIntent is substituted when the model omits the intent field.
	UnknownIntent = "unknown"
)

// File is the YAML shape of a persona file. Empty fields inherit the built-in default.
type File struct {
	Name           string            `yaml:"name"`
	Instruction    string            `yaml:"instruction"`
	Separator      string            `yaml:"separator"`
	Intents        []string          `yaml:"intents"`
	DefaultIntent  string            `yaml:"default_intent"`
	FallbackReply  string            `yaml:"fallback_reply"`
	DegradedAnswer string            `yaml:"degraded_answer"`
	Overrides      map[string]string `yaml:"overrides"`
}

// Config is immutable once constructed; accessors hand out copies.
type Config struct {
	name           string
	body           string
	separator      string
	intents        []string
	known          map[string]struct{}
	defaultIntent  string
	fallbackReply  string
	degradedAnswer string
	overrides      map[string]string
	instruction    string
}

// New validates f, fills blanks from Default and renders the system instruction.
func New(f File) (*Config, error) {
	def := DefaultFile()
	if strings.TrimSpace(f.Name) == "" {
		f.Name = def.Name
	}
	if strings.TrimSpace(f.Instruction) == "" {
		f.Instruction = def.Instruction
	}
	if f.Separator == "" {
		f.Separator = def.Separator
	}
	if len(f.Intents) == 0 {
		f.Intents = def.Intents
	}
	if strings.TrimSpace(f.DefaultIntent) == "" {
		f.DefaultIntent = def.DefaultIntent
	}
	if strings.TrimSpace(f.FallbackReply) == "" {
		f.FallbackReply = def.FallbackReply
	}
	if strings.TrimSpace(f.DegradedAnswer) == "" {
		f.DegradedAnswer = def.DegradedAnswer
	}

	cfg := &Config{
		name:           strings.TrimSpace(f.Name),
		body:           strings.TrimSpace(f.Instruction),
		separator:      f.Separator,
		known:          make(map[string]struct{}, len(f.Intents)),
		defaultIntent:  strings.TrimSpace(f.DefaultIntent),
		fallbackReply:  strings.TrimSpace(f.FallbackReply),
		degradedAnswer: strings.TrimSpace(f.DegradedAnswer),
		overrides:      make(map[string]string, len(f.Overrides)),
	}
	for _, intent := range f.Intents {
		intent = strings.ToUpper(strings.TrimSpace(intent))
		if intent == "" {
			continue
		}
		if _, dup := cfg.known[intent]; dup {
			continue
		}
		cfg.known[intent] = struct{}{}
		cfg.intents = append(cfg.intents, intent)
	}
	if len(cfg.intents) == 0 {
		return nil, errors.New("persona: intent vocabulary is empty")
	}
	for intent, text := range f.Overrides {
		intent = strings.ToUpper(strings.TrimSpace(intent))
		if _, ok := cfg.known[intent]; !ok {
			return nil, fmt.Errorf("persona: override for undeclared intent %q", intent)
		}
		cfg.overrides[intent] = strings.TrimSpace(text)
	}
	cfg.instruction = cfg.render()
	return cfg, nil
}

// Default returns the built-in persona.
func Default() *Config {
	cfg, err := New(DefaultFile())
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadFile reads a YAML persona file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("persona: parse %s: %w", path, err)
	}
	return New(f)
}

// Load returns the persona from path, or the built-in one when path is empty.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

func (c *Config) Name() string           { return c.name }
func (c *Config) Separator() string      { return c.separator }
func (c *Config) DefaultIntent() string  { return c.defaultIntent }
func (c *Config) FallbackReply() string  { return c.fallbackReply }
func (c *Config) DegradedAnswer() string { return c.degradedAnswer }

// Instruction is the full system text: persona body, intent vocabulary,
// output contract and fixed-text overrides.
func (c *Config) Instruction() string { return c.instruction }

// Intents returns the declared vocabulary in declaration order.
func (c *Config) Intents() []string {
	out := make([]string, len(c.intents))
	copy(out, c.intents)
	return out
}

// KnowsIntent reports whether intent belongs to the declared vocabulary.
func (c *Config) KnowsIntent(intent string) bool {
	_, ok := c.known[intent]
	return ok
}

// Override returns the fixed reply text configured for intent, if any.
func (c *Config) Override(intent string) (string, bool) {
	text, ok := c.overrides[intent]
	return text, ok
}

func (c *Config) render() string {
	var b strings.Builder
	b.WriteString(c.body)
	b.WriteString("\n\nINTENCIONES PERMITIDAS: ")
	b.WriteString(strings.Join(c.intents, ", "))
	b.WriteString("\n\nFORMATO DE RESPUESTA: responde SIEMPRE con un único objeto JSON, sin texto adicional, con la forma ")
	b.WriteString(`{"intent": "<una de las intenciones permitidas>", "reply": "<tu respuesta al cliente>"}`)
	b.WriteString(".")
	if len(c.overrides) > 0 {
		keys := make([]string, 0, len(c.overrides))
		for k := range c.overrides {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n\nRESPUESTAS FIJAS: cuando la intención sea una de las siguientes, el campo reply debe ser exactamente el texto indicado.")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n- %s: %q", k, c.overrides[k])
		}
	}
	return b.String()
}

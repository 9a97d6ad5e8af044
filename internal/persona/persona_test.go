package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPersona(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Tinta", cfg.Name())
	assert.Equal(t, UnknownIntent, cfg.DefaultIntent())
	assert.NotEmpty(t, cfg.FallbackReply())
	assert.NotEmpty(t, cfg.DegradedAnswer())
	assert.True(t, cfg.KnowsIntent(IntentCheckStatus))
	assert.False(t, cfg.KnowsIntent(IntentPlaceOrder))

	instruction := cfg.Instruction()
	for _, intent := range cfg.Intents() {
		assert.Contains(t, instruction, intent)
	}
	assert.Contains(t, instruction, `"intent"`)
	assert.Contains(t, instruction, `"reply"`)
	assert.NotContains(t, instruction, "RESPUESTAS FIJAS")
}

func TestIntentsReturnsCopy(t *testing.T) {
	cfg := Default()
	intents := cfg.Intents()
	intents[0] = "MUTATED"

	assert.Equal(t, IntentGreeting, cfg.Intents()[0])
}

func TestNewNormalizesVocabulary(t *testing.T) {
	cfg, err := New(File{Intents: []string{" greeting ", "GREETING", "", "place_order"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"GREETING", "PLACE_ORDER"}, cfg.Intents())
	assert.Equal(t, DefaultFile().Separator, cfg.Separator())
}

func TestNewRejectsUndeclaredOverride(t *testing.T) {
	_, err := New(File{
		Intents:   []string{IntentGreeting},
		Overrides: map[string]string{"PROMO": "2x1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROMO")
}

func TestOverridesRenderIntoInstruction(t *testing.T) {
	cfg, err := New(File{
		Intents:   []string{IntentGreeting, IntentProductInquiry},
		Overrides: map[string]string{"product_inquiry": "Esta semana todas las tazas están al 2x1."},
	})
	require.NoError(t, err)

	text, ok := cfg.Override(IntentProductInquiry)
	require.True(t, ok)
	assert.Equal(t, "Esta semana todas las tazas están al 2x1.", text)
	assert.Contains(t, cfg.Instruction(), "RESPUESTAS FIJAS")
	assert.Contains(t, cfg.Instruction(), "2x1")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persona.yaml")
	yamlBody := strings.Join([]string{
		"name: Lupita",
		"instruction: Eres Lupita, vendes sudaderas.",
		"intents: [GREETING, PLACE_ORDER, CHECK_STATUS]",
		"degraded_answer: Vuelve más tarde.",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Lupita", cfg.Name())
	assert.Equal(t, "Vuelve más tarde.", cfg.DegradedAnswer())
	assert.Equal(t, DefaultFile().FallbackReply, cfg.FallbackReply())
	assert.True(t, cfg.KnowsIntent(IntentPlaceOrder))
	assert.True(t, strings.HasPrefix(cfg.Instruction(), "Eres Lupita"))
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Instruction(), cfg.Instruction())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

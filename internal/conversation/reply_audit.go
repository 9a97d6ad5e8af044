package conversation

import (
	"regexp"
	"strings"
)

type leakPattern struct {
	re     *regexp.Regexp
	reason string
}

// replyLeakPatterns flag replies that disclose the persona ruleset or
// infrastructure details. Matches are reported, never rewritten.
var replyLeakPatterns = []leakPattern{
	{regexp.MustCompile(`(?i)(mis|my) (instrucciones|instructions|reglas|rules)\s+(son|dicen|are|say)`), "leak:instructions_disclosure"},
	{regexp.MustCompile(`(?i)(system prompt|prompt del sistema|INTENCIONES PERMITIDAS|FORMATO DE RESPUESTA)`), "leak:system_prompt"},
	{regexp.MustCompile(`(?i)(powered by|basad[oa] en|running on)\s+(Gemini|GPT|OpenAI|Claude|Bedrock)`), "leak:tech_stack"},
	{regexp.MustCompile(`(?i)(api[_\s]?key|secret[_\s]?key|access[_\s]?token|bearer\s+token)\s*[:=]\s*\S+`), "leak:credential"},
	{regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`), "leak:google_api_key"},
	{regexp.MustCompile(`AKIA[A-Z0-9]{16}`), "leak:aws_key"},
	{regexp.MustCompile(`(?i)(postgres|mysql|redis|mongodb)://\S+`), "leak:database_url"},
}

// AuditReply returns the leak signals that fire on reply.
func AuditReply(reply string) []string {
	if strings.TrimSpace(reply) == "" {
		return nil
	}
	var reasons []string
	for _, p := range replyLeakPatterns {
		if p.re.MatchString(reply) {
			reasons = append(reasons, p.reason)
		}
	}
	return reasons
}

package pipeline

import (
	"strings"

	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
	"github.com/qainatsaeed/BlackBox-LLM/internal/retrieval"
)

// Fixed answer for queries that retrieved nothing inside the requester's
// scope. Returned without consulting a model.
const NoDataAnswer = "I don't have access to information relevant to your query."

const defaultTemplate = `You are an operations assistant. Answer the question using only the evidence below. If the evidence does not contain the answer, say so.

Evidence:
{context}

Question: {query}`

// Role preambles remind the model who is asking. Access control happened
// before prompt composition, this only sets tone and framing.
var rolePreambles = map[policy.Role]string{
	policy.RoleEmployee:   "The requester is an employee asking about their own records.",
	policy.RoleSupervisor: "The requester is a supervisor asking about their team.",
	policy.RoleManager:    "The requester is a manager asking about their locations.",
	policy.RoleAdmin:      "The requester is an administrator.",
}

// BuildPrompt renders the model template with the grounding evidence and the
// question. Deterministic: same inputs, same prompt.
func BuildPrompt(template string, role policy.Role, grounding *retrieval.GroundingContext, query string) string {
	if template == "" {
		template = defaultTemplate
	}

	contextBlock := grounding.Render()
	if contextBlock == "" {
		contextBlock = "No relevant records were found."
	}

	prompt := strings.ReplaceAll(template, "{context}", contextBlock)
	prompt = strings.ReplaceAll(prompt, "{query}", query)

	if preamble, ok := rolePreambles[role]; ok {
		prompt = preamble + "\n\n" + prompt
	}
	return prompt
}

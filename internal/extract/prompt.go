package extract

import "fmt"

// systemPrompt anchors the model's role for every extraction request.
const systemPrompt = "You are a helpful assistant specialized in code analysis " +
	"and control-flow visualization, outputting only valid JSON."

// promptTemplate is the fixed instruction prompt. It requests a single JSON
// object carrying the node list, edge list, and a prose explanation, and spells
// out the structural rules the validator will enforce so well-behaved models
// produce accepted output on the first attempt.
const promptTemplate = `Analyze the following code and break it down into a detailed, step-by-step flowchart representation plus a short explanation for a student.

Your output MUST be a single JSON object with this structure:
  "nodes": a list of flowchart nodes, each with:
    - "id": a unique short identifier (e.g. "S1", "C2", "L3")
    - "kind": one of "start", "end", "process", "decision", "loop", "call", "return"
    - "label": a concise, descriptive label for the step (e.g. "Check n <= 1", "Loop: for i in range(N)", "Return result")
  "edges": a list of transitions, each with:
    - "from_id": the id of the source node
    - "to_id": the id of the target node
    - "condition_label": optional short label (e.g. "true", "false", "next iteration")
  "explanation": a concise prose explanation of what the code does and why, in plain language.

Structural rules:
- Exactly one node has kind "start".
- Every from_id and to_id must reference a declared node id.
- Every "decision" node has exactly two outgoing edges whose condition_label values are distinct and non-empty (e.g. "true" and "false").
- Loops show the flow returning to the loop condition; a "loop" node may have two outgoing edges (continue and exit).
- Function calls use kind "call"; return statements use kind "return".

IMPORTANT: Output ONLY the JSON object. No additional text, explanations, or markdown outside the JSON.

Example for a simple factorial function:
{
  "nodes": [
    {"id": "A", "kind": "start", "label": "Start: factorial(n)"},
    {"id": "B", "kind": "decision", "label": "Check if n <= 1"},
    {"id": "C", "kind": "return", "label": "Return 1 (base case)"},
    {"id": "D", "kind": "call", "label": "Recursive call: factorial(n-1)"},
    {"id": "E", "kind": "process", "label": "Multiply n * result"},
    {"id": "F", "kind": "return", "label": "Return final result"},
    {"id": "G", "kind": "end", "label": "End"}
  ],
  "edges": [
    {"from_id": "A", "to_id": "B"},
    {"from_id": "B", "to_id": "C", "condition_label": "true"},
    {"from_id": "B", "to_id": "D", "condition_label": "false"},
    {"from_id": "C", "to_id": "G"},
    {"from_id": "D", "to_id": "E"},
    {"from_id": "E", "to_id": "F"},
    {"from_id": "F", "to_id": "G"}
  ],
  "explanation": "This function computes the factorial of n recursively..."
}

Here is the code:
%s
`

// BuildPrompt embeds the pasted source into the fixed instruction prompt.
func BuildPrompt(source string) string {
	return fmt.Sprintf(promptTemplate, "```\n"+source+"\n```")
}

package panel

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/flowlens/flowlens/pkg/schema"
)

// toJSON marshals a value to indented JSON for template rendering.
func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// timeAgo returns a human-readable relative time string.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncate shortens a string to max length, appending "..." if truncated.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// kindBadge returns a CSS class name for a node kind.
func kindBadge(kind schema.NodeKind) string {
	switch kind {
	case schema.NodeKindStart:
		return "badge-start"
	case schema.NodeKindEnd, schema.NodeKindReturn:
		return "badge-terminal"
	case schema.NodeKindDecision, schema.NodeKindLoop:
		return "badge-branch"
	case schema.NodeKindCall:
		return "badge-call"
	default:
		return "badge-process"
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFlowError maps a pipeline error to an HTTP status and a user-facing
// message; raw parse traces never reach the client.
func writeFlowError(w http.ResponseWriter, err error) {
	code := schema.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case schema.ErrCodeEmptyInput:
		status = http.StatusBadRequest
	case schema.ErrCodeNotFound:
		status = http.StatusNotFound
	case schema.ErrCodeUpstream:
		status = http.StatusBadGateway
	case schema.ErrCodeMalformedResponse, schema.ErrCodeSchemaValidation:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{
		"error": schema.UserMessage(err),
		"code":  code,
	})
}

// queryInt extracts an integer query param with a default value.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

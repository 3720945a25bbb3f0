package extract

import "strings"

// LocateJSON finds the candidate JSON object span inside a raw model response.
// Models frequently wrap the object in prose or markdown code fences, so the
// locator runs before any parsing: a fenced block containing an object wins,
// otherwise the span from the first '{' to the last '}' is used.
// Returns ok=false when the response contains no object-like span at all.
func LocateJSON(raw string) (string, bool) {
	if span, ok := locateFenced(raw); ok {
		return span, true
	}
	return locateBraced(raw)
}

// locateFenced scans markdown code fences and returns the first fenced body
// that looks like a JSON object.
func locateFenced(raw string) (string, bool) {
	rest := raw
	for {
		open := strings.Index(rest, "```")
		if open < 0 {
			return "", false
		}
		body := rest[open+3:]
		// Skip the info string ("json", "JSON", or empty) up to the newline.
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		closing := strings.Index(body, "```")
		if closing < 0 {
			return "", false
		}
		candidate := strings.TrimSpace(body[:closing])
		if strings.HasPrefix(candidate, "{") {
			return candidate, true
		}
		rest = body[closing+3:]
	}
}

// locateBraced returns the span from the first '{' to the last '}'.
func locateBraced(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

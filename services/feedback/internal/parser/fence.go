package parser

import "strings"

const fenceMarker = "```"

// fence is one fenced block found in a reply.
type fence struct {
	label string
	body  string
}

// scanFences returns the terminated fenced blocks of s in order of
// appearance. Scanning stops at the first opening marker without a matching
// closing marker, so an unterminated fence is treated as absent.
func scanFences(s string) []fence {
	var out []fence
	rest := s
	for {
		open := strings.Index(rest, fenceMarker)
		if open < 0 {
			return out
		}
		after := rest[open+len(fenceMarker):]

		closeAt := strings.Index(after, fenceMarker)
		if closeAt < 0 {
			return out
		}

		var f fence
		if nl := strings.IndexByte(after, '\n'); nl >= 0 && nl < closeAt {
			// Info string runs to the end of the opening line.
			f.label = strings.TrimSpace(after[:nl])
			f.body = after[nl+1 : closeAt]
		} else {
			// Single-line block such as ```json {"a":1}```.
			f.body = after[:closeAt]
			if len(f.body) >= 4 && strings.EqualFold(f.body[:4], "json") {
				f.label, f.body = f.body[:4], f.body[4:]
			}
		}
		f.body = strings.TrimSpace(f.body)
		out = append(out, f)

		rest = after[closeAt+len(fenceMarker):]
	}
}

// extractPayload picks the text to decode: the first block labeled json,
// else the first fenced block of any label, else the whole trimmed reply.
func extractPayload(reply string) string {
	fences := scanFences(reply)
	for _, f := range fences {
		if strings.EqualFold(f.label, "json") {
			return f.body
		}
	}
	if len(fences) > 0 {
		return fences[0].body
	}
	return strings.TrimSpace(reply)
}

package orders

import (
	"encoding/json"
	"strings"
)

// ExtractRequest accepts either a bare string body or a JSON wrapper
// carrying the note under one of the accepted property names.
type ExtractRequest struct {
	Note          string `json:"note,omitempty"`
	Content       string `json:"content,omitempty"`
	Text          string `json:"text,omitempty"`
	PhysicianNote string `json:"physician_note,omitempty"`
}

// RawNote returns the first populated wrapper property.
func (r ExtractRequest) RawNote() string {
	for _, candidate := range []string{r.Note, r.Content, r.Text, r.PhysicianNote} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// UnwrapNote decodes body as the JSON wrapper when possible, otherwise
// treats the whole body as raw note text.
func UnwrapNote(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var req ExtractRequest
		if err := json.Unmarshal(body, &req); err == nil {
			if note := req.RawNote(); note != "" {
				return note
			}
		}
	}
	return trimmed
}

package scanning

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoText is returned when a scanner could not read anything
var ErrNoText = errors.New("no text recognized")

type transcription struct {
	Text string `json:"text"`
}

// parseTranscription pulls the transcribed text out of a model response.
// Models are asked for {"text": "..."} but sometimes answer in a code block
// or with the bare transcription, so both are accepted.
func parseTranscription(response string) (string, error) {
	text := stripCodeFence(response)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		var t transcription
		if err := json.Unmarshal([]byte(text[start:end+1]), &t); err == nil {
			text = t.Text
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

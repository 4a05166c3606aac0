package interview

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Entry is one normalized transcript line.
type Entry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

const (
	SpeakerAI      = "ai"
	SpeakerUser    = "user"
	SpeakerUnknown = "unknown"
)

var (
	embeddedJSONRe = regexp.MustCompile(`\{.*\}`)
	messageFieldRe = regexp.MustCompile(`message[":]*\s*["']?(.*?)["']?[,}]`)
	sourceFieldRe  = regexp.MustCompile(`source[":]*\s*["']?(.*?)["']?[,}]`)
	sanitizeRe     = regexp.MustCompile(`[{}"\[\]]`)
	prefixRe       = regexp.MustCompile(`source:.*?,message:`)
)

// NormalizeSpeaker folds the known speaker synonyms. Values outside the
// known sets pass through unchanged.
func NormalizeSpeaker(speaker string) string {
	switch strings.ToLower(speaker) {
	case "ai", "assistant", "interviewer":
		return SpeakerAI
	case "user", "candidate", "human":
		return SpeakerUser
	default:
		return speaker
	}
}

// FormatLine produces the canonical transcript line for one utterance.
func FormatLine(source, text string) string {
	line, _ := json.Marshal(map[string]string{"source": source, "message": text})
	return string(line)
}

// Normalize converts a newline-delimited log of raw agent payloads into
// ordered (speaker, text) entries. It is a best-effort, lossy heuristic, not
// a guaranteed-correct parser: unparseable lines fall back to regex field
// extraction and finally to position parity (even line index speaks for the
// AI), which mis-attributes out-of-order or repeated-speaker transcripts.
// It never fails, output order equals input line order, and identical input
// always yields identical output.
func Normalize(raw string) []Entry {
	if raw == "" {
		return []Entry{}
	}

	lines := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		entries = append(entries, normalizeLine(line, i))
	}
	return entries
}

func normalizeLine(line string, index int) Entry {
	// Step 1: strict JSON, then the first {...} substring.
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		obj = nil
		if match := embeddedJSONRe.FindString(line); match != "" {
			if err := json.Unmarshal([]byte(match), &obj); err != nil {
				obj = nil
			}
		}
	}

	// Step 2: structured payload with varying field names.
	if obj != nil {
		speaker := stringField(obj, "source")
		if speaker == "" {
			speaker = stringField(obj, "role")
		}
		if speaker == "" {
			speaker = SpeakerUnknown
		}
		text := stringField(obj, "message")
		if text == "" {
			text = stringField(obj, "text")
		}
		if text == "" {
			text = stringField(obj, "content")
		}
		return Entry{Speaker: NormalizeSpeaker(speaker), Text: text}
	}

	// Step 3: regex extraction from the raw text.
	messageMatch := messageFieldRe.FindStringSubmatch(line)
	sourceMatch := sourceFieldRe.FindStringSubmatch(line)
	if messageMatch != nil || sourceMatch != nil {
		speaker := paritySpeaker(index)
		if sourceMatch != nil {
			speaker = strings.ToLower(strings.TrimSpace(sourceMatch[1]))
		}
		text := line
		if messageMatch != nil {
			text = strings.TrimSpace(messageMatch[1])
		}
		return Entry{Speaker: NormalizeSpeaker(speaker), Text: text}
	}

	// Step 4: sanitize and guess the speaker from position parity.
	text := sanitizeRe.ReplaceAllString(line, "")
	text = prefixRe.ReplaceAllString(text, "")
	return Entry{Speaker: paritySpeaker(index), Text: strings.TrimSpace(text)}
}

func paritySpeaker(index int) string {
	if index%2 == 0 {
		return SpeakerAI
	}
	return SpeakerUser
}

func stringField(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

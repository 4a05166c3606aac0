package interview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpeaker(t *testing.T) {
	assert.Equal(t, SpeakerAI, NormalizeSpeaker("ai"))
	assert.Equal(t, SpeakerAI, NormalizeSpeaker("Assistant"))
	assert.Equal(t, SpeakerAI, NormalizeSpeaker("INTERVIEWER"))
	assert.Equal(t, SpeakerUser, NormalizeSpeaker("user"))
	assert.Equal(t, SpeakerUser, NormalizeSpeaker("Candidate"))
	assert.Equal(t, SpeakerUser, NormalizeSpeaker("human"))
	assert.Equal(t, "narrator", NormalizeSpeaker("narrator"))
}

func TestFormatLine(t *testing.T) {
	line := FormatLine("ai", "Hello there")
	assert.JSONEq(t, `{"source":"ai","message":"Hello there"}`, line)
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(""))
}

func TestNormalize_StrictJSONLines(t *testing.T) {
	raw := FormatLine("ai", "Tell me about yourself.") + "\n" +
		FormatLine("user", "I build backend services.")

	entries := Normalize(raw)
	assert.Len(t, entries, 2)
	assert.Equal(t, Entry{Speaker: "ai", Text: "Tell me about yourself."}, entries[0])
	assert.Equal(t, Entry{Speaker: "user", Text: "I build backend services."}, entries[1])
}

func TestNormalize_AlternateFieldNames(t *testing.T) {
	raw := `{"role":"assistant","text":"First question"}` + "\n" +
		`{"source":"candidate","content":"My answer"}`

	entries := Normalize(raw)
	assert.Len(t, entries, 2)
	assert.Equal(t, "ai", entries[0].Speaker)
	assert.Equal(t, "First question", entries[0].Text)
	assert.Equal(t, "user", entries[1].Speaker)
	assert.Equal(t, "My answer", entries[1].Text)
}

func TestNormalize_EmbeddedJSON(t *testing.T) {
	raw := `received payload {"source":"ai","message":"Welcome"} at 10:01`

	entries := Normalize(raw)
	assert.Len(t, entries, 1)
	assert.Equal(t, "ai", entries[0].Speaker)
	assert.Equal(t, "Welcome", entries[0].Text)
}

func TestNormalize_MissingFieldsInJSON(t *testing.T) {
	entries := Normalize(`{"message":"no speaker recorded"}`)
	assert.Len(t, entries, 1)
	assert.Equal(t, SpeakerUnknown, entries[0].Speaker)
	assert.Equal(t, "no speaker recorded", entries[0].Text)
}

func TestNormalize_RegexFallback(t *testing.T) {
	raw := `source: ai, message: "How are you?",`

	entries := Normalize(raw)
	assert.Len(t, entries, 1)
	assert.Equal(t, "ai", entries[0].Speaker)
	assert.Equal(t, "How are you?", entries[0].Text)
}

func TestNormalize_PlainTextParity(t *testing.T) {
	raw := "Hello candidate\nHello interviewer\nNext question"

	entries := Normalize(raw)
	assert.Len(t, entries, 3)
	assert.Equal(t, "ai", entries[0].Speaker)
	assert.Equal(t, "user", entries[1].Speaker)
	assert.Equal(t, "ai", entries[2].Speaker)
	assert.Equal(t, "Hello candidate", entries[0].Text)
}

func TestNormalize_BlankLinesSkipped(t *testing.T) {
	raw := "\n\nfirst line\n\n  \nsecond line\n"

	entries := Normalize(raw)
	assert.Len(t, entries, 2)
	// Parity counts surviving lines, not raw line numbers.
	assert.Equal(t, "ai", entries[0].Speaker)
	assert.Equal(t, "user", entries[1].Speaker)
}

func TestNormalize_SanitizeStripsStructuralCharacters(t *testing.T) {
	entries := Normalize(`weird [data] with "quotes" inside`)
	assert.Len(t, entries, 1)
	assert.Equal(t, "weird data with quotes inside", entries[0].Text)
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := FormatLine("ai", "Q1") + "\nplain answer\n" + `source: user, message: bye,`

	first := Normalize(raw)
	second := Normalize(raw)
	assert.Equal(t, first, second)
}

func TestNormalize_OrderPreserved(t *testing.T) {
	var lines []string
	for _, text := range []string{"one", "two", "three", "four"} {
		lines = append(lines, FormatLine("user", text))
	}

	entries := Normalize(strings.Join(lines, "\n"))
	assert.Len(t, entries, 4)
	assert.Equal(t, "one", entries[0].Text)
	assert.Equal(t, "two", entries[1].Text)
	assert.Equal(t, "three", entries[2].Text)
	assert.Equal(t, "four", entries[3].Text)
}

package utils

import (
	"baliance.com/gooxml/document"

	"clutchjobs/interview"
)

// GenerateTranscriptDoc writes a normalized interview transcript to a Word
// document for employer review.
func GenerateTranscriptDoc(jobTitle, candidateName string, entries []interview.Entry, filepath string) error {
	doc := document.New()

	title := doc.AddParagraph().AddRun()
	title.Properties().SetBold(true)
	title.AddText("Screening Interview Transcript")

	meta := doc.AddParagraph().AddRun()
	meta.AddText("Position: " + jobTitle)
	if candidateName != "" {
		meta.AddBreak()
		meta.AddText("Candidate: " + candidateName)
	}

	doc.AddParagraph()

	for _, entry := range entries {
		speaker := "Unknown"
		switch entry.Speaker {
		case interview.SpeakerAI:
			speaker = "AI Interviewer"
		case interview.SpeakerUser:
			speaker = "Candidate"
		}

		p := doc.AddParagraph()
		label := p.AddRun()
		label.Properties().SetBold(true)
		label.AddText(speaker + ": ")
		p.AddRun().AddText(entry.Text)
	}

	return doc.SaveToFile(filepath)
}

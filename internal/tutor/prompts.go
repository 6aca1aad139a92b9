package tutor

import (
	"fmt"

	"github.com/abhisek/lessonbuddy/internal/llm"
)

const systemPrompt = "You are a patient, encouraging tutor for beginners. Prefer plain language and short examples."

func chatPrompt(message string) llm.Request {
	return llm.UserPrompt(systemPrompt, message)
}

func lessonPrompt(topic string) llm.Request {
	return llm.UserPrompt(systemPrompt, fmt.Sprintf(
		"Generate a detailed, beginner-friendly lesson on the topic: %s. "+
			"The lesson should be well-structured with clear explanations, headings, and bullet points.",
		topic))
}

func notesPrompt(text string) llm.Request {
	return llm.UserPrompt(systemPrompt,
		"Create a concise set of revision notes in bullet points for the following lesson:\n\n"+text)
}

func assessmentPrompt(text string, questions, choices int) llm.Request {
	return llm.UserPrompt(systemPrompt, fmt.Sprintf(
		`Based on the following lesson, generate a JSON object for a multiple-choice assessment with exactly %d questions.
Each question must have an array of %d options and a field indicating the correct answer's text.
The answer must be copied exactly from one of the options, and options within a question must be distinct.
The JSON output should strictly follow this format: {"questions": [{"question": "...", "options": ["..."], "answer": "..."}]}

Lesson content:
%s`, questions, choices, text))
}

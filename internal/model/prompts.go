package model

import (
	"fmt"
	"strings"
)

const titlePromptTemplate = `You are a movie recommendation expert. Based on the user's mood and feelings, suggest a specific movie or documentary title that would be perfect for them.

User's mood/feeling: "%s"
%s
Respond with ONLY the movie title (just the name, nothing else). Make sure it's a real, well-known movie or documentary.`

const explanationPromptTemplate = `You are a movie recommendation expert. Briefly explain in 2-3 sentences why the movie "%s" would be perfect for someone who is feeling: "%s"

Keep it concise and engaging.`

// TitlePrompt renders the title request. The genre line is omitted when
// genre is empty.
func TitlePrompt(mood, genre string) string {
	genreLine := ""
	if g := strings.TrimSpace(genre); g != "" {
		genreLine = "Preferred genre: " + g + "\n"
	}
	return fmt.Sprintf(titlePromptTemplate, mood, genreLine)
}

func ExplanationPrompt(title, mood string) string {
	return fmt.Sprintf(explanationPromptTemplate, title, mood)
}

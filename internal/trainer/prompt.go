package trainer

import "strings"

// DefaultSystemPrompt asks the model for the labelled lines the feedback
// extractor understands.
const DefaultSystemPrompt = `You are a verbal communication coach. Review what the user said or wrote and reply in plain text, without Markdown, using exactly these labelled lines:
Clarity Score: <0-10>/10
Tone Score: <0-10>/10
Engagement Score: <0-10>/10
Strengths: <one strength per line, each line starting with "Strength:">
Improvements: <one suggestion per line, each line starting with "Improvement:">
Overall: <one or two sentences summarising the response>
Keep the feedback specific, constructive and encouraging.`

// BuildPrompt renders the user message sent to the model for one round.
func BuildPrompt(m Module, topic, input string) string {
	if !m.Training() {
		return "Provide structured feedback (clarity, tone, engagement scores out of 10) on my verbal clarity: " + input
	}
	var b strings.Builder
	if topic = strings.TrimSpace(topic); topic != "" {
		b.WriteString("Topic: " + topic + "\n\n")
	}
	b.WriteString("Analyze the following response and provide structured feedback (clarity, tone, engagement scores out of 10) on its clarity, structure, engagement, and effectiveness:\n\n")
	b.WriteString(input)
	return b.String()
}

package assistant

import (
	"fmt"
	"strings"
)

const (
	// OfflineReply is returned by Chat when no API key is configured.
	OfflineReply = "I am currently offline. Please try again later."
	// ErrorReply is returned by Chat when the model call fails.
	ErrorReply = "I encountered an error processing your request."

	chatHistoryLimit = 5
)

// FallbackActionPlan is the templated plan used whenever the model cannot
// draft one.
func FallbackActionPlan(description, category string) ActionPlan {
	return ActionPlan{
		WhatsApp:     fmt.Sprintf("Hello, I would like to report a %s issue: %s", category, description),
		EmailSubject: fmt.Sprintf("Complaint regarding %s", category),
		EmailBody: fmt.Sprintf(
			"Respected Authority,\n\nI am writing to bring to your attention a %s issue: %s.\n\nPlease take necessary action.\n\nSincerely,\nCitizen",
			category, description,
		),
	}
}

// DefaultAnalysis is returned whenever issue analysis fails.
func DefaultAnalysis() Analysis {
	return Analysis{
		Category:   "General",
		Severity:   "Medium",
		Authority:  "Local Municipal Corporation",
		ActionPlan: "Document the issue with photos and file a complaint with the local municipal office.",
	}
}

func actionPlanPrompt(description, category string) string {
	return fmt.Sprintf(`You are a civic action assistant. A user has reported a civic issue.
Category: %s
Description: %s

Please generate:
1. A concise WhatsApp message (max 200 chars) that can be sent to authorities.
2. A formal but firm email subject.
3. A formal email body (max 150 words) addressed to the relevant authority (e.g., Municipal Commissioner, Police, etc. based on category).

Return the response in strictly valid JSON format with keys: "whatsapp", "email_subject", "email_body".
Do not use markdown code blocks. Just the raw JSON string.`, category, description)
}

func chatPrompt(query string, history []ChatTurn) string {
	if len(history) > chatHistoryLimit {
		history = history[len(history)-chatHistoryLimit:]
	}

	var b strings.Builder
	b.WriteString("You are VishwaGuru, a helpful civic assistant for Indian citizens.\n")
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			role := strings.TrimSpace(turn.Role)
			if role == "" {
				role = "user"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
		}
	}
	fmt.Fprintf(&b, "User Query: %s\n\n", query)
	b.WriteString(`Answer the user's question about civic issues, government services, or local administration.
If they ask about specific MLAs, tell them to use the "Find My MLA" feature.
Keep answers concise and helpful.`)
	return b.String()
}

func analysisPrompt(description string, withImage bool) string {
	subject := "the description"
	if withImage {
		subject = "the attached photo and the description"
	}
	return fmt.Sprintf(`You are a civic issue analyst for Indian municipalities. Using %s, classify the reported problem.
Description: %s

Return strictly valid JSON with keys:
"category" (one of Road, Garbage, Water, Streetlight, Flooding, Fire, Vandalism, Stray Animal, Traffic, General),
"severity" (Low, Medium, High or Critical),
"authority" (the government body responsible),
"action_plan" (one or two sentences on what the citizen should do next).
Do not use markdown code blocks.`, subject, description)
}

func representativePrompt(district, constituency, name string) string {
	return fmt.Sprintf(`In two or three sentences, describe the %s assembly constituency in %s district, Maharashtra,
and its elected MLA %s, for a citizen who wants to raise a civic complaint. Plain text only, no markdown.`,
		constituency, district, name)
}

// StripCodeFence removes a surrounding markdown code fence from a model reply.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimPrefix(text, "JSON")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

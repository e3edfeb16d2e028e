// Package assistant turns a user's allergy history and today's conditions
// into short outing tips from a generative model.
package assistant

import (
	"strconv"
	"strings"

	"github.com/breezyday/breezyday/internal/feedback"
)

// HistoryLimit is the number of recent entries included in a prompt.
const HistoryLimit = 10

// Env is today's environment as shown on the dashboard.
type Env struct {
	AQI     *float64 `json:"aqi"`
	TempMin *float64 `json:"tempMin"`
	TempMax *float64 `json:"tempMax"`
}

const promptTemplate = `You are an allergy assistant for a weather and outfit recommendation dashboard.

Your job is to give practical, concise advice about what the user should pay
attention to **when going outside today**, based on:
- Their recent allergy history
- Today's air quality and temperature

Always respond **in English only**.
Do NOT use any Chinese characters.

User history:
{{history}}

Today environment:
{{env}}

Task:
Based on the history and today's environment, give EXACTLY FIVE short
bullet-point suggestions about what the user should be careful about
when going outside today (e.g., mask, timing of going out, outdoor
activities, clothing, eye/nose protection, medicine preparation, etc.).

Each suggestion must:
- be ONE English sentence
- be specific and practical
- be suitable to show directly on a dashboard card
- not include numbering (no "1.", "2.", "First," etc.)

Output format:
Return exactly five lines.
Each line is one suggestion sentence.
Do not add any other text before or after the five lines.`

// BuildPrompt renders the model prompt. Only the first HistoryLimit entries
// are used; callers pass them newest first.
func BuildPrompt(env Env, entries []feedback.Entry) string {
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}

	var history []string
	for _, e := range entries {
		if line := historyLine(e); line != "" {
			history = append(history, line)
		}
	}
	historyBlock := "No previous feedback records."
	if len(history) > 0 {
		historyBlock = strings.Join(history, "\n")
	}

	var envLines []string
	if env.AQI != nil {
		envLines = append(envLines, "- Today AQI: "+num(*env.AQI))
	}
	if env.TempMin != nil && env.TempMax != nil {
		envLines = append(envLines, "- Today temperature range: "+num(*env.TempMin)+"°C ~ "+num(*env.TempMax)+"°C")
	}
	envBlock := "No environment info."
	if len(envLines) > 0 {
		envBlock = strings.Join(envLines, "\n")
	}

	return strings.NewReplacer("{{history}}", historyBlock, "{{env}}", envBlock).Replace(promptTemplate)
}

func historyLine(e feedback.Entry) string {
	var parts []string

	date := e.FeedbackDate
	if date == "" && !e.CreatedAt.IsZero() {
		date = e.CreatedAt.Format(feedback.DateLayout)
	}
	if date != "" {
		parts = append(parts, "Date: "+date)
	}
	if e.EnvAQI != nil {
		parts = append(parts, "AQI="+num(*e.EnvAQI))
	}
	if e.EnvMinTemp != nil && e.EnvMaxTemp != nil {
		parts = append(parts, "T="+num(*e.EnvMinTemp)+"~"+num(*e.EnvMaxTemp)+"°C")
	}
	if e.AllergyFeel != "" {
		parts = append(parts, "allergy_feel="+string(e.AllergyFeel))
	}
	if e.AllergyImpact != nil {
		parts = append(parts, "impact="+strconv.Itoa(*e.AllergyImpact)+"/10")
	}
	if len(e.AllergySymptoms) > 0 {
		parts = append(parts, "symptoms="+strings.Join(e.AllergySymptoms, ","))
	}

	if len(parts) == 0 {
		return ""
	}
	return "- " + strings.Join(parts, "; ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

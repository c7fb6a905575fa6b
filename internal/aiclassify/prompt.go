package aiclassify

import (
	"encoding/json"
	"fmt"

	"github.com/paisatrack/paisatrack/internal/model"
)

const systemInstruction = "You are a financial transaction classifier. " +
	"You MUST respond with ONLY a valid JSON array, one object per input transaction, in input order. " +
	"Each object has the shape {\"category\": string, \"platform\": string, \"payment_method\": string, \"confidence\": number between 0 and 1}. " +
	"Use an empty string when a field cannot be determined. " +
	"Do not include any explanatory text or markdown formatting. Start your response with [ and end with ]."

// requestItem is the per-row payload sent to the provider.
type requestItem struct {
	Narration string `json:"narration"`
	Amount    string `json:"amount"`
	Type      string `json:"type"`
}

// buildPrompt serializes a chunk of rows into the user prompt.
func buildPrompt(rows []model.ClassifiedRow) (string, error) {
	items := make([]requestItem, len(rows))
	for i, row := range rows {
		item := requestItem{
			Narration: row.Narration,
			Type:      string(row.Direction),
		}
		if row.Amount != nil {
			item.Amount = row.Amount.String()
		}
		items[i] = item
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt items: %w", err)
	}

	return "Classify these bank transactions:\n" + string(payload), nil
}

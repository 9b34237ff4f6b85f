package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/fitpull/fitpull/pkg/anthropic"
)

const extractionPrompt = `Extract the following metrics from this Fitbit weekly report email content:
1. Date Range (e.g., Mar. 3 - Mar. 9)
2. Number of Days Daily Step Target was Met (if available)
3. Best Day Steps Count (the highest number)
4. Total Steps that Week
5. Average Steps per Day
6. Variance in Total Steps compared to last week (number with direction)
7. Total Miles
8. Variance in Miles compared to last week (number with direction)
9. Average Daily Calorie Burn
10. Variance in Calorie Burn compared to last week (number with direction)
11. Total Active Zone Minutes
12. Variance in Active Zone Minutes compared to last week (number with direction)
13. Average Restful Sleep (in hours and minutes)
14. Variance in Restful Sleep compared to last week (in hours and minutes with direction)
15. Average Hours with 250+ Steps
16. Variance in Hours with 250+ Steps compared to last week (number with direction)
17. Average Resting Heart Rate (in bpm)
18. Variance in Resting Heart Rate compared to last week (with direction)

Format your response as a JSON object with these exact keys:
{
    "date_range": "",
    "step_target_days_met": null,
    "best_day_steps": null,
    "total_steps": null,
    "avg_steps_per_day": null,
    "steps_variance": null,
    "total_miles": null,
    "miles_variance": null,
    "avg_daily_calorie_burn": null,
    "calorie_burn_variance": null,
    "total_active_zone_minutes": null,
    "active_zone_minutes_variance": null,
    "avg_restful_sleep": "",
    "restful_sleep_variance": "",
    "avg_hours_with_250_steps": null,
    "hours_with_250_steps_variance": null,
    "avg_resting_heart_rate": null,
    "resting_heart_rate_variance": ""
}

For any metric not found in the email, set the value to null.
Only return the JSON object, nothing else.

Email content:
%s`

// parseEmail asks the model to turn one email body into the raw metric
// map. Variance values the model reports are discarded later; the store
// derives them from stored neighbors.
func (p *Pipeline) parseEmail(ctx context.Context, st *RunState, body string) (map[string]any, error) {
	resp, err := p.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: 1024,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(extractionPrompt, body)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "agent: extraction call")
	}
	st.Usage.Add(resp.Usage)

	raw := cleanJSON(resp.Text())
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, eris.Wrap(err, "agent: parse extraction response")
	}
	if len(out) == 0 {
		return nil, eris.New("agent: extraction response empty")
	}
	return out, nil
}

// cleanJSON strips markdown fences and any prose around the first JSON
// object in a model response.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s)
}

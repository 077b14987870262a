package chatbot

import (
	"fmt"
	"strings"

	"github.com/code-gritt/klientel/pkg/analytics"
	"github.com/code-gritt/klientel/pkg/store"
)

const systemPrompt = `You are Klientel's CRM assistant. You answer questions about the user's
sales pipeline using only the context provided. Be concise and concrete.
If the context does not contain the answer, say so instead of guessing.`

// buildContext renders the user's pipeline into the prompt fed to the
// model. Kept small: names, stages and the funnel report, no notes or
// activity history.
func buildContext(leads []store.Lead, metrics []analytics.Metric) string {
	var b strings.Builder

	b.WriteString("Pipeline report:\n")
	for _, m := range metrics {
		fmt.Fprintf(&b, "- %s: %d leads, %.2f%% conversion to next stage, %.2f days avg time in stage\n",
			m.Status, m.LeadCount, m.ConversionRatePercent, m.AvgDwellDays)
	}

	b.WriteString("\nLeads:\n")
	if len(leads) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, l := range leads {
		if l.Email != "" {
			fmt.Fprintf(&b, "- %s <%s> (%s)\n", l.Name, l.Email, l.Status)
		} else {
			fmt.Fprintf(&b, "- %s (%s)\n", l.Name, l.Status)
		}
	}
	return b.String()
}

func buildPrompt(query string, leads []store.Lead, metrics []analytics.Metric) string {
	return buildContext(leads, metrics) + "\nQuestion: " + query
}

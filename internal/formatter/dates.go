package formatter

import (
	"time"

	"elections/internal/models"
)

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.FormatDate(d))
	}
	return out
}

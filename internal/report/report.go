// Package report builds periodic highlight digests and renders them as
// Markdown.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/models"
)

type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Limits on the number of highlights per report.
const (
	WeeklyLimit  = 10
	MonthlyLimit = 20
)

// DateLayout is used for the period line of the Markdown export.
const DateLayout = "2006-01-02"

// ParsePeriod accepts "weekly" and "monthly".
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Weekly, Monthly:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown report period %q", common.ErrorInvalidArgument, s)
}

// Title is the capitalized period name.
func (p Period) Title() string {
	if p == Weekly {
		return "Weekly"
	}
	return "Monthly"
}

// Limit returns the maximum number of highlights the period reports.
func (p Period) Limit() int {
	if p == Weekly {
		return WeeklyLimit
	}
	return MonthlyLimit
}

// Start returns the beginning of the window that ends at now. The monthly
// window goes back one calendar month.
func (p Period) Start(now time.Time) time.Time {
	now = now.UTC()
	if p == Weekly {
		return now.AddDate(0, 0, -7)
	}
	return now.AddDate(0, -1, 0)
}

// Report is a digest of the best highlights of a period.
type Report struct {
	Period          Period             `json:"period"`
	StartDate       time.Time          `json:"start_date"`
	EndDate         time.Time          `json:"end_date"`
	Highlights      []models.Highlight `json:"highlights"`
	TotalHighlights int                `json:"total_highlights"`
}

// New assembles a Report; TotalHighlights is the number of returned rows.
func New(p Period, start, end time.Time, highlights []models.Highlight) Report {
	if highlights == nil {
		highlights = []models.Highlight{}
	}
	return Report{
		Period:          p,
		StartDate:       start,
		EndDate:         end,
		Highlights:      highlights,
		TotalHighlights: len(highlights),
	}
}

// Markdown renders r as a Markdown document.
func Markdown(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Highlights\n\n", r.Period.Title())
	fmt.Fprintf(&b, "**Period:** %s - %s\n", r.StartDate.Format(DateLayout), r.EndDate.Format(DateLayout))
	fmt.Fprintf(&b, "**Total Highlights:** %d\n\n", r.TotalHighlights)

	for i, h := range r.Highlights {
		fmt.Fprintf(&b, "## Highlight #%d\n", i+1)
		fmt.Fprintf(&b, "**Channel Type:** %s\n", h.ChannelType)
		fmt.Fprintf(&b, "**Sentiment Score:** %.2f\n", h.SentimentScore)
		fmt.Fprintf(&b, "**Reactions:** %d\n", h.ReactionCount)
		fmt.Fprintf(&b, "**Content:** %s\n\n", h.AnonymizedContent)
	}

	return b.String()
}

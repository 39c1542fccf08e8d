package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/feature"
)

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	headers := []string{"ID", "NAME", "CLIENT", "START", "STATUS", "TIMELINE", "TESTING"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		start := Dim("--")
		if p.StartDate != nil {
			start = p.StartDate.Format(domain.DateLayout)
		}
		rows = append(rows, []string{
			p.DisplayID(),
			Bold(p.Name),
			OrDash(p.ClientName),
			start,
			StatusPill(p.Status),
			PublishBadge(p.TimelinePublished),
			PublishBadge(p.TestingPublished),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProjectShow renders a project detail card with its feature switches.
func FormatProjectShow(p *domain.Project, states []feature.State, now time.Time) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(p.Name) + "  " + StatusPill(p.Status) + "\n\n")

	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render(fmt.Sprintf("%-9s", label)), value))
	}
	field("ID", OrDash(p.ShortID))
	field("UUID", TruncID(p.ID))
	field("CLIENT", OrDash(p.ClientName))
	if p.StartDate != nil {
		field("START", p.StartDate.Format(domain.DateLayout)+" "+Dim("("+RelativeDateFrom(*p.StartDate, now)+")"))
	} else {
		field("START", Dim("not set, templates anchor on today"))
	}
	field("TIMELINE", PublishBadge(p.TimelinePublished)+" "+Dim(HumanTimestamp(p.TimelineLastPublished, now)))
	field("TESTING", PublishBadge(p.TestingPublished)+" "+Dim(HumanTimestamp(p.TestingLastPublished, now)))

	if len(states) > 0 {
		b.WriteString("\n" + Header("Features") + "\n")
		b.WriteString(FormatFeatureStates(states))
	}
	return RenderBox("", b.String())
}

// FormatFeatureStates renders evaluated feature switches as a table.
func FormatFeatureStates(states []feature.State) string {
	headers := []string{"FEATURE", "GLOBAL", "PROJECT", "EFFECTIVE"}
	rows := make([][]string, 0, len(states))
	for _, s := range states {
		rows = append(rows, []string{s.Feature, OnOff(s.Global), OnOff(s.Project), OnOff(s.Enabled)})
	}
	return RenderTable(headers, rows)
}

// FormatGlobalSettings renders the administrator feature switches.
func FormatGlobalSettings(settings *domain.GlobalSettings) string {
	headers := []string{"FEATURE", "ENABLED"}
	rows := make([][]string, 0, len(domain.KnownFeatures))
	for _, f := range domain.KnownFeatures {
		on, ok := settings.Lookup(domain.FeatureKey(f))
		rows = append(rows, []string{f, OnOff(!ok || on)})
	}
	return RenderBox("Settings", RenderTable(headers, rows))
}

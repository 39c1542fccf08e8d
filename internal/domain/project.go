package domain

import (
	"fmt"
	"regexp"
	"time"
)

var shortIDPattern = regexp.MustCompile(`^[A-Z]{3,6}[0-9]{2,4}$`)

type Project struct {
	ID         string
	ShortID    string
	Name       string
	ClientName string
	StartDate  *time.Time
	Status     ProjectStatus

	TimelinePublished     bool
	TimelineLastPublished *time.Time
	TestingPublished      bool
	TestingLastPublished  *time.Time

	// FeaturesEnabled holds project-level overrides. A missing key means enabled.
	FeaturesEnabled map[string]bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateShortID checks ShortID against the required format: 3-6
// uppercase letters followed by 2-4 digits (e.g. ACME01, SHOP0042). The
// short ID is optional, so an empty one is valid.
func (p *Project) ValidateShortID() error {
	if p.ShortID == "" {
		return nil
	}
	if !shortIDPattern.MatchString(p.ShortID) {
		return fmt.Errorf("short ID %q must be 3-6 uppercase letters followed by 2-4 digits (e.g. ACME01)", p.ShortID)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers ShortID; if empty it truncates ID to 8 characters.
func (p *Project) DisplayID() string {
	if p.ShortID != "" {
		return p.ShortID
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// AnchorDate returns the date template offsets are measured from: the
// project's start date, or today when no start date is set.
func (p *Project) AnchorDate(now time.Time) time.Time {
	if p.StartDate != nil {
		return DateOnly(*p.StartDate)
	}
	return DateOnly(now)
}

// Published reports whether the given collection has been published.
func (p *Project) Published(c Collection) bool {
	switch c {
	case CollectionTimeline:
		return p.TimelinePublished
	case CollectionTesting:
		return p.TestingPublished
	default:
		return false
	}
}

// LastPublished returns when the given collection was last published.
func (p *Project) LastPublished(c Collection) *time.Time {
	switch c {
	case CollectionTimeline:
		return p.TimelineLastPublished
	case CollectionTesting:
		return p.TestingLastPublished
	default:
		return nil
	}
}

package domain

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectPaused   ProjectStatus = "paused"
	ProjectDone     ProjectStatus = "done"
	ProjectArchived ProjectStatus = "archived"
)

// ValidProjectStatuses is the canonical set of accepted project status strings.
var ValidProjectStatuses = map[string]bool{
	"active": true, "paused": true, "done": true, "archived": true,
}

// Collection names an editable, publishable list owned by a project.
type Collection string

const (
	CollectionTimeline Collection = "timeline"
	CollectionTesting  Collection = "testing"
)

// ParseCollection maps a user-supplied name to a Collection.
func ParseCollection(s string) (Collection, bool) {
	switch Collection(s) {
	case CollectionTimeline, CollectionTesting:
		return Collection(s), true
	default:
		return "", false
	}
}

// Optional dashboard modules that can be switched on and off.
const (
	FeatureTimeline = "timeline"
	FeatureTesting  = "testing"
	FeatureTeam     = "team"
	FeatureChat     = "chat"
	FeatureFiles    = "files"
)

// KnownFeatures lists every feature in display order.
var KnownFeatures = []string{
	FeatureTimeline,
	FeatureTesting,
	FeatureTeam,
	FeatureChat,
	FeatureFiles,
}

// IsKnownFeature reports whether name is one of KnownFeatures.
func IsKnownFeature(name string) bool {
	for _, f := range KnownFeatures {
		if f == name {
			return true
		}
	}
	return false
}

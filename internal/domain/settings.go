package domain

// GlobalSettings holds administrator-level master switches keyed as
// "<feature>_enabled". A missing key means enabled.
type GlobalSettings struct {
	Flags map[string]bool
}

// FeatureKey returns the settings key for a feature's master switch.
func FeatureKey(feature string) string {
	return feature + "_enabled"
}

// Lookup returns the stored value and whether the key is present.
func (s *GlobalSettings) Lookup(key string) (bool, bool) {
	if s == nil || s.Flags == nil {
		return false, false
	}
	v, ok := s.Flags[key]
	return v, ok
}

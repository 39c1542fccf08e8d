package template

import (
	"fmt"
	"strings"
)

// ValidateDocument checks a template document for structural errors after
// expansion. Returns a slice of errors (empty if valid).
func ValidateDocument(doc *Document) []error {
	var errs []error

	if strings.TrimSpace(doc.Name) == "" {
		errs = append(errs, fmt.Errorf("template name is required"))
	}
	if len(doc.Items) == 0 {
		errs = append(errs, fmt.Errorf("at least one item is required"))
		return errs
	}

	items, err := doc.Expand()
	if err != nil {
		return append(errs, err)
	}

	keys := make(map[string]bool, len(items))
	for i, it := range items {
		if it.Key == "" {
			errs = append(errs, fmt.Errorf("item[%d]: key is required", i))
		}
		if strings.TrimSpace(it.Title) == "" {
			errs = append(errs, fmt.Errorf("item[%d]: title is required", i))
		}
		if it.OffsetDays != nil && *it.OffsetDays < 0 {
			errs = append(errs, fmt.Errorf("item[%d] %q: offset %d is negative", i, it.Key, *it.OffsetDays))
		}
		if it.Key != "" && keys[it.Key] {
			errs = append(errs, fmt.Errorf("item[%d]: duplicate key %q", i, it.Key))
		}
		keys[it.Key] = true
	}

	parents := make(map[string]string, len(items))
	for i, it := range items {
		if it.Parent == "" {
			continue
		}
		if !keys[it.Parent] {
			errs = append(errs, fmt.Errorf("item[%d] %q: unknown parent %q", i, it.Key, it.Parent))
			continue
		}
		parents[it.Key] = it.Parent
	}

	if cycle := findCycle(parents); cycle != "" {
		errs = append(errs, fmt.Errorf("parent cycle through %q", cycle))
	}
	return errs
}

// findCycle returns a key on a parent cycle, or "" when the links form a forest.
func findCycle(parents map[string]string) string {
	done := make(map[string]bool, len(parents))
	for start := range parents {
		seen := map[string]bool{}
		cur := start
		for {
			if done[cur] {
				break
			}
			if seen[cur] {
				return cur
			}
			seen[cur] = true
			next, ok := parents[cur]
			if !ok {
				break
			}
			cur = next
		}
		for k := range seen {
			done[k] = true
		}
	}
	return ""
}

package template

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the portable form of a timeline template. Items refer to
// each other through document-local keys instead of database IDs. JSON
// documents parse too, since JSON is valid YAML.
type Document struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Category    string         `yaml:"category,omitempty"`
	Color       string         `yaml:"color,omitempty"`
	Items       []DocumentItem `yaml:"items"`
}

// DocumentItem is one node of a template document. Key, Parent, Title and
// Offset may contain {expr} blocks evaluated against the Repeat variable.
type DocumentItem struct {
	Key         string        `yaml:"key"`
	Parent      string        `yaml:"parent,omitempty"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description,omitempty"`
	Offset      string        `yaml:"offset,omitempty"`
	Repeat      *RepeatConfig `yaml:"repeat,omitempty"`
}

// RepeatConfig expands one document item into To-From+1 items.
type RepeatConfig struct {
	Var  string `yaml:"var"`
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
}

// ExpandedItem is a document item after repeats and expressions are resolved.
// Order is the item's position in the expanded document.
type ExpandedItem struct {
	Key         string
	Parent      string
	Title       string
	Description string
	OffsetDays  *int
	Order       int
}

// LoadDocument reads and parses a template document file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// ParseDocument parses a YAML or JSON template document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing template document: %w", err)
	}
	return &doc, nil
}

// Marshal renders the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Expand resolves repeats and expressions into a flat ordered item list.
func (d *Document) Expand() ([]ExpandedItem, error) {
	var out []ExpandedItem
	for i, di := range d.Items {
		err := iterateRepeat(di.Repeat, func(vars map[string]int) error {
			item, err := expandItem(di, vars)
			if err != nil {
				return err
			}
			item.Order = len(out)
			out = append(out, item)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("items[%d] (%s): %w", i, di.Key, err)
		}
	}
	return out, nil
}

func iterateRepeat(r *RepeatConfig, fn func(vars map[string]int) error) error {
	if r == nil {
		return fn(map[string]int{})
	}
	if r.Var == "" {
		return fmt.Errorf("repeat needs a var")
	}
	if r.To < r.From {
		return fmt.Errorf("repeat %s: to %d is before from %d", r.Var, r.To, r.From)
	}
	for i := r.From; i <= r.To; i++ {
		if err := fn(map[string]int{r.Var: i}); err != nil {
			return err
		}
	}
	return nil
}

func expandItem(di DocumentItem, vars map[string]int) (ExpandedItem, error) {
	var item ExpandedItem
	var err error
	if item.Key, err = ExpandTemplate(di.Key, vars); err != nil {
		return item, fmt.Errorf("key: %w", err)
	}
	if item.Parent, err = ExpandTemplate(di.Parent, vars); err != nil {
		return item, fmt.Errorf("parent: %w", err)
	}
	if item.Title, err = ExpandTemplate(di.Title, vars); err != nil {
		return item, fmt.Errorf("title: %w", err)
	}
	item.Description = di.Description

	if off := strings.TrimSpace(di.Offset); off != "" {
		days, err := evalIntExpr(off, vars)
		if err != nil {
			return item, fmt.Errorf("offset: %w", err)
		}
		item.OffsetDays = &days
	}
	return item, nil
}

// evalIntExpr accepts a plain integer, a {expr} template, or a raw expression.
func evalIntExpr(expr string, vars map[string]int) (int, error) {
	if n, err := strconv.Atoi(expr); err == nil {
		return n, nil
	}
	if strings.Contains(expr, "{") {
		expanded, err := ExpandTemplate(expr, vars)
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(expanded)
	}
	return EvalExpr(expr, vars)
}

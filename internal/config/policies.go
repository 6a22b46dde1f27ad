package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/streamlift/panel_core/internal/resource"
)

// policyDoc is the YAML shape of the staleness policy file.
type policyDoc struct {
	Default  policyEntry            `yaml:"default"`
	Families map[string]policyEntry `yaml:"families"`
}

type policyEntry struct {
	// StaleAfter is a duration ("30s", "5m"), "always" for
	// revalidate-on-every-access, or "keep" for explicit-invalidation
	// only.
	StaleAfter     string `yaml:"stale_after"`
	RefreshOnFocus *bool  `yaml:"refresh_on_focus"`
}

// DefaultPolicy is used for families the policy file does not name.
func DefaultPolicy() resource.Policy {
	return resource.Policy{StaleAfter: 30 * time.Second, RefreshOnFocus: true}
}

// LoadPolicies reads the per-family staleness policies from a YAML
// file. An empty path yields only the built-in default.
func LoadPolicies(path string) (map[string]resource.Policy, resource.Policy, error) {
	fallback := DefaultPolicy()
	if path == "" {
		return nil, fallback, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fallback, fmt.Errorf("read policy file: %w", err)
	}

	var doc policyDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fallback, fmt.Errorf("parse policy file: %w", err)
	}

	if doc.Default.StaleAfter != "" || doc.Default.RefreshOnFocus != nil {
		fallback, err = doc.Default.toPolicy(fallback)
		if err != nil {
			return nil, DefaultPolicy(), fmt.Errorf("default policy: %w", err)
		}
	}

	policies := make(map[string]resource.Policy, len(doc.Families))
	for family, entry := range doc.Families {
		p, err := entry.toPolicy(fallback)
		if err != nil {
			return nil, fallback, fmt.Errorf("family %q: %w", family, err)
		}
		policies[family] = p
	}
	return policies, fallback, nil
}

func (e policyEntry) toPolicy(base resource.Policy) (resource.Policy, error) {
	p := base

	switch e.StaleAfter {
	case "":
		// Inherit.
	case "always":
		p.StaleAfter = resource.RevalidateAlways
	case "keep":
		p.StaleAfter = resource.KeepUntilInvalidated
	default:
		d, err := time.ParseDuration(e.StaleAfter)
		if err != nil {
			return p, fmt.Errorf("bad stale_after %q: %w", e.StaleAfter, err)
		}
		if d < 0 {
			return p, fmt.Errorf("bad stale_after %q: negative duration", e.StaleAfter)
		}
		p.StaleAfter = d
	}

	if e.RefreshOnFocus != nil {
		p.RefreshOnFocus = *e.RefreshOnFocus
	}
	return p, nil
}

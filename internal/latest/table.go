package latest

import (
	"context"
	"maps"
)

// Fallback is the version reported for tools without any known latest version.
const Fallback = "latest"

// Table is an immutable mapping of tool names to their latest version.
type Table struct {
	versions map[string]string
}

func NewTable(versions map[string]string) Table {
	return Table{versions: maps.Clone(versions)}
}

// DefaultTable holds the versions that are known without any configuration.
func DefaultTable() Table {
	return NewTable(map[string]string{
		"DOCKER_VERSION":     "20.10.7",
		"KUBERNETES_VERSION": "v1.21.0",
	})
}

// Lookup never fails: tools absent from the table resolve to Fallback.
func (t Table) Lookup(tool string) string {
	if v, ok := t.versions[tool]; ok {
		return v
	}
	return Fallback
}

func (t Table) Get(tool string) (string, bool) {
	v, ok := t.versions[tool]
	return v, ok
}

// With returns a new table where the given overrides take precedence.
func (t Table) With(overrides map[string]string) Table {
	merged := maps.Clone(t.versions)
	if merged == nil {
		merged = make(map[string]string, len(overrides))
	}
	maps.Copy(merged, overrides)
	return Table{versions: merged}
}

// Latest makes a bare table usable wherever a resolver is expected.
func (t Table) Latest(_ context.Context, tool string) string {
	return t.Lookup(tool)
}

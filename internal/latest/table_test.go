package latest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTable(t *testing.T) {
	t.Parallel()

	testcases := map[string]struct {
		tool     string
		expected string
	}{
		"Docker":     {tool: "DOCKER_VERSION", expected: "20.10.7"},
		"Kubernetes": {tool: "KUBERNETES_VERSION", expected: "v1.21.0"},
		"Unmapped":   {tool: "HELM_VERSION", expected: Fallback},
		"Empty":      {tool: "", expected: Fallback},
		"CaseMatter": {tool: "docker_version", expected: Fallback},
	}

	table := DefaultTable()
	for name := range testcases {
		tc := testcases[name]
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, table.Lookup(tc.tool))
			assert.Equal(t, tc.expected, table.Latest(context.Background(), tc.tool))
		})
	}
}

func TestTableIsImmutable(t *testing.T) {
	t.Parallel()

	src := map[string]string{"GO_VERSION": "1.22.0"}
	table := NewTable(src)
	src["GO_VERSION"] = "0.0.1"
	src["RUST_VERSION"] = "1.80.0"

	assert.Equal(t, "1.22.0", table.Lookup("GO_VERSION"))
	assert.Equal(t, Fallback, table.Lookup("RUST_VERSION"))
}

func TestTableWith(t *testing.T) {
	t.Parallel()

	base := DefaultTable()
	merged := base.With(map[string]string{
		"DOCKER_VERSION": "27.1.1",
		"HELM_VERSION":   "3.15.2",
	})

	assert.Equal(t, "27.1.1", merged.Lookup("DOCKER_VERSION"))
	assert.Equal(t, "3.15.2", merged.Lookup("HELM_VERSION"))
	assert.Equal(t, "v1.21.0", merged.Lookup("KUBERNETES_VERSION"))

	assert.Equal(t, "20.10.7", base.Lookup("DOCKER_VERSION"))
	assert.Equal(t, Fallback, base.Lookup("HELM_VERSION"))

	var empty Table
	assert.Equal(t, "1.0.0", empty.With(map[string]string{"OPA_VERSION": "1.0.0"}).Lookup("OPA_VERSION"))
}

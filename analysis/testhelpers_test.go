package analysis

import (
	"testing"

	"github.com/shypn/topology/petri"
)

func emptyModel(t *testing.T) *petri.Model {
	t.Helper()
	m, err := petri.Build().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

package domain

const (
	LabelComponent   = "Component"
	RelDependsOn     = "DEPENDS_ON"
	ComponentKeyName = "name"
)

// Edge is a DEPENDS_ON relationship: Source depends on Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// SeedComponents and SeedEdges form the fixed bootstrap graph.
var (
	SeedComponents = []string{"API", "Database", "Frontend"}
	SeedEdges      = []Edge{
		{Source: "API", Target: "Database"},
		{Source: "Frontend", Target: "API"},
	}
)

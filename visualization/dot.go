package visualization

import (
	"fmt"
	"os"
	"strings"

	"github.com/anggasct/tlc"
)

// DOTGenerator generates Graphviz DOT format representations of a phase definition
type DOTGenerator struct {
	definition *tlc.Definition
	initial    tlc.Phase
	options    DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowGuardConditions bool
	ShowActions         bool
	CompactMode         bool
	RankDirection       string // "TB", "LR", "BT", "RL"
	NodeShape           string
	TransitionStyle     string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowGuardConditions: true,
		ShowActions:         true,
		CompactMode:         false,
		RankDirection:       "TB",
		NodeShape:           "box",
		TransitionStyle:     "solid",
	}
}

// NewDOTGenerator creates a new DOT generator for the given definition.
// initial is marked as the starting phase.
func NewDOTGenerator(definition *tlc.Definition, initial tlc.Phase, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		definition: definition,
		initial:    initial,
		options:    opts,
	}
}

// Generate creates a DOT representation of the phase definition
func (g *DOTGenerator) Generate() (string, error) {
	if g.definition == nil {
		return "", fmt.Errorf("no definition to render")
	}

	var dot strings.Builder

	dot.WriteString("digraph Intersection {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generatePhases(&dot)
	g.generateTransitions(&dot)

	dot.WriteString("}\n")

	return dot.String(), nil
}

var phaseColors = map[tlc.Phase]string{
	tlc.Green:  "palegreen",
	tlc.Yellow: "lightyellow",
	tlc.Red:    "lightcoral",
}

func (g *DOTGenerator) generatePhases(dot *strings.Builder) {
	dot.WriteString("  // Phases\n")

	for _, p := range tlc.Phases() {
		label := p.String()
		if p == g.initial {
			label += "\\n(initial)"
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" [style=\"filled\" fillcolor=%s label=\"%s\"];\n",
			p, phaseColors[p], label))
	}
	dot.WriteString("\n")
}

func (g *DOTGenerator) generateTransitions(dot *strings.Builder) {
	dot.WriteString("  // Transitions\n")

	for _, t := range g.definition.All() {
		label := t.Event
		if !g.options.CompactMode {
			if g.options.ShowGuardConditions && t.Guard != nil {
				label += " [guarded]"
			}
			if g.options.ShowActions && t.Action != nil {
				label += " / action"
			}
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\" style=%s];\n",
			t.From, t.To, label, g.options.TransitionStyle))
	}
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

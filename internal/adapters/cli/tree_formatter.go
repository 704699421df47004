package cli

import (
	"fmt"
	"strings"

	"github.com/Nadrieril/rustorio/internal/application/production"
)

// TreeFormatter renders production plan trees
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// FormatTree renders a plan tree with per-node stock and crafting info
func (f *TreeFormatter) FormatTree(root *production.PlanNode) string {
	if root == nil {
		return "(empty tree)"
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

// formatNode recursively formats a node and its children
func (f *TreeFormatter) formatNode(builder *strings.Builder, node *production.PlanNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}

	sourceText := f.sourceText(node)

	stockText := ""
	if node.FromStock > 0 && node.Crafted() {
		stockText = fmt.Sprintf(", %d from stock", node.FromStock)
	}

	craftText := ""
	if node.Crafted() {
		craftText = fmt.Sprintf(" (%d run(s) on %s, %d tick(s) each)",
			node.Runs, node.Entity, node.Duration)
	}

	builder.WriteString(fmt.Sprintf("%s%s x%d [%s%s%s%s]%s\n",
		linePrefix,
		node.Resource,
		node.Quantity,
		f.sourceColor(node),
		sourceText,
		f.colorReset(),
		stockText,
		craftText,
	))

	if len(node.Children) > 0 {
		var childPrefix string
		if isRoot {
			childPrefix = ""
		} else if isLast {
			childPrefix = prefix + "    "
		} else {
			childPrefix = prefix + "│   "
		}

		for i, child := range node.Children {
			f.formatNode(builder, child, childPrefix, i == len(node.Children)-1, false)
		}
	}
}

func (f *TreeFormatter) sourceText(node *production.PlanNode) string {
	if node.Crafted() {
		return "CRAFT"
	}
	return "STOCK"
}

// sourceColor returns the ANSI color code for a node's source
func (f *TreeFormatter) sourceColor(node *production.PlanNode) string {
	if !f.useColors {
		return ""
	}
	if node.Crafted() {
		return "\033[33m" // Yellow
	}
	return "\033[32m" // Green
}

// colorReset returns ANSI reset code
func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatTreeSummary creates a compact summary of the tree
func (f *TreeFormatter) FormatTreeSummary(root *production.PlanNode) string {
	if root == nil {
		return "No plan"
	}

	nodes, crafted := countNodes(root)
	return fmt.Sprintf("Plan: %d node(s), %d crafted, %d machine run(s) total",
		nodes, crafted, root.TotalRuns())
}

func countNodes(node *production.PlanNode) (total, crafted int) {
	total = 1
	if node.Crafted() {
		crafted = 1
	}
	for _, child := range node.Children {
		t, c := countNodes(child)
		total += t
		crafted += c
	}
	return total, crafted
}

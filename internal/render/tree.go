// Package render draws outlines for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/dgallion1/docoutline/internal/outline"
)

var (
	// headerBoxStyle frames the document title and counts
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// enumeratorStyle keeps the branch glyphs one space away from titles.
	enumeratorStyle = dimStyle.PaddingRight(1)

	// levelStyles style section titles by level; deeper levels reuse the last.
	levelStyles = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
)

// Options control Tree output.
type Options struct {
	// Preview is how many runes of each section's content to show; zero
	// hides content.
	Preview int
	// ShowIDs prints node ids next to titles.
	ShowIDs bool
}

// Header renders the boxed title line shown above a tree.
func Header(w io.Writer, title string, nodes []outline.SectionNode, extractor string) {
	content := fmt.Sprintf("%s\n%s %d  %s %d  %s %s",
		titleStyle.Render(title),
		dimStyle.Render("Sections:"), len(nodes),
		dimStyle.Render("Top level:"), outline.CountLevel(nodes, 1),
		dimStyle.Render("Extractor:"), extractor,
	)
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// Tree renders nodes as an indented tree with box-drawing branches.
func Tree(w io.Writer, nodes []outline.SectionNode, opts Options) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, dimStyle.Render("(no sections)"))
		return
	}
	fmt.Fprintln(w, branch(tree.New(), outline.Nest(nodes), opts).String())
}

// branch adds children to t. Every level gets its own styles: a subtree
// without them would reuse its parent's item styles by index.
func branch(t *tree.Tree, children []*outline.TreeNode, opts Options) *tree.Tree {
	t.EnumeratorStyle(enumeratorStyle).
		ItemStyleFunc(func(_ tree.Children, i int) lipgloss.Style {
			return levelStyle(children[i].Section.Level)
		})
	for _, c := range children {
		item := label(c.Section, opts)
		if len(c.Children) == 0 {
			t.Child(item)
			continue
		}
		t.Child(branch(tree.Root(item), c.Children, opts))
	}
	return t
}

// label is the item text of one node: its title, optionally its id, and a
// content preview on a second line.
func label(n outline.SectionNode, opts Options) string {
	title := n.Title
	if title == "" {
		title = n.ID
	}
	if opts.ShowIDs {
		title += " " + dimStyle.Render("["+n.ID+"]")
	}
	if p := preview(n.Content, opts.Preview); p != "" {
		title += "\n" + dimStyle.Render("  "+p)
	}
	return title
}

func levelStyle(level int) lipgloss.Style {
	i := level - 1
	if i < 0 {
		i = 0
	}
	if i >= len(levelStyles) {
		i = len(levelStyles) - 1
	}
	return levelStyles[i]
}

// preview flattens content onto one line and cuts it to n runes.
func preview(content string, n int) string {
	if n <= 0 {
		return ""
	}
	s := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// Report renders a one-line summary of a reconciliation.
func Report(w io.Writer, r outline.Report) {
	rule := okStyle.Render(string(r.Rule))
	if r.Rule != outline.RuleAcceptExternal {
		rule = warnStyle.Render(string(r.Rule))
	}
	fmt.Fprintf(w, "%s %s  %s %d  %s %d  %s %d  %s %d\n",
		dimStyle.Render("Rule:"), rule,
		dimStyle.Render("Local:"), r.LocalCount,
		dimStyle.Render("External:"), r.ExternalCount,
		dimStyle.Render("Appended:"), r.Appended,
		dimStyle.Render("Backfilled:"), r.Backfilled,
	)
}

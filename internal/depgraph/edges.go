package depgraph

import (
	"bufio"
	"io"
	"strings"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

// Edge is one "From depends on To" relation.
type Edge struct {
	From string
	To   string
}

func (e Edge) String() string { return e.From + "->" + e.To }

// Filter selects the exported edges that matter for documentation ordering.
type Filter struct {
	SDKPrefix            string
	RuntimeSupportPrefix string
	ExcludeKeywords      []string
}

// keeps reports whether a raw export line carries an edge into the SDK or the
// runtime support namespace and mentions no excluded keyword.
func (f Filter) keeps(line string) bool {
	if !strings.Contains(line, "-> "+f.SDKPrefix) &&
		(f.RuntimeSupportPrefix == "" || !strings.Contains(line, "-> "+f.RuntimeSupportPrefix)) {
		return false
	}
	for _, kw := range f.ExcludeKeywords {
		if kw != "" && strings.Contains(line, kw) {
			return false
		}
	}
	return true
}

// IsRuntimeSupport reports whether name belongs to the runtime support layer.
func (f Filter) IsRuntimeSupport(name string) bool {
	return f.RuntimeSupportPrefix != "" && strings.HasPrefix(name, f.RuntimeSupportPrefix)
}

// ParseEdges reads a graphviz export and returns the kept edges in file order.
// Edge lines end in a comment naming the targets ("// a -> b"); a kept line
// whose comment does not split into exactly two names is a parse error.
func ParseEdges(r io.Reader, f Filter) ([]Edge, error) {
	var edges []Edge
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !f.keeps(line) {
			continue
		}
		if i := strings.LastIndex(line, "//"); i >= 0 {
			line = line[i+2:]
		}
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		parts := strings.Split(line, "->")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, errors.GraphExtractionError("unparsable edge in dependency export").
				WithContext("line", lineNo).WithContext("text", scanner.Text()).Build()
		}
		edges = append(edges, Edge{From: parts[0], To: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryGraphExtraction, "failed to read dependency export").
			Fatal().Build()
	}
	return edges, nil
}

// WriteEdges writes edges in the normalized "a->b" form, one per line.
func WriteEdges(w io.Writer, edges []Edge) error {
	bw := bufio.NewWriter(w)
	for _, e := range edges {
		if _, err := bw.WriteString(e.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

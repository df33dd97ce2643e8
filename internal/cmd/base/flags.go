package base

import (
	"bytes"
	"flag"
	"fmt"
	"sort"
	"strings"
)

// FlagSet wraps flag.FlagSet with a help renderer.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f. Usage output is silenced because commands print their
// own help.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(&bytes.Buffer{})
	f.Usage = func() {}
	return &FlagSet{FlagSet: f}
}

// Help renders the flags, sorted by name, for a command's help text.
func (f *FlagSet) Help() string {
	var flags []*flag.Flag
	f.VisitAll(func(fl *flag.Flag) {
		flags = append(flags, fl)
	})
	if len(flags) == 0 {
		return ""
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })

	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	for _, fl := range flags {
		b.WriteString("\n")
		if fl.DefValue != "" {
			fmt.Fprintf(&b, "  -%s=<%s>\n", fl.Name, fl.DefValue)
		} else {
			fmt.Fprintf(&b, "  -%s\n", fl.Name)
		}
		for _, line := range wrap(fl.Usage, 70) {
			fmt.Fprintf(&b, "      %s\n", line)
		}
	}
	return b.String()
}

func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}

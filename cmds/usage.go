package cmds

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

func (p *Executor) PrintUsage() {
	var lines []string
	var walk func(prefix string, commands map[string]*Command, seen map[*Command]bool)
	walk = func(prefix string, commands map[string]*Command, seen map[*Command]bool) {
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			command := commands[name]
			if seen[command] {
				continue
			}
			seen[command] = true
			line := prefix + name
			if command.Description != "" {
				line += "\n" + prefix + "  " + command.Description
			}
			lines = append(lines, line)
			if len(command.Subs) > 0 {
				walk(prefix+"  ", command.Subs, seen)
			}
		}
	}
	walk("", p.commands, make(map[*Command]bool))
	fmt.Fprintln(os.Stderr, strings.Join(lines, "\n"))
}

package core

import "strings"

// ShellEscapePosix returns a single shell token using single-quote strategy,
// including surrounding single quotes.
// example: abc -> 'abc'
// example: a'b -> 'a'"'"'b'
// example: "" -> ''
func ShellEscapePosix(s string) string {
	if s == "" {
		return "''"
	}
	// 'a'b' => 'a'"'"'b'
	escaped := strings.ReplaceAll(s, "'", "'\"'\"'")
	return "'" + escaped + "'"
}

// ShellArg returns s unchanged when it is made only of characters that need
// no quoting in a POSIX shell, and ShellEscapePosix(s) otherwise.
func ShellArg(s string) string {
	if s == "" {
		return "''"
	}
	for _, r := range s {
		if !isShellSafe(r) {
			return ShellEscapePosix(s)
		}
	}
	return s
}

// ShellCommand joins name and args into a copy-pasteable command line.
func ShellCommand(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellArg(name))
	for _, a := range args {
		parts = append(parts, ShellArg(a))
	}
	return strings.Join(parts, " ")
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=@%+,", r)
}

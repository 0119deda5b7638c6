package routeros

import "strings"

// Statement is one command line of a section body, e.g.
// `add bridge=br-office interface=ether2`.
type Statement struct {
	Verb  string
	Attrs map[string]string
	Raw   string
}

// Get returns the value for key, or "" when the key is absent.
func (s Statement) Get(key string) string {
	return s.Attrs[key]
}

// Has reports whether key is present with a non-empty value.
func (s Statement) Has(key string) bool {
	return s.Attrs[key] != ""
}

// ParseStatement tokenizes a single line into verb and key=value attributes.
// Quoted values are returned without the surrounding quotes; escape
// sequences inside them are kept as written so the value can be quoted back
// into a command. Bracketed sub-expressions such as `[ find default-name=ether1 ]`
// are skipped. Blank and comment lines return false.
func ParseStatement(line string) (Statement, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Statement{}, false
	}

	st := Statement{Attrs: make(map[string]string), Raw: line}
	i := 0
	n := len(line)
	for i < n {
		for i < n && line[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}
		if line[i] == '[' {
			i = skipBracket(line, i)
			continue
		}

		start := i
		for i < n && line[i] != ' ' && line[i] != '=' {
			i++
		}
		key := line[start:i]
		if i >= n || line[i] == ' ' {
			if st.Verb == "" {
				st.Verb = key
			}
			continue
		}

		i++ // '='
		var value string
		if i < n && line[i] == '"' {
			value, i = readQuoted(line, i+1)
		} else {
			start = i
			for i < n && line[i] != ' ' {
				i++
			}
			value = line[start:i]
		}
		st.Attrs[key] = value
	}

	if st.Verb == "" && len(st.Attrs) == 0 {
		return Statement{}, false
	}
	return st, true
}

// readQuoted reads from just after an opening quote up to the matching
// unescaped quote and returns the inner text and the index after it.
func readQuoted(line string, i int) (string, int) {
	start := i
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return line[start:i], i + 1
		}
		i++
	}
	return line[start:], len(line)
}

func skipBracket(line string, i int) int {
	depth := 0
	for i < len(line) {
		switch line[i] {
		case '"':
			_, i = readQuoted(line, i+1)
			continue
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return len(line)
}

// Statements parses every line of a section body and keeps those whose verb
// is one of verbs.
func Statements(body string, verbs ...string) []Statement {
	var out []Statement
	for _, line := range strings.Split(body, "\n") {
		st, ok := ParseStatement(line)
		if !ok {
			continue
		}
		for _, v := range verbs {
			if st.Verb == v {
				out = append(out, st)
				break
			}
		}
	}
	return out
}

package sqlemit

import (
	"fmt"
	"regexp"
	"strings"
)

// validIdentifierRe validates SQL identifiers substituted into templates.
// Only letters, digits and underscores are allowed, with a non-digit first
// character, so rendered identifiers can never smuggle in SQL syntax.
var validIdentifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidIdentifier checks if the string is a safe SQL identifier.
func IsValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

type (
	// Ident marks a template value as a SQL identifier (schema, table or
	// column name). Identifiers are validated before substitution.
	Ident string

	// Raw marks a template value as a trusted SQL fragment that is
	// substituted verbatim, such as a column list already validated
	// upstream. Use sparingly.
	Raw string

	// Param marks a template value as a data position. It renders as a
	// named parameter placeholder (e.g. :value) to be bound by the
	// caller's connection layer; the data itself is never interpolated.
	Param string
)

// Vars holds the substitution values for Format. Plain string values are
// treated as identifiers, since data positions must be declared with Param.
type Vars map[string]any

// Format renders a SQL template by substituting {var}-style placeholders
// from vars. Literal braces are written as {{ and }}. It is a pure function:
// no I/O, no side effects.
//
// It returns a TemplateError if a referenced placeholder is missing from
// vars, or if an identifier value contains characters outside [A-Za-z0-9_].
func Format(template string, vars Vars) (string, error) {
	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", NewTemplateError(template, "", "unterminated placeholder")
			}
			name := template[i+1 : i+end]
			if !IsValidIdentifier(name) {
				return "", NewTemplateError(template, name, "malformed placeholder name")
			}
			sub, err := substitute(template, name, vars)
			if err != nil {
				return "", err
			}
			b.WriteString(sub)
			i += end + 1
		case c == '}':
			return "", NewTemplateError(template, "", "unmatched '}' in template")
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// MustFormat is like Format but panics on error. It is intended for
// statically-known templates in emitter definitions.
func MustFormat(template string, vars Vars) string {
	s, err := Format(template, vars)
	if err != nil {
		panic(err)
	}
	return s
}

// substitute resolves a single placeholder against vars.
func substitute(template, name string, vars Vars) (string, error) {
	v, ok := vars[name]
	if !ok {
		return "", NewTemplateError(template, name, "no value provided")
	}
	switch v := v.(type) {
	case Ident:
		return checkIdent(template, name, string(v))
	case string:
		return checkIdent(template, name, v)
	case Raw:
		return string(v), nil
	case Param:
		if !IsValidIdentifier(string(v)) {
			return "", NewTemplateError(template, name, fmt.Sprintf("invalid parameter name %q", string(v)))
		}
		return ":" + string(v), nil
	default:
		return "", NewTemplateError(template, name, fmt.Sprintf("unsupported value type %T; use Ident, Raw or Param", v))
	}
}

func checkIdent(template, name, value string) (string, error) {
	if !IsValidIdentifier(value) {
		return "", NewTemplateError(template, name, fmt.Sprintf("unsafe identifier %q", value))
	}
	return value, nil
}

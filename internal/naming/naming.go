// Package naming derives physical database names from git branch names.
// Resolution is deterministic: the same branch, strategy and prefix always
// produce the same database name.
package naming

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Strategy determines how the configured prefix is combined with the
// sanitized branch name.
type Strategy string

const (
	// StrategyPrefix produces "<prefix>_<branch>"
	StrategyPrefix Strategy = "prefix"
	// StrategySuffix produces "<branch>_<prefix>"
	StrategySuffix Strategy = "suffix"
	// StrategyReplace substitutes the {branch} token inside the prefix
	// template, or uses the sanitized branch name alone when the template
	// carries no token.
	StrategyReplace Strategy = "replace"
)

// BranchToken is the placeholder recognized inside a replace-strategy prefix template.
const BranchToken = "{branch}"

// MaxIdentifierLength is the PostgreSQL limit for database identifiers.
const MaxIdentifierLength = 63

// Resolve maps a branch name to a valid PostgreSQL database identifier.
func Resolve(branch string, strategy Strategy, prefix string) string {
	sanitized := Sanitize(branch)

	var name string
	switch strategy {
	case StrategySuffix:
		name = fmt.Sprintf("%s_%s", sanitized, prefix)
	case StrategyReplace:
		if strings.Contains(prefix, BranchToken) {
			name = strings.ReplaceAll(prefix, BranchToken, sanitized)
		} else {
			name = sanitized
		}
	default:
		name = fmt.Sprintf("%s_%s", prefix, sanitized)
	}

	return truncate(name)
}

// Sanitize converts a branch name into a valid identifier fragment:
// lowercase, path separators and disallowed characters collapsed to
// underscores, no leading digit.
func Sanitize(branch string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(branch) {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '_', ch == '$':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}

	sanitized := b.String()
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.TrimSuffix(sanitized, "_")

	if sanitized == "" {
		return "branch"
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "_" + sanitized
	}
	return sanitized
}

// truncate shortens names beyond the identifier limit, appending a short
// hash of the full name so distinct long names stay distinct.
func truncate(name string) string {
	if len(name) <= MaxIdentifierLength {
		return name
	}

	h := fnv.New32a()
	h.Write([]byte(name))
	suffix := fmt.Sprintf("_%x", h.Sum32()&0xFFFF)

	return name[:MaxIdentifierLength-len(suffix)] + suffix
}

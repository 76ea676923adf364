// Package permission merges and validates tool permission pattern lists.
//
// A pattern is a tool name optionally followed by a parenthesized argument
// suffix: "Bash", "Bash(git *)", "WebFetch(domain:example.com)". Merging is
// order-sensitive and resolves conflicts with strict deny > ask > allow
// priority.
package permission

// Rule is a parsed permission pattern.
type Rule struct {
	Tool    string
	Pattern string
}

// ParseRule parses a pattern string like "Bash(npm:*)" or "Read" into a Rule.
//
// Format: ToolName or ToolName(pattern). Parentheses and backslashes inside
// the pattern may be escaped with a backslash. A string whose parentheses are
// unbalanced parses as a bare tool name equal to the whole string.
func ParseRule(s string) Rule {
	parenIdx := findUnescaped(s, '(')
	if parenIdx == -1 {
		return Rule{Tool: s}
	}

	closeIdx := findLastUnescaped(s, ')')
	if closeIdx == -1 || closeIdx <= parenIdx || closeIdx != len(s)-1 {
		return Rule{Tool: s}
	}

	toolName := s[:parenIdx]
	if toolName == "" {
		return Rule{Tool: s}
	}

	content := s[parenIdx+1 : closeIdx]
	// Empty parens or just "*" means match all, same as no pattern.
	if content == "" || content == "*" {
		return Rule{Tool: toolName}
	}

	return Rule{Tool: toolName, Pattern: unescapeRuleContent(content)}
}

// FormatRule converts a Rule back to its string form, inverse of ParseRule.
func FormatRule(r Rule) string {
	if r.Pattern == "" {
		return r.Tool
	}
	return r.Tool + "(" + escapeRuleContent(r.Pattern) + ")"
}

// findUnescaped finds the first unescaped occurrence of ch in s.
func findUnescaped(s string, ch byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ch {
			backslashes := 0
			j := i - 1
			for j >= 0 && s[j] == '\\' {
				backslashes++
				j--
			}
			if backslashes%2 == 0 {
				return i
			}
		}
	}
	return -1
}

// findLastUnescaped finds the last unescaped occurrence of ch in s.
func findLastUnescaped(s string, ch byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ch {
			backslashes := 0
			j := i - 1
			for j >= 0 && s[j] == '\\' {
				backslashes++
				j--
			}
			if backslashes%2 == 0 {
				return i
			}
		}
	}
	return -1
}

func unescapeRuleContent(s string) string {
	var result []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			next := s[i+1]
			if next == '(' || next == ')' || next == '\\' {
				result = append(result, next)
				i++
				continue
			}
		}
		result = append(result, s[i])
	}
	return string(result)
}

func escapeRuleContent(s string) string {
	var result []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '(' || s[i] == ')' || s[i] == '\\' {
			result = append(result, '\\')
		}
		result = append(result, s[i])
	}
	return string(result)
}

package calldata

import (
	"fmt"
	"strings"
)

// matchingClose returns the index of the bracket closing the one at s[open].
func matchingClose(s string, open int) (int, error) {
	depth := 0
	inQuote := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return 0, fmt.Errorf("unexpected %q at offset %d", c, i)
			}
			if depth == 0 {
				if (s[open] == '(') != (c == ')') {
					return 0, fmt.Errorf("mismatched %q at offset %d", c, i)
				}
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("missing closing bracket for %q at offset %d", s[open], open)
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets or
// double quotes.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var (
		parts   []string
		depth   int
		inQuote bool
		start   int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q at offset %d", c, i)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 || inQuote {
		return nil, fmt.Errorf("unbalanced brackets or quotes in %q", s)
	}
	return append(parts, strings.TrimSpace(s[start:])), nil
}

// splitLiteral splits an array "[a,b]" or tuple "(a,b)" literal into its
// elements.
func splitLiteral(text string, open, close byte) ([]string, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != open || s[len(s)-1] != close {
		return nil, fmt.Errorf("expected %c...%c literal, got %q", open, close, text)
	}
	end, err := matchingClose(s, 0)
	if err != nil {
		return nil, err
	}
	if end != len(s)-1 {
		return nil, fmt.Errorf("unexpected %q after literal", s[end+1:])
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []string{}, nil
	}
	parts, err := splitTopLevel(inner, ',')
	if err != nil {
		return nil, err
	}
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("empty element #%d in %q", i, text)
		}
	}
	return parts, nil
}

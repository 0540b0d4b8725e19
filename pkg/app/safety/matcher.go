package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher decides whether a single piece of text triggers a category.
type Matcher interface {
	Matches(text string) bool
}

// Go's \b only understands ASCII word characters, so boundaries are spelled out with
// Unicode letter and number classes.
const (
	boundaryPrefix = `(?i)(?:^|[^\p{L}\p{N}_])(?:`
	boundarySuffix = `)(?:$|[^\p{L}\p{N}_])`
)

type regexMatcher struct {
	pattern string
	re      *regexp.Regexp
}

func NewRegexMatcher(pattern string) (Matcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	re, err := regexp.Compile(boundaryPrefix + pattern + boundarySuffix)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &regexMatcher{pattern: pattern, re: re}, nil
}

func (m *regexMatcher) Matches(text string) bool {
	return m.re.MatchString(text)
}

func (m *regexMatcher) String() string {
	return m.pattern
}

// wordsMatcher matches any of a fixed list of literal words or phrases.
type wordsMatcher struct {
	re *regexp.Regexp
}

func NewWordsMatcher(words []string) (Matcher, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("no words given")
	}
	pattern := ""
	for i, w := range words {
		if w == "" {
			return nil, fmt.Errorf("empty word at position %d", i)
		}
		if i > 0 {
			pattern += "|"
		}
		pattern += regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile(boundaryPrefix + pattern + boundarySuffix)
	if err != nil {
		return nil, err
	}
	return &wordsMatcher{re: re}, nil
}

func (m *wordsMatcher) Matches(text string) bool {
	return m.re.MatchString(text)
}

// exceptMatcher blanks out benign phrases before asking the wrapped matcher, so a word
// with an innocent reading ("pukul 7", seven o'clock) only counts outside those phrases.
type exceptMatcher struct {
	inner  Matcher
	except *regexp.Regexp
}

func NewExceptMatcher(inner Matcher, exceptions []string) (Matcher, error) {
	if len(exceptions) == 0 {
		return inner, nil
	}
	for i, e := range exceptions {
		if e == "" {
			return nil, fmt.Errorf("empty exception at position %d", i)
		}
	}
	re, err := regexp.Compile(boundaryPrefix + strings.Join(exceptions, "|") + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid exceptions: %w", err)
	}
	return &exceptMatcher{inner: inner, except: re}, nil
}

func (m *exceptMatcher) Matches(text string) bool {
	return m.inner.Matches(m.except.ReplaceAllString(text, " "))
}

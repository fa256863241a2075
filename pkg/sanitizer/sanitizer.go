package sanitizer

import (
	"net/url"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims the string and collapses internal whitespace runs
// to single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func lower(s string) string {
	return strings.ToLower(s)
}

// NormalizeRole produces the canonical form used for role matching:
// whitespace-collapsed, case-folded. Exact match only - no stemming, no
// substrings ("bass" must never match "bassist").
func NormalizeRole(s string) string {
	p := Pipeline{
		TrimAndNormalize,
		lower,
	}
	return p.Apply(s)
}

// NormalizeName normalizes display names without case-folding them.
func NormalizeName(s string) string {
	return TrimAndNormalize(s)
}

// NormalizeSkills dedups and normalizes a required-skills list.
func NormalizeSkills(skills []string) []string {
	return NormalizeStringSlice(skills, NormalizeRole)
}

// SanitizeURL normalizes screenshot URLs: https enforced, host lowercased,
// www and utm_* noise stripped. Returns "" for anything unparseable.
func SanitizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Host = strings.ToLower(u.Host)
	if after, ok := strings.CutPrefix(u.Host, "www."); ok {
		u.Host = after
	}
	u.Path = strings.TrimSuffix(strings.TrimSpace(u.Path), "/")

	q := u.Query()
	qClean := url.Values{}
	for k, v := range q {
		key := strings.TrimSpace(strings.ToLower(k))
		if strings.HasPrefix(key, "utm_") {
			continue
		}
		for _, val := range v {
			value := strings.TrimSpace(val)
			if value != "" {
				qClean.Add(key, value)
			}
		}
	}
	u.RawQuery = qClean.Encode()

	return u.String()
}

package types

import (
	"strings"
)

// PaperID is the canonical arXiv identifier of a paper, e.g. "1706.03762".
// It never carries a version suffix, a scheme prefix, or URL path segments;
// use CanonicalPaperID to derive one from user input.
type PaperID string

func (x PaperID) String() string {
	return string(x)
}

// Validate checks if the PaperID is usable as a store key
func (x PaperID) Validate() error {
	if x == "" {
		return ErrInvalidPaperLink
	}
	return nil
}

// URL returns the arXiv abstract page URL for the paper
func (x PaperID) URL() string {
	return "https://arxiv.org/abs/" + string(x)
}

// CanonicalPaperID normalizes a raw paper reference into a canonical PaperID.
// Accepted inputs: full abs/pdf URLs, "arXiv:"-prefixed identifiers, bare
// identifiers with or without a version suffix. Rules are applied in order:
// path extraction, prefix strip, version strip. Malformed input passes
// through unchanged instead of failing.
func CanonicalPaperID(raw string) PaperID {
	s := extractPaperID(strings.TrimSpace(raw))

	if len(s) >= 6 && strings.EqualFold(s[:6], "arxiv:") {
		s = s[6:]
	}

	if i := strings.LastIndex(s, "v"); i > 0 && allDigits(s[i+1:]) {
		s = s[:i]
	}

	return PaperID(strings.TrimSpace(s))
}

func extractPaperID(link string) string {
	if i := strings.LastIndex(link, "/abs/"); i >= 0 {
		return strings.TrimRight(link[i+len("/abs/"):], "/")
	}
	if i := strings.LastIndex(link, "/pdf/"); i >= 0 {
		return strings.TrimSuffix(link[i+len("/pdf/"):], ".pdf")
	}
	return link
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

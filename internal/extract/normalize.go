// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

// doiPrefixPattern strips scheme-bearing DOI resolver prefixes.
var doiPrefixPattern = regexp.MustCompile(`(?i)^https?://(dx\.)?doi\.org/`)

// arxivIDPattern matches modern arXiv IDs with an optional version suffix:
// "2301.07041", "2301.07041v2".
var arxivIDPattern = regexp.MustCompile(`(\d{4}\.\d{4,5})(v\d+)?`)

// arxivURLPattern pulls the ID out of abs/pdf URLs, including legacy IDs
// like "cs/0112017".
var arxivURLPattern = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/([^?#\s]+?)(v\d+)?(\.pdf)?$`)

// NormalizeDOI returns the canonical form of a DOI: trimmed, lower-cased,
// without any doi.org resolver prefix. Empty input stays empty.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return ""
	}
	doi = doiPrefixPattern.ReplaceAllString(doi, "")
	return strings.ToLower(doi)
}

// NormalizeArxivID returns the canonical form of an arXiv identifier:
// trimmed, lower-cased, without "arXiv:" or URL prefixes and without a
// version suffix. Empty or unrecognizable input returns "".
func NormalizeArxivID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	if m := arxivURLPattern.FindStringSubmatch(id); m != nil {
		id = m[1]
	}
	id = strings.TrimPrefix(strings.TrimPrefix(id, "arXiv:"), "arxiv:")

	if m := arxivIDPattern.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	// Legacy IDs ("cs/0112017") carry no version suffix to strip.
	if strings.Contains(id, "/") {
		return strings.ToLower(id)
	}
	return ""
}

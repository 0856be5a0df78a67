// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "regexp"

// pageObjectPattern matches PDF page object markers. "/Type /Pages" is the
// page-tree node, not a page, so the trailing "s" must be excluded.
var pageObjectPattern = regexp.MustCompile(`/Type\s*/Page[^s]`)

// PageCount estimates the number of pages in a document. PDFs are scanned
// for page object markers; any other media counts as a single page. The
// scan is a heuristic good enough for the {{pageCount}} template field,
// not a full PDF parse.
func PageCount(data []byte, mimeType string) int {
	if mimeType != "application/pdf" {
		return 1
	}
	n := len(pageObjectPattern.FindAll(data, -1))
	if n == 0 {
		return 1
	}
	return n
}

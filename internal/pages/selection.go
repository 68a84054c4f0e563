package pages

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/papertrim/internal/errs"
)

var whitespaceRe = regexp.MustCompile(`\s`)

// maxPages bounds a selection parsed before the document's page count is known.
const maxPages = 1 << 16

// ParseSelection parses a page selection such as "2", "2,4" or "1,3-5,9" into page
// numbers in the order written. Ranges expand ascending. Nothing is sorted or
// deduplicated; Remove decides whether the resulting list is acceptable.
//
// Every page must lie within 1..pageCount, checked before a range is expanded.
// Pass pageCount <= 0 when the document has not been read yet.
func ParseSelection(sel string, pageCount int) ([]int, error) {
	limit := pageCount
	if limit <= 0 {
		limit = maxPages
	}

	sel = whitespaceRe.ReplaceAllString(sel, "")
	if sel == "" {
		return nil, nil
	}

	var pageList []int
	for _, part := range strings.Split(sel, ",") {
		if part == "" {
			return nil, errs.InvalidRequest("empty entry in page selection %q", sel)
		}
		if !strings.Contains(part, "-") {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, errs.InvalidRequest("invalid page number: %s", part)
			}
			if n < 1 || n > limit {
				return nil, errs.PageOutOfRange(n, limit)
			}
			if len(pageList) >= limit {
				return nil, errs.InvalidRequest("page selection %q lists more than %d pages", sel, limit)
			}
			pageList = append(pageList, n)
			continue
		}

		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, errs.InvalidRequest("invalid range: %s", part)
		}
		start, err := strconv.Atoi(rangeParts[0])
		if err != nil {
			return nil, errs.InvalidRequest("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(rangeParts[1])
		if err != nil {
			return nil, errs.InvalidRequest("invalid end page: %s", rangeParts[1])
		}
		if start > end {
			return nil, errs.InvalidRequest("invalid range: start > end (%d > %d)", start, end)
		}
		if start < 1 {
			return nil, errs.PageOutOfRange(start, limit)
		}
		if end > limit {
			return nil, errs.PageOutOfRange(end, limit)
		}
		// A list longer than the document must repeat a page.
		if len(pageList)+end-start+1 > limit {
			return nil, errs.InvalidRequest("page selection %q lists more than %d pages", sel, limit)
		}
		for i := start; i <= end; i++ {
			pageList = append(pageList, i)
		}
	}
	return pageList, nil
}

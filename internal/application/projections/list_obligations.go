package projections

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tiagotdas/calendario-fiscal/internal/application/listutil"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// Obligation list columns and filters accepted from query strings.
var (
	ObligationSortColumns = []string{"date", "title"}
	ObligationFilterKeys  = []string{"sphere", "month"}
)

// ListObligationsQuery carries list parameters for an obligation list.
type ListObligationsQuery struct {
	Params listutil.ListParams
}

// ListObligationsResult is one page of the filtered list.
type ListObligationsResult struct {
	Obligations []obligation.Obligation
	Page        listutil.PageInfo
}

// QueryListObligations filters, sorts and paginates an in-memory obligation list.
// PRE: all is a complete snapshot (or the placeholder list)
// POST: without a sort column the store order is kept; all is not modified
// INVARIANT: search is case- and accent-insensitive on the title only
func QueryListObligations(query ListObligationsQuery, all []obligation.Obligation) ListObligationsResult {
	p := query.Params
	search := searchKey(strings.TrimSpace(p.Search))
	sphere := p.Filters["sphere"]
	month := p.Filters["month"]

	matched := make([]obligation.Obligation, 0, len(all))
	for _, o := range all {
		if sphere != "" && !strings.EqualFold(o.Sphere, sphere) {
			continue
		}
		if month != "" && !strings.HasPrefix(o.Date, month+"-") {
			continue
		}
		if search != "" && !strings.Contains(searchKey(o.Title), search) {
			continue
		}
		matched = append(matched, o)
	}

	if p.Sort != "" {
		slices.SortStableFunc(matched, func(a, b obligation.Obligation) int {
			c := cmp.Compare(a.Date, b.Date)
			if p.Sort == "title" {
				c = cmp.Compare(searchKey(a.Title), searchKey(b.Title))
			}
			if p.Dir == "desc" {
				return -c
			}
			return c
		})
	}

	info := listutil.NewPageInfo(p.Page, p.PerPage, len(matched))
	return ListObligationsResult{
		Obligations: listutil.Paginate(matched, info),
		Page:        info,
	}
}

// searchKey folds case and strips diacritics, so "Obrigação" matches "obrigacao".
func searchKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

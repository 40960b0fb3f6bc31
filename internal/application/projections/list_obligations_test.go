package projections

import (
	"testing"

	"github.com/tiagotdas/calendario-fiscal/internal/application/listutil"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

var listFixture = []obligation.Obligation{
	{ID: "1", Title: "DCTFWeb", Date: "2024-03-15", Sphere: obligation.SphereFederal},
	{ID: "2", Title: "ICMS", Date: "2024-03-20", Sphere: obligation.SphereEstadual},
	{ID: "3", Title: "ISS", Date: "2024-03-10", Sphere: obligation.SphereMunicipal},
	{ID: "4", Title: "Declaração anual", Date: "2024-04-30", Sphere: obligation.SphereFederal},
}

func ids(list []obligation.Obligation) string {
	var s string
	for _, o := range list {
		s += o.ID
	}
	return s
}

func TestQueryListObligations(t *testing.T) {
	tests := []struct {
		name   string
		params listutil.ListParams
		want   string
	}{
		{"no params keeps store order", listutil.ListParams{}, "1234"},
		{"sphere filter", listutil.ListParams{FilterParams: listutil.FilterParams{Filters: map[string]string{"sphere": "federal"}}}, "14"},
		{"month filter", listutil.ListParams{FilterParams: listutil.FilterParams{Filters: map[string]string{"month": "2024-03"}}}, "123"},
		{"accent-insensitive search", listutil.ListParams{FilterParams: listutil.FilterParams{Search: "DECLARACAO"}}, "4"},
		{"sort by date", listutil.ListParams{SortParams: listutil.SortParams{Sort: "date", Dir: "asc"}}, "3124"},
		{"sort by title desc", listutil.ListParams{SortParams: listutil.SortParams{Sort: "title", Dir: "desc"}}, "3241"},
		{"second page", listutil.ListParams{PageParams: listutil.PageParams{Page: 2, PerPage: 3}}, "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := QueryListObligations(ListObligationsQuery{Params: tt.params}, listFixture)
			if got := ids(res.Obligations); got != tt.want {
				t.Errorf("ids = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQueryListObligations_DoesNotReorderInput(t *testing.T) {
	in := append([]obligation.Obligation(nil), listFixture...)
	QueryListObligations(ListObligationsQuery{Params: listutil.ListParams{SortParams: listutil.SortParams{Sort: "date"}}}, in)
	if ids(in) != "1234" {
		t.Errorf("input reordered: %s", ids(in))
	}
}

func TestQueryListObligations_PageInfo(t *testing.T) {
	res := QueryListObligations(ListObligationsQuery{Params: listutil.ListParams{PageParams: listutil.PageParams{Page: 1, PerPage: 2}}}, listFixture)
	if res.Page.Total != 4 || res.Page.TotalPages != 2 || len(res.Obligations) != 2 {
		t.Errorf("page = %+v, rows = %d", res.Page, len(res.Obligations))
	}
}

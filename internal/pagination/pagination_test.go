package pagination

import "testing"

func TestPageRequest_Defaults(t *testing.T) {
	tests := []struct {
		name         string
		in           PageRequest
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{"zero_values", PageRequest{}, 1, DefaultPageSize, 0},
		{"explicit", PageRequest{Page: 3, PageSize: 10}, 3, 10, 20},
		{"oversized_page_size", PageRequest{Page: 2, PageSize: 500}, 2, MaxPageSize, MaxPageSize},
		{"negative_page", PageRequest{Page: -1, PageSize: 5}, 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Defaults()
			if p.Page != tt.wantPage || p.PageSize != tt.wantPageSize {
				t.Errorf("expected page=%d size=%d, got page=%d size=%d", tt.wantPage, tt.wantPageSize, p.Page, p.PageSize)
			}
			if p.Offset() != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, p.Offset())
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 1, 20, 41)
	if resp.Data == nil {
		t.Error("expected empty slice, got nil")
	}
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}

	empty := NewPageResponse([]int{}, 1, 20, 0)
	if empty.TotalPages != 0 {
		t.Errorf("expected 0 pages, got %d", empty.TotalPages)
	}
}

package pagination

import "testing"

func TestDefaults(t *testing.T) {
	tests := []struct {
		name       string
		in         PageRequest
		page, size int
		wantOffset int
	}{
		{"empty", PageRequest{}, 1, DefaultPageSize, 0},
		{"explicit", PageRequest{Page: 3, PageSize: 10}, 3, 10, 20},
		{"clamped", PageRequest{Page: 2, PageSize: 500}, 2, MaxPageSize, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.page || req.PageSize != tt.size {
				t.Errorf("got page=%d size=%d, want %d/%d", req.Page, req.PageSize, tt.page, tt.size)
			}
			if req.Offset() != tt.wantOffset {
				t.Errorf("offset = %d, want %d", req.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 1, 20, 0)
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Error("expected empty non-nil data")
	}
	if resp.TotalPages != 0 {
		t.Errorf("expected 0 pages, got %d", resp.TotalPages)
	}

	ints := NewPageResponse([]int{1, 2}, 2, 2, 5)
	if ints.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", ints.TotalPages)
	}
}

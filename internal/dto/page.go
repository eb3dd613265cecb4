package dto

const MaxPageSize = 100

type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize clamps the page to >= 1 and the size to 1..MaxPageSize, using
// def when no size was given.
func (p PageRequest) Normalize(def int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = def
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.PageSize }

type PageInfo struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"hasNext"`
}

func NewPageInfo(p PageRequest, total int64) PageInfo {
	return PageInfo{
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    total,
		HasNext:  int64(p.Page*p.PageSize) < total,
	}
}

package listing

import (
	"strings"

	"nestiq.ai/listing-gateway/app/domain/warming"
	"nestiq.ai/listing-gateway/app/utils/httpclients/listinghub"
)

// SearchFilter is the request-side search shape; gin binds it straight from
// query parameters.
type SearchFilter struct {
	City     string `form:"city" json:"city,omitempty"`
	MinPrice int64  `form:"min_price" json:"min_price,omitempty"`
	MaxPrice int64  `form:"max_price" json:"max_price,omitempty"`
	Bedrooms int    `form:"bedrooms" json:"bedrooms,omitempty"`
	Status   string `form:"status" json:"status,omitempty"`
	Sort     string `form:"sort" json:"sort,omitempty"`
	Page     int    `form:"page" json:"page,omitempty"`
	PageSize int    `form:"page_size" json:"page_size,omitempty"`
}

// Normalized canonicalizes free-text fields and fills paging defaults so
// equivalent filters share one cache identity.
func (f SearchFilter) Normalized() SearchFilter {
	f.City = strings.ToLower(strings.TrimSpace(f.City))
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	f.Sort = strings.ToLower(strings.TrimSpace(f.Sort))
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = listinghub.DefaultPageSize
	}
	if f.PageSize > listinghub.MaxPageSize {
		f.PageSize = listinghub.MaxPageSize
	}
	return f
}

// Upstream maps the filter onto the provider query shape.
func (f SearchFilter) Upstream() listinghub.SearchQuery {
	return listinghub.SearchQuery{
		City:     f.City,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		Bedrooms: f.Bedrooms,
		Status:   f.Status,
		Sort:     f.Sort,
		Page:     f.Page,
		PageSize: f.PageSize,
	}
}

// Fingerprint is the canonical cache identity of the normalized filter.
func (f SearchFilter) Fingerprint() (string, error) {
	return warming.SearchFingerprint(f.Normalized().Upstream())
}

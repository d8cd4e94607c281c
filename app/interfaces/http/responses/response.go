package responses

// ErrorResponse carries a stable machine-readable code alongside the
// human-readable message. Codes are fixed per call site so clients can
// branch on them without parsing the text.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// GeneralResponse wraps a single result object.
type GeneralResponse[T any] struct {
	Status string `json:"status"`
	Result T      `json:"result"`
}

// ListlResponse wraps a page of results together with the paging cursor
// that produced it.
type ListlResponse[T any] struct {
	Status   string `json:"status"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int64  `json:"total"`
	Results  []T    `json:"results"`
}

const ResponseCodeOk = "000000"

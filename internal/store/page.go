package store

// Page is the list-response envelope shared by every resource.
type Page[T any] struct {
	Docs  []T `json:"docs"`
	Total int `json:"total"`
	Limit int `json:"limit"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// NewPage assembles the envelope, deriving the page count from the total.
// Pages is at least 1 so an empty collection still reports one (empty) page.
func NewPage[T any](docs []T, total, limit, page int) *Page[T] {
	if docs == nil {
		docs = []T{}
	}
	pages := 1
	if limit > 0 && total > limit {
		pages = (total + limit - 1) / limit
	}
	return &Page[T]{
		Docs:  docs,
		Total: total,
		Limit: limit,
		Page:  page,
		Pages: pages,
	}
}

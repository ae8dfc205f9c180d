package shared

// ListFilters captures pagination, search and filter options for catalog
// listings.
type ListFilters struct {
	Page       int
	Limit      int
	Search     string
	SortBy     string
	SortDir    string
	CategoryID *int64
	ProducerID *int64
	IsActive   *bool
}

// Normalize clamps paging values to sane defaults.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

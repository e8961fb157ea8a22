package model

import "fmt"

// SortField is a column notifications can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByType      SortField = "type"
	SortByRead      SortField = "read"
)

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// DefaultPageSize is the page size used when none is given.
const DefaultPageSize = 20

// MaxPageSize bounds the page size a query may ask for.
const MaxPageSize = 100

// SearchCriteria controls filtering, sorting, and pagination of a
// notification query. Nil filters match everything.
type SearchCriteria struct {
	Page     int
	Size     int
	Type     *NotificationType
	Read     *bool
	Critical *bool
	RdqID    *int64

	SortBy        SortField
	SortDirection SortDirection
}

// DefaultCriteria returns the first page, newest first.
func DefaultCriteria() SearchCriteria {
	return SearchCriteria{
		Page:          0,
		Size:          DefaultPageSize,
		SortBy:        SortByCreatedAt,
		SortDirection: SortDesc,
	}
}

// Normalize fills in defaults for zero-valued paging and sort fields.
func (c SearchCriteria) Normalize() SearchCriteria {
	if c.Page < 0 {
		c.Page = 0
	}
	if c.Size <= 0 {
		c.Size = DefaultPageSize
	}
	if c.Size > MaxPageSize {
		c.Size = MaxPageSize
	}
	if c.SortBy == "" {
		c.SortBy = SortByCreatedAt
	}
	if c.SortDirection == "" {
		c.SortDirection = SortDesc
	}
	return c
}

// Validate reports the first invalid field, if any. A zero size or empty
// sort field is valid and means the default.
func (c SearchCriteria) Validate() error {
	if c.Page < 0 {
		return fmt.Errorf("page must not be negative, got %d", c.Page)
	}
	if c.Size < 0 {
		return fmt.Errorf("size must not be negative, got %d", c.Size)
	}
	if c.Size > MaxPageSize {
		return fmt.Errorf("size must be at most %d, got %d", MaxPageSize, c.Size)
	}
	if c.Type != nil && !c.Type.Valid() {
		return fmt.Errorf("unknown notification type %q", *c.Type)
	}
	switch c.SortBy {
	case "", SortByCreatedAt, SortByType, SortByRead:
	default:
		return fmt.Errorf("unknown sort field %q", c.SortBy)
	}
	switch c.SortDirection {
	case "", SortAsc, SortDesc:
	default:
		return fmt.Errorf("unknown sort direction %q", c.SortDirection)
	}
	return nil
}

// WithPage returns a copy of c pointing at page.
func (c SearchCriteria) WithPage(page int) SearchCriteria {
	c.Page = page
	return c
}

// Clone returns a deep copy of c.
func (c SearchCriteria) Clone() SearchCriteria {
	out := c
	if c.Type != nil {
		t := *c.Type
		out.Type = &t
	}
	if c.Read != nil {
		r := *c.Read
		out.Read = &r
	}
	if c.Critical != nil {
		cr := *c.Critical
		out.Critical = &cr
	}
	if c.RdqID != nil {
		id := *c.RdqID
		out.RdqID = &id
	}
	return out
}

// Bool returns a pointer to b, for building filters.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// TypePtr returns a pointer to t.
func TypePtr(t NotificationType) *NotificationType { return &t }

package notiflist

import (
	"fmt"
	"strings"

	"github.com/nhle/rdq-notify/internal/model"
)

// NextType advances the type filter through every type and back to none.
func NextType(c model.SearchCriteria) model.SearchCriteria {
	c = c.Clone()
	if c.Type == nil {
		c.Type = model.TypePtr(model.AllNotificationTypes[0])
		return c.WithPage(0)
	}
	for i, t := range model.AllNotificationTypes {
		if t == *c.Type && i+1 < len(model.AllNotificationTypes) {
			c.Type = model.TypePtr(model.AllNotificationTypes[i+1])
			return c.WithPage(0)
		}
	}
	c.Type = nil
	return c.WithPage(0)
}

// NextRead cycles the read filter: all, unread only, read only.
func NextRead(c model.SearchCriteria) model.SearchCriteria {
	c = c.Clone()
	c.Read = cycle(c.Read, false)
	return c.WithPage(0)
}

// NextCritical cycles the critical filter: all, critical only, non-critical.
func NextCritical(c model.SearchCriteria) model.SearchCriteria {
	c = c.Clone()
	c.Critical = cycle(c.Critical, true)
	return c.WithPage(0)
}

// cycle steps a tri-state filter from nil to first, to !first, to nil.
func cycle(v *bool, first bool) *bool {
	switch {
	case v == nil:
		return model.Bool(first)
	case *v == first:
		return model.Bool(!first)
	default:
		return nil
	}
}

// ResetFilters drops every filter but keeps the page size and sort order.
func ResetFilters(c model.SearchCriteria) model.SearchCriteria {
	return model.SearchCriteria{
		Size:          c.Size,
		SortBy:        c.SortBy,
		SortDirection: c.SortDirection,
	}
}

// Describe renders the active filters, or "all" when there are none.
func Describe(c model.SearchCriteria) string {
	var parts []string
	if c.Type != nil {
		parts = append(parts, c.Type.Label())
	}
	if c.Read != nil {
		if *c.Read {
			parts = append(parts, "read")
		} else {
			parts = append(parts, "unread")
		}
	}
	if c.Critical != nil {
		if *c.Critical {
			parts = append(parts, "critical")
		} else {
			parts = append(parts, "non-critical")
		}
	}
	if c.RdqID != nil {
		parts = append(parts, fmt.Sprintf("RDQ #%d", *c.RdqID))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}

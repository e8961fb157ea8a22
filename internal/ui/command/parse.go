package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nhle/rdq-notify/internal/model"
)

// Action is what a palette command asks the notification center to do.
type Action int

const (
	// ActionFilter replaces the current criteria and fetches page 0.
	ActionFilter Action = iota
	ActionRefresh
	ActionMarkAllRead
	ActionPreferences
	ActionQuit
)

// Command is a parsed palette line.
type Command struct {
	Action   Action
	Criteria model.SearchCriteria
}

// Parse interprets a palette line against the current criteria.
//
//	refresh | read-all | prefs | quit
//	rdq <id> | rdq            filter by RDQ, or clear that filter
//	type <TYPE> | type        filter by notification type, or clear
//	sort <field> [asc|desc]   createdAt, type, or read
//	size <n>                  page size
func Parse(line string, current model.SearchCriteria) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "refresh", "r":
		return Command{Action: ActionRefresh}, nil
	case "read-all", "readall":
		return Command{Action: ActionMarkAllRead}, nil
	case "prefs", "preferences":
		return Command{Action: ActionPreferences}, nil
	case "quit", "q":
		return Command{Action: ActionQuit}, nil
	}

	c := current.Clone().WithPage(0)
	switch name {
	case "rdq":
		if len(args) == 0 {
			c.RdqID = nil
			break
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return Command{}, fmt.Errorf("invalid RDQ id %q", args[0])
		}
		c.RdqID = model.Int64(id)

	case "type":
		if len(args) == 0 {
			c.Type = nil
			break
		}
		t := model.NotificationType(strings.ToUpper(args[0]))
		if !t.Valid() {
			return Command{}, fmt.Errorf("unknown notification type %q", args[0])
		}
		c.Type = &t

	case "sort":
		if len(args) == 0 {
			return Command{}, fmt.Errorf("sort needs a field")
		}
		c.SortBy = model.SortField(args[0])
		c.SortDirection = model.SortDesc
		if len(args) > 1 {
			c.SortDirection = model.SortDirection(strings.ToUpper(args[1]))
		}

	case "size":
		if len(args) == 0 {
			return Command{}, fmt.Errorf("size needs a number")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return Command{}, fmt.Errorf("invalid page size %q", args[0])
		}
		c.Size = n

	default:
		return Command{}, fmt.Errorf("unknown command %q", name)
	}

	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return Command{Action: ActionFilter, Criteria: c}, nil
}

// Package schema is the single source of truth for the assistant's callable
// operations. The LLM layer derives its tool declarations from it, and the
// dispatcher validates every incoming function call against it before any
// domain service runs.
package schema

import (
	"fmt"
)

// ParamType is the JSON-schema style type of a parameter.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeArray  ParamType = "array"
	TypeObject ParamType = "object"
)

// Param describes one argument of an operation.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	// Items is the element type for TypeArray parameters.
	Items    ParamType
	Required bool
}

// Descriptor describes one callable operation.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

// RequiredParams returns the names of the operation's required parameters.
func (d Descriptor) RequiredParams() []string {
	var names []string
	for _, p := range d.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Registry is the fixed, enumerable operation catalog.
type Registry struct {
	ordered []Descriptor
	byName  map[string]Descriptor
}

// Operation names known to the registry.
const (
	OpSetReminder          = "setReminder"
	OpGetReminder          = "getReminder"
	OpScheduleEvent        = "scheduleEvent"
	OpGetUpcomingEvents    = "getUpcomingEvents"
	OpCancelEvent          = "cancelEvent"
	OpSetRecurringReminder = "setRecurringReminder"
	OpCreateNotionNote     = "createNotionNote"
	OpCreateNotionTable    = "createNotionTable"
	OpAddNotionTableRow    = "addNotionTableRow"
)

// NotionOperation reports whether the operation requires a linked Notion
// account before it may run.
func NotionOperation(name string) bool {
	switch name {
	case OpCreateNotionNote, OpCreateNotionTable, OpAddNotionTableRow:
		return true
	}
	return false
}

// TimeSensitive reports whether the operation's free text should be scanned
// for date/time/recurrence phrases during argument enrichment.
func TimeSensitive(name string) bool {
	switch name {
	case OpSetReminder, OpScheduleEvent, OpSetRecurringReminder:
		return true
	}
	return false
}

// NewRegistry builds the catalog. The set is fixed at startup; there is no
// runtime registration.
func NewRegistry() *Registry {
	ops := []Descriptor{
		{
			Name:        OpSetReminder,
			Description: "Sets a reminder using the bot's internal reminder system.",
			Params: []Param{
				{Name: "message", Type: TypeString, Description: "Reminder message", Required: true},
				{Name: "time", Type: TypeString, Description: "Time for the reminder (HH:MM format)", Required: true},
				{Name: "date", Type: TypeString, Description: "Date for the reminder (YYYY-MM-DD format)", Required: true},
				{Name: "repeat", Type: TypeString, Description: "Repeat frequency (e.g., 'daily', 'weekly', 'none')"},
			},
		},
		{
			Name:        OpGetReminder,
			Description: "Gets upcoming reminders from the bot's internal system.",
			Params: []Param{
				{Name: "date_range", Type: TypeString, Description: "Date range (e.g., 'today', 'next 3 days', 'this week')"},
			},
		},
		{
			Name:        OpScheduleEvent,
			Description: "Schedules a calendar event using the bot's internal calendar system.",
			Params: []Param{
				{Name: "title", Type: TypeString, Description: "Title of the event", Required: true},
				{Name: "date", Type: TypeString, Description: "Date (YYYY-MM-DD)", Required: true},
				{Name: "time", Type: TypeString, Description: "Time (HH:MM)", Required: true},
				{Name: "location", Type: TypeString, Description: "Location (optional)"},
				{Name: "participants", Type: TypeArray, Items: TypeString, Description: "List of participant names (optional)"},
			},
		},
		{
			Name:        OpGetUpcomingEvents,
			Description: "Retrieves upcoming events from the bot's internal calendar.",
			Params: []Param{
				{Name: "date_range", Type: TypeString, Description: "Date range (e.g., 'today', 'next 7 days')"},
			},
		},
		{
			Name:        OpCancelEvent,
			Description: "Cancels a scheduled event from the bot's internal calendar.",
			Params: []Param{
				{Name: "event_title", Type: TypeString, Description: "Title of the event to cancel", Required: true},
			},
		},
		{
			Name:        OpSetRecurringReminder,
			Description: "Sets a reminder that repeats at a fixed interval.",
			Params: []Param{
				{Name: "message", Type: TypeString, Description: "Reminder message", Required: true},
				{Name: "interval", Type: TypeString, Description: "Repeat interval (e.g., 'every 2 hours', 'daily')", Required: true},
				{Name: "start_time", Type: TypeString, Description: "First occurrence time (HH:MM, optional)"},
			},
		},
		{
			Name:        OpCreateNotionNote,
			Description: "Creates a new note page in Notion under a specified parent page.",
			Params: []Param{
				{Name: "title", Type: TypeString, Description: "The title for the new Notion note page.", Required: true},
				{Name: "content", Type: TypeString, Description: "The main text content for the note.", Required: true},
				{Name: "parent_page_title", Type: TypeString, Description: "The exact title of the existing Notion page where the new note should be created inside.", Required: true},
			},
		},
		{
			Name:        OpCreateNotionTable,
			Description: "Creates a new table (database) in Notion inside a specified parent page. Define columns using the properties_schema parameter.",
			Params: []Param{
				{Name: "title", Type: TypeString, Description: "The title for the new Notion table (database).", Required: true},
				{Name: "parent_page_title", Type: TypeString, Description: "The exact title of the existing Notion page where the new table should be created inside.", Required: true},
				{Name: "properties_schema", Type: TypeObject, Description: "Columns for the table. Keys are column names; values follow the Notion property schema, e.g. {\"Due Date\": {\"date\": {}}, \"Amount\": {\"number\": {\"format\": \"dollar\"}}}. Do not define the Title column here.", Required: true},
			},
		},
		{
			Name:        OpAddNotionTableRow,
			Description: "Adds a new row (page) to an existing Notion table (database).",
			Params: []Param{
				{Name: "database_title", Type: TypeString, Description: "The exact title of the Notion table (database) to add the row to.", Required: true},
				{Name: "entry_data", Type: TypeObject, Description: "Row data. Keys are the table's exact column names; values are the cell contents.", Required: true},
			},
		},
	}

	byName := make(map[string]Descriptor, len(ops))
	for _, op := range ops {
		byName[op.Name] = op
	}
	return &Registry{ordered: ops, byName: byName}
}

// Descriptors returns the catalog in declaration order.
func (r *Registry) Descriptors() []Descriptor {
	return r.ordered
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Validate checks an incoming call against the catalog: the operation must
// exist, every required argument must be present and non-empty, and supplied
// arguments must have the declared shape. It returns a user-presentable error.
func (r *Registry) Validate(name string, args map[string]any) error {
	desc, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("unknown function: %s", name)
	}

	for _, p := range desc.Params {
		v, present := args[p.Name]
		if !present {
			if p.Required {
				return fmt.Errorf("%s: missing required argument %q", name, p.Name)
			}
			continue
		}
		if err := checkType(p, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func checkType(p Param, v any) error {
	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("argument %q must be a string", p.Name)
		}
		if p.Required && s == "" {
			return fmt.Errorf("required argument %q is empty", p.Name)
		}
	case TypeArray:
		switch v.(type) {
		case []any, []string:
		default:
			return fmt.Errorf("argument %q must be an array", p.Name)
		}
	case TypeObject:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("argument %q must be an object", p.Name)
		}
	}
	return nil
}

// Package audit is the append-only record of who changed what in the
// dashboard, and from where.
package audit

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Category is the area of the gym an event touches.
type Category string

const (
	CategoryAccount   Category = "account"
	CategoryMember    Category = "member"
	CategoryBilling   Category = "billing"
	CategoryInventory Category = "inventory"
	CategoryStaff     Category = "staff"
	CategoryEngage    Category = "engagement"
	CategorySecurity  Category = "security"
	CategorySystem    Category = "system"
)

var categories = []Category{
	CategoryAccount, CategoryMember, CategoryBilling, CategoryInventory,
	CategoryStaff, CategoryEngage, CategorySecurity, CategorySystem,
}

func (c Category) Valid() bool { return slices.Contains(categories, c) }

type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
	ActionExport  Action = "export"
	ActionApprove Action = "approve"
	ActionReceive Action = "receive"
	ActionCancel  Action = "cancel"
	ActionPay     Action = "pay"
	ActionImport  Action = "import"
)

var actions = []Action{
	ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionLogout, ActionExport,
	ActionApprove, ActionReceive, ActionCancel, ActionPay, ActionImport,
}

func (a Action) Valid() bool { return slices.Contains(actions, a) }

// Severity orders events from routine to alarming.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

var severities = []Severity{SeverityInfo, SeverityWarning, SeverityCritical}

func (s Severity) Valid() bool { return slices.Contains(severities, s) }

// AtLeast returns every severity ranked s or higher, lowest first.
// An unknown s yields nil.
func (s Severity) AtLeast() []Severity {
	i := slices.Index(severities, s)
	if i < 0 {
		return nil
	}
	return slices.Clone(severities[i:])
}

// Actor is whoever caused the event. Every field may be empty for system work.
type Actor struct {
	ID        string
	Email     string
	Role      string
	IPAddress string
	UserAgent string
}

// Event is one row of the trail.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ActorRole    string    `json:"actor_role"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
}

// New stamps an info-level event for who.
// POST: Validate passes when id is non-empty and c, a are known
func New(id string, at time.Time, who Actor, c Category, a Action) Event {
	return Event{
		ID:         id,
		Timestamp:  at.UTC(),
		Category:   c,
		Action:     a,
		Severity:   SeverityInfo,
		ActorID:    who.ID,
		ActorEmail: who.Email,
		ActorRole:  who.Role,
		IPAddress:  who.IPAddress,
		UserAgent:  who.UserAgent,
	}
}

// On names the resource the event is about.
func (e Event) On(resourceType, resourceID string) Event {
	e.ResourceType, e.ResourceID = resourceType, resourceID
	return e
}

// Escalate raises the severity. It never lowers it.
func (e Event) Escalate(s Severity) Event {
	if slices.Index(severities, s) > slices.Index(severities, e.Severity) {
		e.Severity = s
	}
	return e
}

var ErrMissingID = errors.New("audit event needs an id")

// Validate rejects events the trail would not be able to filter on.
func (e Event) Validate() error {
	switch {
	case e.ID == "":
		return ErrMissingID
	case e.Timestamp.IsZero():
		return errors.New("audit event needs a timestamp")
	case !e.Category.Valid():
		return fmt.Errorf("unknown audit category %q", e.Category)
	case !e.Action.Valid():
		return fmt.Errorf("unknown audit action %q", e.Action)
	case !e.Severity.Valid():
		return fmt.Errorf("unknown audit severity %q", e.Severity)
	}
	return nil
}

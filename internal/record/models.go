package record

import (
	"strings"
	"time"
)

// Ref identifies a record by type and unique name.
type Ref struct {
	Type string
	Name string
}

// String renders the conventional "Type/Name" form used in logs.
func (r Ref) String() string {
	return r.Type + "/" + r.Name
}

// IsZero reports whether the reference carries no identity.
func (r Ref) IsZero() bool {
	return r.Type == "" && r.Name == ""
}

// ExtraRecipient is a role attached to a record that is always included
// in notification resolution, regardless of the transition's own
// allowed-role list. Entries are owned by their record and removed with it.
type ExtraRecipient struct {
	ID   int64
	Role string
}

// Record is a business document under workflow control. Field values are
// dynamic because the workflow state field name is configurable per
// record type.
type Record struct {
	ID              int64
	Type            string
	Name            string
	Owner           string
	Fields          map[string]string
	ExtraRecipients []ExtraRecipient
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Ref returns the record's identity.
func (r *Record) Ref() Ref {
	if r == nil {
		return Ref{}
	}
	return Ref{Type: r.Type, Name: r.Name}
}

// Field returns the trimmed value of a dynamic field, or "" when absent.
func (r *Record) Field(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return strings.TrimSpace(r.Fields[name])
}

// HasField reports whether the record carries the named field, even when
// its value is empty.
func (r *Record) HasField(name string) bool {
	if r == nil || r.Fields == nil {
		return false
	}
	_, ok := r.Fields[name]
	return ok
}

// SetField sets a dynamic field value, allocating the map on first use.
func (r *Record) SetField(name, value string) {
	if r == nil {
		return
	}
	if r.Fields == nil {
		r.Fields = make(map[string]string, 4)
	}
	r.Fields[name] = value
}

// Clone returns a deep copy so snapshots stay untouched by later mutation.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Fields != nil {
		clone.Fields = make(map[string]string, len(r.Fields))
		for key, value := range r.Fields {
			clone.Fields[key] = value
		}
	}
	if r.ExtraRecipients != nil {
		clone.ExtraRecipients = make([]ExtraRecipient, len(r.ExtraRecipients))
		copy(clone.ExtraRecipients, r.ExtraRecipients)
	}
	return &clone
}

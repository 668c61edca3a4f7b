package recipients

import (
	"context"
	"log/slog"
	"strings"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/logging"
	"statewatch/internal/record"
	"statewatch/internal/services"
	"statewatch/internal/workflow"
)

// Resolver turns a record plus its matched transition into the set of
// users who should hear about the state change. Three sources feed the
// set: the record owner, the roles the matched transition allows, and
// the record's extra-recipient entries. Role expansion degrades to an
// empty contribution on directory failure rather than aborting the
// resolution.
type Resolver struct {
	dir        directory.Directory
	broadRoles map[string]struct{}
	linkFields []string
	logger     *slog.Logger
}

// NewResolver builds a resolver from the notification settings. Broad
// roles are folded caselessly so "employee" in a transition matches the
// configured "Employee".
func NewResolver(dir directory.Directory, cfg config.Notifications, logger *slog.Logger) *Resolver {
	broad := make(map[string]struct{}, len(cfg.BroadRoles))
	for _, role := range cfg.BroadRoles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" {
			broad[role] = struct{}{}
		}
	}
	return &Resolver{
		dir:        dir,
		broadRoles: broad,
		linkFields: append([]string(nil), cfg.EmployeeLinkFields...),
		logger:     logging.WithComponent(logger, "recipients"),
	}
}

// Resolve collects the recipients for one detected state change.
// transition may be nil when the observed change matched no configured
// transition; the owner and extra-recipient entries still contribute.
// Resolve never fails: sources that cannot be expanded are logged and
// skipped so a notification to the remaining recipients still goes out.
func (r *Resolver) Resolve(ctx context.Context, rec *record.Record, transition *workflow.Transition) *Set {
	set := NewSet()
	if rec == nil {
		return set
	}
	ctx = services.WithRecord(ctx, rec.Ref())

	r.addOwner(ctx, set, rec)

	if transition != nil {
		for _, role := range transition.Allowed {
			r.expandRole(ctx, set, rec, role)
		}
	}
	for _, entry := range rec.ExtraRecipients {
		r.expandRole(ctx, set, rec, entry.Role)
	}
	return set
}

// log derives a logger carrying the save-cycle context fields.
func (r *Resolver) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, r.logger)
}

func (r *Resolver) addOwner(ctx context.Context, set *Set, rec *record.Record) {
	owner := strings.TrimSpace(rec.Owner)
	if owner == "" {
		return
	}
	user, err := r.dir.User(ctx, owner)
	if err != nil {
		logging.WarnWithContext(r.log(ctx), "owner lookup failed", "owner_lookup_failed",
			logging.String(logging.FieldRecipient, owner),
			logging.Error(err),
			logging.String(logging.FieldImpact, "owner excluded from this notification"))
		return
	}
	if user == nil {
		logging.WarnWithContext(r.log(ctx), "record owner unknown to directory", "owner_unknown",
			logging.String(logging.FieldRecipient, owner),
			logging.String(logging.FieldImpact, "owner excluded from this notification"))
		return
	}
	set.Add(*user)
}

// expandRole chooses the expansion strategy by role identity: broad
// roles expand only to users linked to the record through an employee
// field, every other role expands to its full membership.
func (r *Resolver) expandRole(ctx context.Context, set *Set, rec *record.Record, role string) {
	role = strings.TrimSpace(role)
	if role == "" {
		return
	}
	if r.isBroad(role) {
		r.expandRecordScoped(ctx, set, rec, role)
		return
	}

	users, err := r.dir.UsersWithRole(ctx, role)
	if err != nil {
		logging.WarnWithContext(r.log(ctx), "role expansion failed", "role_expansion_failed",
			logging.String(logging.FieldRole, role),
			logging.Error(err),
			logging.String(logging.FieldImpact, "role members excluded from this notification"))
		return
	}
	set.AddAll(users)
}

// expandRecordScoped resolves a broad role to at most the users the
// record itself points at. Notifying the entire membership of a role
// like Employee on every transition would page the whole company.
func (r *Resolver) expandRecordScoped(ctx context.Context, set *Set, rec *record.Record, role string) {
	matched := false
	for _, field := range r.linkFields {
		employeeID := strings.TrimSpace(rec.Field(field))
		if employeeID == "" {
			continue
		}
		matched = true
		user, err := r.dir.EmployeeUser(ctx, employeeID)
		if err != nil {
			logging.WarnWithContext(r.log(ctx), "employee link lookup failed", "employee_lookup_failed",
				logging.String(logging.FieldRole, role),
				logging.String("employee", employeeID),
				logging.Error(err))
			continue
		}
		if user == nil {
			continue
		}
		set.Add(*user)
	}
	if !matched {
		r.log(ctx).Debug("broad role carried no record link",
			logging.String(logging.FieldRole, role))
	}
}

func (r *Resolver) isBroad(role string) bool {
	_, ok := r.broadRoles[strings.ToLower(role)]
	return ok
}

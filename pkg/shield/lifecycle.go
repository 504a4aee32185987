package shield

import "context"

// LifecycleState is the derived stage of a report. It is computed from the
// report's flags rather than stored, so the stages below are the only values
// a report can present.
type LifecycleState string

const (
	StateDraft              LifecycleState = "Draft"
	StateSubmitted          LifecycleState = "Submitted"
	StateShared             LifecycleState = "Shared"
	StateBroadcast          LifecycleState = "Broadcast"
	StateRemovedFromNetwork LifecycleState = "RemovedFromNetwork"
)

// LifecycleOf derives the stage of a report. Removal dominates broadcast,
// broadcast dominates sharing, and anything unsubmitted is a draft.
func LifecycleOf(report Report) LifecycleState {
	switch {
	case report.NetworkStatus == "REMOVED":
		return StateRemovedFromNetwork
	case report.NetworkStatus == "BROADCAST":
		return StateBroadcast
	case !report.Submitted:
		return StateDraft
	case len(report.SharedWith) > 0:
		return StateShared
	default:
		return StateSubmitted
	}
}

// CanModify reports whether the user belongs to the report's owning
// organization.
func CanModify(user *User, report Report) bool {
	if user == nil {
		return false
	}
	return user.MemberOf(report.OrganizationID)
}

// CanDelete reports whether the user may delete the report. Submitted
// reports are permanent.
func CanDelete(user *User, report Report) bool {
	return CanModify(user, report) && !report.Submitted
}

// Lifecycle drives report stage changes. It shares the report store with the
// rest of the dashboard, so a transition confirmed by the backend is visible
// to every report view immediately.
//
// Preconditions the client can decide locally (missing session, membership,
// resubmission, role gates) fail synchronously without a network call;
// everything else is re-checked by the backend.
type Lifecycle struct {
	client  *Client
	session *Session
	reports *ReportStore
}

// NewLifecycle builds a lifecycle controller over the given session and
// report store.
func NewLifecycle(client *Client, session *Session, reports *ReportStore) *Lifecycle {
	return &Lifecycle{client: client, session: session, reports: reports}
}

func (l *Lifecycle) currentUser(op string) (*User, error) {
	state := l.session.State()
	if !state.IsAuthenticated || state.User == nil {
		return nil, authRequiredErr(op)
	}
	return state.User, nil
}

// Submit finalizes a draft report. Submission is one-way: a report that is
// already submitted is rejected with a conflict, never silently accepted.
func (l *Lifecycle) Submit(ctx context.Context, reportID string) (*Report, error) {
	user, err := l.currentUser("Submit")
	if err != nil {
		return nil, err
	}
	if report, ok := l.reports.Get(reportID); ok {
		if !CanModify(user, report) {
			return nil, forbiddenErr("only members of the owning organization may submit a report")
		}
		if report.Submitted {
			return nil, conflictErr("report already submitted")
		}
	}

	l.reports.beginMutation()
	var report Report
	if err := l.client.post(ctx, "/reports/"+reportID+"/submit", nil, &report); err != nil {
		l.reports.fail(err)
		return nil, err
	}
	l.reports.upsert(report)
	return &report, nil
}

// Share grants a target organization access to a submitted report.
func (l *Lifecycle) Share(ctx context.Context, reportID, sourceOrgID, targetOrgID string) (*Report, error) {
	if err := l.checkShareOp("Share", reportID, sourceOrgID, targetOrgID); err != nil {
		return nil, err
	}
	return l.postShareOp(ctx, reportID, sourceOrgID, "share", targetOrgID)
}

// Revoke withdraws a previously granted share. Sharing and revoking are
// inverses: revoking the last share returns the report to plain Submitted.
func (l *Lifecycle) Revoke(ctx context.Context, reportID, sourceOrgID, targetOrgID string) (*Report, error) {
	if err := l.checkShareOp("Revoke", reportID, sourceOrgID, targetOrgID); err != nil {
		return nil, err
	}
	return l.postShareOp(ctx, reportID, sourceOrgID, "revoke", targetOrgID)
}

func (l *Lifecycle) checkShareOp(op, reportID, sourceOrgID, targetOrgID string) error {
	user, err := l.currentUser(op)
	if err != nil {
		return err
	}
	if sourceOrgID == targetOrgID {
		return conflictErr("a report cannot be shared with its own organization")
	}
	if !user.MemberOf(sourceOrgID) {
		return forbiddenErr("only members of the source organization may manage its shares")
	}
	if report, ok := l.reports.Get(reportID); ok && !report.Submitted {
		return conflictErr("only submitted reports can be shared")
	}
	return nil
}

func (l *Lifecycle) postShareOp(ctx context.Context, reportID, sourceOrgID, verb, targetOrgID string) (*Report, error) {
	l.reports.beginMutation()
	var report Report
	path := "/reports/" + reportID + "/" + sourceOrgID + "/" + verb + "/" + targetOrgID
	if err := l.client.post(ctx, path, nil, &report); err != nil {
		l.reports.fail(err)
		return nil, err
	}
	l.reports.upsert(report)
	return &report, nil
}

// BroadcastResult carries the outcome of a network-wide operation: the
// backend's confirmation message plus the updated report.
type BroadcastResult struct {
	Message string `json:"message"`
	Report  Report `json:"report"`
}

// Broadcast pushes a submitted report to every organization on the network.
// Reserved for governing-body accounts.
func (l *Lifecycle) Broadcast(ctx context.Context, reportID string) (*BroadcastResult, error) {
	return l.networkOp(ctx, "Broadcast", reportID, "broadcast")
}

// RemoveFromNetwork retires a report from the network. Removal is terminal;
// reserved for governing-body accounts.
func (l *Lifecycle) RemoveFromNetwork(ctx context.Context, reportID string) (*BroadcastResult, error) {
	return l.networkOp(ctx, "RemoveFromNetwork", reportID, "remove-from-network")
}

func (l *Lifecycle) networkOp(ctx context.Context, op, reportID, verb string) (*BroadcastResult, error) {
	user, err := l.currentUser(op)
	if err != nil {
		return nil, err
	}
	if user.Role != RoleGovBody {
		return nil, forbiddenErr("only governing bodies may perform network-wide operations")
	}
	if report, ok := l.reports.Get(reportID); ok {
		if !report.Submitted {
			return nil, conflictErr("only submitted reports can reach the network")
		}
		if report.NetworkStatus == "REMOVED" {
			return nil, conflictErr("report has been removed from the network")
		}
	}

	l.reports.beginMutation()
	var result BroadcastResult
	if err := l.client.post(ctx, "/reports/"+reportID+"/"+verb, nil, &result); err != nil {
		l.reports.fail(err)
		return nil, err
	}
	l.reports.upsert(result.Report)
	return &result, nil
}

// ProposeResponseAction appends a remediation proposal to a report's log.
func (l *Lifecycle) ProposeResponseAction(ctx context.Context, reportID, description string) (*ResponseAction, error) {
	if _, err := l.currentUser("ProposeResponseAction"); err != nil {
		return nil, err
	}
	var action ResponseAction
	err := l.client.post(ctx, "/reports/"+reportID+"/response-actions",
		map[string]string{"description": description}, &action)
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// ResponseActions lists a report's remediation log, oldest first.
func (l *Lifecycle) ResponseActions(ctx context.Context, reportID string) ([]ResponseAction, error) {
	if _, err := l.currentUser("ResponseActions"); err != nil {
		return nil, err
	}
	var actions []ResponseAction
	if err := l.client.get(ctx, "/reports/"+reportID+"/response-actions", &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

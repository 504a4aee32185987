package shield

import "context"

// OrganizationStore holds the organizations visible to the session.
type OrganizationStore struct {
	client *Client
	state  *collection[Organization]
}

// NewOrganizationStore builds an organization store over the given client.
func NewOrganizationStore(client *Client) *OrganizationStore {
	return &OrganizationStore{
		client: client,
		state:  newCollection(func(o Organization) string { return o.ID }),
	}
}

// State returns a snapshot of the store.
func (s *OrganizationStore) State() StoreState[Organization] {
	return s.state.snapshot()
}

// Get looks up an organization already held by the store.
func (s *OrganizationStore) Get(id string) (Organization, bool) {
	return s.state.get(id)
}

// Fetch replaces the store with all organizations on the exchange.
func (s *OrganizationStore) Fetch(ctx context.Context) error {
	ticket := s.state.beginLoad()
	var orgs []Organization
	err := s.client.get(ctx, "/organizations", &orgs)
	s.state.completeLoad(ticket, orgs, err)
	return err
}

// FetchMine replaces the store with the organizations the session user
// belongs to.
func (s *OrganizationStore) FetchMine(ctx context.Context) error {
	ticket := s.state.beginLoad()
	var orgs []Organization
	err := s.client.get(ctx, "/users/organizations", &orgs)
	s.state.completeLoad(ticket, orgs, err)
	return err
}

// OrganizationCreateInput carries the fields for a new organization.
type OrganizationCreateInput struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

// Create registers a new organization and adds the backend's copy to the
// store.
func (s *OrganizationStore) Create(ctx context.Context, input OrganizationCreateInput) (*Organization, error) {
	s.state.beginMutation()
	var org Organization
	if err := s.client.post(ctx, "/organizations", input, &org); err != nil {
		s.state.fail(err)
		return nil, err
	}
	s.state.applyUpsert(org)
	return &org, nil
}

// OrganizationUpdate carries mutable organization fields. Nil fields are
// left unchanged.
type OrganizationUpdate struct {
	Name      *string   `json:"name,omitempty"`
	MemberIDs *[]string `json:"member_ids,omitempty"`
}

// Update mutates an organization. Only the founder may do this; anyone else
// gets a forbidden error from the backend and the store is left untouched.
func (s *OrganizationStore) Update(ctx context.Context, id string, update OrganizationUpdate) (*Organization, error) {
	s.state.beginMutation()
	var org Organization
	if err := s.client.patch(ctx, "/organizations/"+id, update, &org); err != nil {
		s.state.fail(err)
		return nil, err
	}
	s.state.applyUpsert(org)
	return &org, nil
}

// Delete removes an organization.
func (s *OrganizationStore) Delete(ctx context.Context, id string) error {
	s.state.beginMutation()
	if err := s.client.delete(ctx, "/organizations/"+id); err != nil {
		s.state.fail(err)
		return err
	}
	s.state.applyRemove(id)
	return nil
}

// UserStore holds the exchange's user directory, used when picking
// organization members.
type UserStore struct {
	client *Client
	state  *collection[User]
}

// NewUserStore builds a user store over the given client.
func NewUserStore(client *Client) *UserStore {
	return &UserStore{
		client: client,
		state:  newCollection(func(u User) string { return u.ID }),
	}
}

// State returns a snapshot of the store.
func (s *UserStore) State() StoreState[User] {
	return s.state.snapshot()
}

// Get looks up a user already held by the store.
func (s *UserStore) Get(id string) (User, bool) {
	return s.state.get(id)
}

// Fetch replaces the store with every registered user.
func (s *UserStore) Fetch(ctx context.Context) error {
	ticket := s.state.beginLoad()
	var users []User
	err := s.client.get(ctx, "/users", &users)
	s.state.completeLoad(ticket, users, err)
	return err
}

// NotificationStore holds the notifications addressed to the session user's
// organizations.
type NotificationStore struct {
	client *Client
	state  *collection[Notification]
}

// NewNotificationStore builds a notification store over the given client.
func NewNotificationStore(client *Client) *NotificationStore {
	return &NotificationStore{
		client: client,
		state:  newCollection(func(n Notification) string { return n.ID }),
	}
}

// State returns a snapshot of the store.
func (s *NotificationStore) State() StoreState[Notification] {
	return s.state.snapshot()
}

// Fetch replaces the store with the session's notifications.
func (s *NotificationStore) Fetch(ctx context.Context) error {
	ticket := s.state.beginLoad()
	var notifications []Notification
	err := s.client.get(ctx, "/notifications", &notifications)
	s.state.completeLoad(ticket, notifications, err)
	return err
}

// MarkRead flips a notification to READ and records the change in its audit
// log; the store is patched with the backend's copy.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) (*Notification, error) {
	s.state.beginMutation()
	var notification Notification
	err := s.client.patch(ctx, "/notifications/"+id, map[string]string{"status": "READ"}, &notification)
	if err != nil {
		s.state.fail(err)
		return nil, err
	}
	s.state.applyUpsert(notification)
	return &notification, nil
}

// UnreadCount counts notifications still marked UNREAD.
func (s *NotificationStore) UnreadCount() int {
	count := 0
	for _, n := range s.State().Items {
		if n.Status == "UNREAD" {
			count++
		}
	}
	return count
}

// ReportStore holds the reports visible to the session user: those owned by
// their organizations plus those shared with them. The lifecycle controller
// mutates this same store so every view stays consistent.
type ReportStore struct {
	client *Client
	state  *collection[Report]
}

// NewReportStore builds a report store over the given client.
func NewReportStore(client *Client) *ReportStore {
	return &ReportStore{
		client: client,
		state:  newCollection(func(r Report) string { return r.ID }),
	}
}

// State returns a snapshot of the store.
func (s *ReportStore) State() StoreState[Report] {
	return s.state.snapshot()
}

// Get looks up a report already held by the store.
func (s *ReportStore) Get(id string) (Report, bool) {
	return s.state.get(id)
}

// Fetch replaces the store with the reports visible to the session user.
func (s *ReportStore) Fetch(ctx context.Context) error {
	ticket := s.state.beginLoad()
	var reports []Report
	err := s.client.get(ctx, "/reports/user", &reports)
	s.state.completeLoad(ticket, reports, err)
	return err
}

// ReportCreateInput carries the fields for a new draft report.
type ReportCreateInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	TypeOfThreat   string   `json:"type_of_threat"`
	Severity       string   `json:"severity"`
	STIX           string   `json:"stix,omitempty"`
	RiskScore      *float64 `json:"risk_score,omitempty"`
	OrganizationID string   `json:"organization_id"`
}

// Create registers a new draft report and adds the backend's copy to the
// store.
func (s *ReportStore) Create(ctx context.Context, input ReportCreateInput) (*Report, error) {
	s.state.beginMutation()
	var report Report
	if err := s.client.post(ctx, "/reports", input, &report); err != nil {
		s.state.fail(err)
		return nil, err
	}
	s.state.applyUpsert(report)
	return &report, nil
}

// ReportUpdate carries mutable report fields. Nil fields are left unchanged.
type ReportUpdate struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	TypeOfThreat *string  `json:"type_of_threat,omitempty"`
	Severity     *string  `json:"severity,omitempty"`
	Status       *string  `json:"status,omitempty"`
	STIX         *string  `json:"stix,omitempty"`
	RiskScore    *float64 `json:"risk_score,omitempty"`
}

// Update mutates a draft report. Submitted reports are immutable and come
// back as a conflict.
func (s *ReportStore) Update(ctx context.Context, id string, update ReportUpdate) (*Report, error) {
	s.state.beginMutation()
	var report Report
	if err := s.client.patch(ctx, "/reports/"+id, update, &report); err != nil {
		s.state.fail(err)
		return nil, err
	}
	s.state.applyUpsert(report)
	return &report, nil
}

// Delete removes a draft report.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	s.state.beginMutation()
	if err := s.client.delete(ctx, "/reports/"+id); err != nil {
		s.state.fail(err)
		return err
	}
	s.state.applyRemove(id)
	return nil
}

// upsert patches a report the lifecycle controller received from the
// backend.
func (s *ReportStore) upsert(report Report) {
	s.state.applyUpsert(report)
}

func (s *ReportStore) fail(err error) {
	s.state.fail(err)
}

func (s *ReportStore) beginMutation() {
	s.state.beginMutation()
}

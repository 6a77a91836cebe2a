package domain

// Expense is a single spend entry inside a group. Expenses are created and
// deleted through the upstream API; the client never edits one in place.
type Expense struct {
	ID          string   `json:"id"`
	Amount      float64  `json:"amount"`
	Description string   `json:"description,omitempty"`
	PaidBy      string   `json:"paidBy"`
	// UserID is the alternate payer-identifier field some upstream payloads
	// carry instead of (or alongside) paidBy.
	UserID      string   `json:"userId,omitempty"`
	PaymentDate string   `json:"paymentDate"` // ISO YYYY-MM-DD
	Tags        []string `json:"tags,omitempty"`
}

// Member is a user as seen inside one group's roster. The embedded Expenses
// list is only populated by payloads that ship per-user expenses; it feeds
// the embedded-expenses aggregation and nothing else.
type Member struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Username string    `json:"username,omitempty"`
	Expenses []Expense `json:"expenses,omitempty"`
}

// Group is the current-group snapshot unit: roster plus flat expense list.
// Code is the canonical identifier; the upstream's groupCode/code/id
// variations are collapsed into it at the API boundary, so nothing past the
// upstream client ever repeats the fallback chain.
type Group struct {
	Code     string    `json:"groupCode"`
	Name     string    `json:"groupName"`
	Members  []Member  `json:"users"`
	Expenses []Expense `json:"expenses"`
}

// Balance is a member's aggregate spend within some expense set. Derived,
// never persisted.
type Balance struct {
	UserID     string  `json:"userId"`
	TotalSpent float64 `json:"totalSpent"`
}

// MemberShare is a Balance extended with its share of the group total, used
// by the monthly breakdown view.
type MemberShare struct {
	UserID     string  `json:"userId"`
	Name       string  `json:"name"`
	TotalSpent float64 `json:"totalSpent"`
	Percent    float64 `json:"percent"`
}

// MonthlySummary is the per-month spending breakdown for the current group.
type MonthlySummary struct {
	GroupCode string        `json:"groupCode"`
	Month     string        `json:"month"` // YYYY-MM
	Total     float64       `json:"total"`
	YourTotal float64       `json:"yourTotal"`
	Members   []MemberShare `json:"members"`
}

// AddExpenseRequest is the payload for creating an expense, optionally
// attributed to several groups at once.
type AddExpenseRequest struct {
	Amount      float64  `json:"amount"`
	Description string   `json:"description,omitempty"`
	PaymentDate string   `json:"paymentDate"`
	Tags        []string `json:"tags"`
	GroupCodes  []string `json:"groupCodes,omitempty"`
}

// CreateGroupRequest creates a new group; the upstream generates the code.
type CreateGroupRequest struct {
	GroupName string `json:"groupName"`
}

// JoinGroupRequest joins an existing group by its share code.
type JoinGroupRequest struct {
	GroupCode string `json:"groupCode"`
}

// JoinGroupResult confirms a join; GroupName may be empty on older upstreams.
type JoinGroupResult struct {
	GroupName string `json:"groupName,omitempty"`
	GroupCode string `json:"groupCode"`
}

// SelectGroupRequest switches the current group to the one identified by
// GroupID (any of the upstream's identifier spellings is accepted).
type SelectGroupRequest struct {
	GroupID string `json:"groupId"`
}

// DeviceRegistration registers a push token for the bearer's groups. UserID
// is filled from the session, not the request body.
type DeviceRegistration struct {
	UserID     string   `json:"userId"`
	PushToken  string   `json:"token"`
	GroupCodes []string `json:"groupCodes,omitempty"`
}

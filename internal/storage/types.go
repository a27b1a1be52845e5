package storage

import "time"

// Project is the top-level tenancy scope for devices, access keys, and shares.
type Project struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Device is a registered device belonging to a project. The access-key flow
// only references devices by ID; it never mutates them.
type Device struct {
	ID          int64
	ProjectID   int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Session is an authenticated console session. The bearer token itself is
// never stored; only its SHA-256 hash. A nil ProjectID grants access to
// every project.
type Session struct {
	ID        int64
	TokenHash string
	Label     string
	ProjectID *int64
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the session has passed its expiry. Sessions without
// an expiry never expire.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// GrantsProject reports whether the session may act on the given project.
func (s *Session) GrantsProject(projectID int64) bool {
	return s.ProjectID == nil || *s.ProjectID == projectID
}

// AccessKey is a scoped, time-limited credential granting API access to a
// subset of a project's devices from a whitelisted set of domain origins.
// SecretHash is the bcrypt hash of the secret access key; the plaintext is
// shown exactly once at creation and never persisted.
type AccessKey struct {
	ID             int64
	ProjectID      int64
	Name           string
	ClientKey      string
	SecretHash     string
	CreatedAt      time.Time
	ExpirationDate *time.Time
	LastUseTime    *time.Time
}

// Expired reports whether the key's expiration date has passed. Keys without
// an expiration date never expire.
func (k *AccessKey) Expired(now time.Time) bool {
	return k.ExpirationDate != nil && k.ExpirationDate.Before(now)
}

// AccessKeyDetail is an AccessKey together with its device and domain bindings.
type AccessKeyDetail struct {
	AccessKey
	DeviceIDs   []int64
	DomainNames []string
}

// NewAccessKey carries everything needed to create an access key. ClientKey
// and SecretHash are generated by the caller so the plaintext secret never
// passes through the storage layer.
type NewAccessKey struct {
	ProjectID    int64
	Name         string
	ClientKey    string
	SecretHash   string
	DeviceIDs    []int64
	DomainNames  []string
	DurationDays int
}

// AccessKeyPatch is a partial update. Nil fields are left unchanged; a non-nil
// empty slice clears the corresponding binding set.
type AccessKeyPatch struct {
	Name        *string
	DeviceIDs   []int64
	DomainNames []string
}

// Share is a read-only public dashboard link scoped to a set of widgets.
type Share struct {
	ID        int64
	ProjectID int64
	Token     string
	Name      string
	WidgetIDs []int64
	Active    bool
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// SharePatch is a partial update for a share. Nil fields are left unchanged.
type SharePatch struct {
	Name      *string
	WidgetIDs []int64
	Active    *bool
	ExpiresAt *time.Time
}

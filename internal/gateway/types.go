package gateway

// AccessKey represents an access credential as returned by the console API.
// DeviceIDs and DomainNames are populated on detail responses only; list rows
// omit them.
type AccessKey struct {
	ID             int64    `json:"access_key_id"`
	Name           string   `json:"access_key_name"`
	ProjectID      int64    `json:"project_id"`
	CreatedAt      string   `json:"created_at"`
	ExpirationDate *string  `json:"expiration_date"`
	LastUseTime    *string  `json:"access_key_last_use_time"`
	IsExpired      bool     `json:"is_expired"`
	DeviceIDs      []int64  `json:"device_ids,omitempty"`
	DomainNames    []string `json:"access_key_domain_names,omitempty"`
}

// CreatedAccessKey is the create response, carrying the credential pair.
// The secret is available here and nowhere else.
type CreatedAccessKey struct {
	AccessKey
	ClientAccessKey string `json:"client_access_key"`
	SecretAccessKey string `json:"secret_access_key"`
}

// CreateAccessKeyRequest is the request body for creating an access key.
type CreateAccessKeyRequest struct {
	Name        string   `json:"access_key_name"`
	ProjectID   int64    `json:"project_id"`
	DomainNames []string `json:"domain_name_array"`
	DeviceIDs   []int64  `json:"device_id_array"`
	Duration    int      `json:"valid_duration_for_access_key"`
}

// UpdateAccessKeyRequest is the request body for a partial key update.
// Nil fields are left unchanged by the server.
type UpdateAccessKeyRequest struct {
	Name        *string  `json:"access_key_name,omitempty"`
	DomainNames []string `json:"domain_name_array,omitempty"`
	DeviceIDs   []int64  `json:"device_id_array,omitempty"`
}

// RenewResult reports the outcome of a renewal.
type RenewResult struct {
	Success       bool   `json:"success"`
	NewExpiration string `json:"new_expiration"`
}

// Device represents a device registered under a project.
type Device struct {
	ID          int64  `json:"device_id"`
	Name        string `json:"device_name"`
	Description string `json:"description"`
}

// PublicDashboard is the unauthenticated view behind a share token.
type PublicDashboard struct {
	ShareName string  `json:"share_name"`
	ProjectID int64   `json:"project_id"`
	WidgetIDs []int64 `json:"widget_id_array"`
	CreatedAt string  `json:"created_at"`
}

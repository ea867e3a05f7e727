package domain

import "time"

// APIKey is an issued tenant credential. Key holds the raw token and is only
// populated when the key is first issued; storage keeps TenantID, the token's
// digest.
type APIKey struct {
	Key       string
	TenantID  string
	CreatedAt time.Time
}

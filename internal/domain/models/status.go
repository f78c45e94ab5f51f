package models

import "time"

// AccountStatus is the externally visible state of one supervised account.
type AccountStatus struct {
	Username         string        `json:"username"`
	State            string        `json:"state"`
	Running          bool          `json:"running"`
	SessionExpiresAt *time.Time    `json:"sessionExpiresAt,omitempty"`
	Points           int64         `json:"points"`
	Proxies          int           `json:"proxies"`
	LastCycle        *CycleSummary `json:"lastCycle,omitempty"`
}

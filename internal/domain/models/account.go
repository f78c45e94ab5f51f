package models

// Account is one credentialed identity. It is immutable after load.
type Account struct {
	Region     string `yaml:"region" json:"region" validate:"required"`
	ClientID   string `yaml:"clientId" json:"clientId" validate:"required"`
	UserPoolID string `yaml:"userPoolId" json:"userPoolId" validate:"required"`
	Username   string `yaml:"username" json:"username"`
	Password   string `yaml:"password" json:"password"`
	MaxProxies int    `yaml:"maxProxies" json:"maxProxies" default:"1" validate:"gte=0"`
}

// HasCredentials reports whether the account can be started at all.
func (a Account) HasCredentials() bool {
	return a.Username != "" && a.Password != ""
}

// ProxyQuota is the number of pool entries the account may claim.
func (a Account) ProxyQuota() int {
	if a.MaxProxies <= 0 {
		return 1
	}
	return a.MaxProxies
}

package models

// ProxyAssignment is an account plus the ordered egress endpoints it owns.
// Computed once at startup and read-only afterwards.
type ProxyAssignment struct {
	Account Account
	Proxies []string
}

// ProxyFor returns the egress for the item at index, or "" for direct.
func (p ProxyAssignment) ProxyFor(index int) string {
	return ProxyAt(p.Proxies, index)
}

// ProxyAt rotates through proxies by position.
func ProxyAt(proxies []string, index int) string {
	if len(proxies) == 0 {
		return ""
	}
	return proxies[index%len(proxies)]
}

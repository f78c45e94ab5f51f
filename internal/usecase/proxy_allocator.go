package usecase

import "StorkPull/internal/domain/models"

// AssignProxies distributes pool across accounts with one cursor shared by
// all accounts. Each account takes up to its quota, wrapping around the
// pool. An empty pool yields an empty list for every account.
func AssignProxies(accounts []models.Account, pool []string) []models.ProxyAssignment {
	out := make([]models.ProxyAssignment, 0, len(accounts))
	cursor := 0
	for _, acct := range accounts {
		proxies := []string{}
		if len(pool) > 0 {
			for i := 0; i < acct.ProxyQuota(); i++ {
				proxies = append(proxies, pool[cursor%len(pool)])
				cursor++
			}
		}
		out = append(out, models.ProxyAssignment{Account: acct, Proxies: proxies})
	}
	return out
}

package redisx

import "fmt"

const ns = "showtix:v1"

func KeyCatalog() string {
	return ns + ":catalog:shows"
}

func KeyShowSummary(showID int64) string {
	return fmt.Sprintf("%s:show:%d:summary", ns, showID)
}

func KeySession(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", ns, sessionID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

package parsing

import "strings"

var (
	remoteNegations = []string{
		"재택 불가", "재택근무 불가", "원격 불가", "원격근무 불가", "no remote", "not remote",
		"remote: no", "on-site only", "onsite only", "office only",
	}
	remoteSignals = []string{
		"재택", "원격", "리모트", "remote", "wfh", "work from home", "anywhere", "fully distributed",
	}
)

// DetectRemote reports whether any text advertises remote work. A negation
// anywhere wins over positive signals.
func DetectRemote(texts ...string) bool {
	joined := strings.ToLower(strings.Join(texts, " \n "))
	if containsAny(joined, remoteNegations...) {
		return false
	}
	return containsAny(joined, remoteSignals...)
}

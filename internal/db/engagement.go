package db

// toggleMembership returns members with email removed if present or appended
// if absent, and whether email is a member afterwards. members is not modified.
func toggleMembership(members []string, email string) ([]string, bool) {
	next := make([]string, 0, len(members)+1)
	found := false
	for _, m := range members {
		if m == email {
			found = true
			continue
		}
		next = append(next, m)
	}
	if found {
		return next, false
	}
	return append(next, email), true
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

package domain

import "sort"

// AccessScope is the ephemeral result of resolving a user's permissions. It is
// recomputed per request and never persisted. For administrators the allowed set
// is empty and means "unrestricted", not "nothing".
type AccessScope struct {
	IsAdmin               bool
	AllowedApplicationIDs map[int64]struct{}
}

// AdminScope returns an unrestricted scope.
func AdminScope() AccessScope {
	return AccessScope{IsAdmin: true}
}

// UserScope returns a scope restricted to the given application ids.
func UserScope(appIDs []int64) AccessScope {
	allowed := make(map[int64]struct{}, len(appIDs))
	for _, id := range appIDs {
		allowed[id] = struct{}{}
	}
	return AccessScope{AllowedApplicationIDs: allowed}
}

// Allows reports whether the scope permits acting on the given application.
func (s AccessScope) Allows(appID int64) bool {
	if s.IsAdmin {
		return true
	}
	_, ok := s.AllowedApplicationIDs[appID]
	return ok
}

// AllowedIDs returns the allowed application ids in ascending order.
func (s AccessScope) AllowedIDs() []int64 {
	ids := make([]int64, 0, len(s.AllowedApplicationIDs))
	for id := range s.AllowedApplicationIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Restrict computes the effective application id set for a request. Admin scopes
// pass the requested ids through unchanged (deduplicated; empty means
// unrestricted). Non-admin scopes intersect the requested ids with the allowed
// set, or fall back to the whole allowed set when no ids were requested. The
// result is sorted; an empty result for a non-admin scope means "match nothing".
func (s AccessScope) Restrict(requested []int64) []int64 {
	if s.IsAdmin {
		return dedupeSorted(requested)
	}
	if len(requested) == 0 {
		return s.AllowedIDs()
	}
	seen := make(map[int64]struct{}, len(requested))
	effective := make([]int64, 0, len(requested))
	for _, id := range requested {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if s.Allows(id) {
			effective = append(effective, id)
		}
	}
	sort.Slice(effective, func(i, j int) bool { return effective[i] < effective[j] })
	return effective
}

func dedupeSorted(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

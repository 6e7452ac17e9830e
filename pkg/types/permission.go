package types

// Permission grants a set of actions over one resource. Role gates most
// decisions today; permissions exist for finer-grained overrides.
type Permission struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// Permissions is stored as a jsonb column on users.
type Permissions []Permission

// Allows reports whether the set grants action on resource.
func (p Permissions) Allows(resource, action string) bool {
	for _, perm := range p {
		if perm.Resource != resource {
			continue
		}
		for _, a := range perm.Actions {
			if a == action {
				return true
			}
		}
	}
	return false
}

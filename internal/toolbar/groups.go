package toolbar

// Groups returns the distinct groups of actions in order of first
// appearance.
func Groups(actions []Action) []Group {
	seen := make(map[Group]bool)
	var out []Group
	for _, a := range actions {
		g := a.Group()
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// Members returns the actions of group g, keeping their relative order.
func Members(actions []Action, g Group) []Action {
	var out []Action
	for _, a := range actions {
		if a.Group() == g {
			out = append(out, a)
		}
	}
	return out
}

type Cluster struct {
	Group   Group
	Actions []Action
}

func Clusters(actions []Action) []Cluster {
	groups := Groups(actions)
	out := make([]Cluster, 0, len(groups))
	for _, g := range groups {
		out = append(out, Cluster{Group: g, Actions: Members(actions, g)})
	}
	return out
}

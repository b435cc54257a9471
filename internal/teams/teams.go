// Package teams resolves author identities to team names from static
// configuration. Lookups are case-sensitive and pure: the mapping is
// built once and never touches I/O afterwards.
package teams

import (
	"fmt"
	"sort"

	"github.com/devexhq/pulse/internal/contract"
)

// UnassignedTeam is the fallback team for authors absent from every
// configured team. It partitions all authors together with the real
// teams: every author lands in exactly one team.
const UnassignedTeam = "unassigned"

// Resolver is the static member-to-team index.
type Resolver struct {
	byAuthor map[string]string
	byTeam   map[string][]string
}

var _ contract.TeamResolver = &Resolver{} // Compile-time check

// NewResolver builds a resolver from the configured team rosters.
// An author listed under several teams keeps the first team seen;
// later duplicates are logged and ignored so the partition holds.
// Teams are indexed in name order to make the first-wins rule
// deterministic across runs.
func NewResolver(rosters map[string][]string) *Resolver {
	r := &Resolver{
		byAuthor: make(map[string]string),
		byTeam:   make(map[string][]string),
	}

	names := make([]string, 0, len(rosters))
	for name := range rosters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, team := range names {
		for _, member := range rosters[team] {
			if existing, ok := r.byAuthor[member]; ok {
				if existing != team {
					contract.LogWarnMsg(fmt.Sprintf(
						"member %q listed in teams %q and %q, keeping %q", member, existing, team, existing))
				}
				continue
			}
			r.byAuthor[member] = team
			r.byTeam[team] = append(r.byTeam[team], member)
		}
	}
	return r
}

// Resolve returns the author's team. Matching is exact and
// case-sensitive; unmapped authors fall back to UnassignedTeam.
func (r *Resolver) Resolve(author string) string {
	if team, ok := r.byAuthor[author]; ok {
		return team
	}
	return UnassignedTeam
}

// Members returns the effective member list of a team, after duplicate
// authors have been claimed by their first team. Unknown teams return nil.
func (r *Resolver) Members(team string) []string {
	return r.byTeam[team]
}

// Teams returns all configured team names in sorted order.
func (r *Resolver) Teams() []string {
	names := make([]string, 0, len(r.byTeam))
	for name := range r.byTeam {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

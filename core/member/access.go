package member

// Scope qualifies the kind of access being requested on a target.
type Scope int

const (
	ScopeRead Scope = iota
	ScopeWrite
)

type (
	// Protected is any resource carrying an access level. RequiredLevel
	// returns false when the target carries no level (e.g. a bare
	// committee), in which case only the role/relationship rules apply.
	Protected interface {
		RequiredLevel() (AccessLevel, bool)
		RequiresVerified() bool
	}

	// CommitteeScoped is any target owned by a committee. IsCommitteeMember
	// must also hold for the director: a director need not be in the member
	// set but is granted member-equivalent access.
	CommitteeScoped interface {
		IsDirector(memberID int) bool
		IsCommitteeMember(memberID int) bool
	}
)

// CanAccess decides whether actor may access target. It is a pure predicate;
// callers translate false into their own AccessDenied behavior.
//
// Precedence, evaluated short-circuit:
//  1. leadership role -> allow unconditionally
//  2. committee-scoped and actor is the director -> allow
//  3. committee-scoped and actor is a listed member -> allow, read scope only
//  4. level-carrying target -> allow iff the level is within the actor's
//     tier-resolved set and, for verified-only targets, the actor is verified
//  5. deny
//
// The scope defaults to ScopeRead when omitted.
func CanAccess(actor Member, target Protected, scopes ...Scope) bool {
	scope := ScopeRead
	if len(scopes) > 0 {
		scope = scopes[0]
	}

	if actor.IsLeadership() {
		return true
	}

	if cs, ok := target.(CommitteeScoped); ok {
		if cs.IsDirector(actor.ID) {
			return true
		}
		if cs.IsCommitteeMember(actor.ID) && scope == ScopeRead {
			return true
		}
	}

	if lvl, ok := target.RequiredLevel(); ok {
		allowed, err := LevelAllowed(actor.Tier, lvl)
		if err != nil {
			// unknown tier or level: construction-time validation should have
			// rejected it; deny rather than guess
			return false
		}
		if allowed && (!target.RequiresVerified() || actor.IsVerified) {
			return true
		}
	}

	return false
}

// Route is a level-protected feature gate with no backing record (e.g. the
// student hub or the CPD tracker page).
type Route struct {
	Level        AccessLevel
	VerifiedOnly bool
}

func (r Route) RequiredLevel() (AccessLevel, bool) { return r.Level, true }
func (r Route) RequiresVerified() bool             { return r.VerifiedOnly }

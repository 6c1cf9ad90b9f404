package member

import "testing"

// gatedTarget is a level-protected, optionally committee-scoped target.
type gatedTarget struct {
	level        AccessLevel
	hasLevel     bool
	verifiedOnly bool
	directorID   int
	memberIDs    []int
}

func (tgt gatedTarget) RequiredLevel() (AccessLevel, bool) { return tgt.level, tgt.hasLevel }
func (tgt gatedTarget) RequiresVerified() bool             { return tgt.verifiedOnly }
func (tgt gatedTarget) IsDirector(memberID int) bool       { return memberID == tgt.directorID }
func (tgt gatedTarget) IsCommitteeMember(memberID int) bool {
	if memberID == tgt.directorID {
		return true
	}
	for _, id := range tgt.memberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

func TestCanAccess(t *testing.T) {
	exco := Member{ID: 1, Tier: TierStudent, Roles: []string{RoleExcoPresident}}
	trustee := Member{ID: 2, Tier: TierAssociate, Roles: []string{RoleTrustee}}
	director := Member{ID: 3, Tier: TierAssociate, IsVerified: true}
	committeeMember := Member{ID: 4, Tier: TierStudent, Roles: []string{RoleCommittee}}
	student := Member{ID: 5, Tier: TierStudent, IsVerified: true}
	unverifiedFull := Member{ID: 6, Tier: TierFull}
	verifiedFull := Member{ID: 7, Tier: TierFull, IsVerified: true}
	badTier := Member{ID: 8, Tier: "platinum"}

	committee := gatedTarget{directorID: director.ID, memberIDs: []int{committeeMember.ID}}
	fullOnly := gatedTarget{level: LevelFull, hasLevel: true}
	fullVerifiedOnly := gatedTarget{level: LevelFull, hasLevel: true, verifiedOnly: true}

	tests := []struct {
		name   string
		actor  Member
		target Protected
		scope  Scope
		want   bool
	}{
		// leadership overrides everything, including write scope on
		// committees they do not belong to
		{name: "exco reads any committee", actor: exco, target: committee, want: true},
		{name: "exco writes any committee", actor: exco, target: committee, scope: ScopeWrite, want: true},
		{name: "trustee writes level-gated target above tier", actor: trustee, target: fullVerifiedOnly, scope: ScopeWrite, want: true},

		// committee relationships
		{name: "director reads own committee", actor: director, target: committee, want: true},
		{name: "director writes own committee", actor: director, target: committee, scope: ScopeWrite, want: true},
		{name: "committee member reads", actor: committeeMember, target: committee, want: true},
		{name: "committee member cannot write", actor: committeeMember, target: committee, scope: ScopeWrite, want: false},
		{name: "outsider denied on bare committee", actor: student, target: committee, want: false},

		// level gate
		{name: "tier below required level", actor: student, target: fullOnly, want: false},
		{name: "tier at required level", actor: verifiedFull, target: fullOnly, want: true},
		{name: "unverified blocked on verified-only", actor: unverifiedFull, target: fullVerifiedOnly, want: false},
		{name: "verified allowed on verified-only", actor: verifiedFull, target: fullVerifiedOnly, want: true},
		{name: "unverified allowed when gate not verified-only", actor: unverifiedFull, target: fullOnly, want: true},

		// unknown tier is denied, never defaulted
		{name: "unknown tier denied", actor: badTier, target: gatedTarget{level: LevelPublic, hasLevel: true}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(tt.actor, tt.target, tt.scope); got != tt.want {
				t.Errorf("CanAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAccess_route(t *testing.T) {
	hub := Route{Level: LevelStudent, VerifiedOnly: true}

	verified := Member{ID: 1, Tier: TierStudent, IsVerified: true}
	unverified := Member{ID: 2, Tier: TierStudent}

	if !CanAccess(verified, hub) {
		t.Error("verified student should access the student hub")
	}
	if CanAccess(unverified, hub) {
		t.Error("unverified student should not access the student hub")
	}
}

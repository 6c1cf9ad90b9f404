package member

import (
	"testing"

	"github.com/NAA-del/naa-portal/core"
)

func TestTier_Rank(t *testing.T) {
	tests := []struct {
		name     string
		tier     Tier
		wantRank int
		wantErr  bool
	}{
		{name: "student", tier: TierStudent, wantRank: 1},
		{name: "associate", tier: TierAssociate, wantRank: 2},
		{name: "full", tier: TierFull, wantRank: 3},
		{name: "fellow", tier: TierFellow, wantRank: 4},
		{name: "unknown", tier: "platinum", wantErr: true},
		{name: "empty", tier: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, err := tt.tier.Rank()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Rank() expected an error")
				}
				if !core.IsConfigurationError(err) {
					t.Errorf("Rank() error = %v, want a configuration error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if rank != tt.wantRank {
				t.Errorf("Rank() = %d, want %d", rank, tt.wantRank)
			}
		})
	}
}

func TestResolveAllowedLevels(t *testing.T) {
	tests := []struct {
		name string
		tier Tier
		want []AccessLevel
	}{
		{name: "student", tier: TierStudent, want: []AccessLevel{LevelPublic, LevelStudent}},
		{name: "associate", tier: TierAssociate, want: []AccessLevel{LevelPublic, LevelStudent, LevelAssociate}},
		{name: "full", tier: TierFull, want: []AccessLevel{LevelPublic, LevelStudent, LevelAssociate, LevelFull}},
		{name: "fellow", tier: TierFellow, want: []AccessLevel{LevelPublic, LevelStudent, LevelAssociate, LevelFull, LevelFellow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAllowedLevels(tt.tier)
			if err != nil {
				t.Fatalf("ResolveAllowedLevels() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ResolveAllowedLevels() = %v, want %v", got, tt.want)
			}
			for i, lvl := range tt.want {
				if got[i] != lvl {
					t.Errorf("ResolveAllowedLevels()[%d] = %s, want %s", i, got[i], lvl)
				}
			}
		})
	}

	t.Run("unknown tier", func(t *testing.T) {
		if _, err := ResolveAllowedLevels("platinum"); !core.IsConfigurationError(err) {
			t.Errorf("ResolveAllowedLevels() error = %v, want a configuration error", err)
		}
	})
}

func TestLevelAllowed(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		lvl     AccessLevel
		want    bool
		wantErr bool
	}{
		{name: "student/public", tier: TierStudent, lvl: LevelPublic, want: true},
		{name: "student/student", tier: TierStudent, lvl: LevelStudent, want: true},
		{name: "student/associate", tier: TierStudent, lvl: LevelAssociate, want: false},
		{name: "associate/full", tier: TierAssociate, lvl: LevelFull, want: false},
		{name: "full/associate", tier: TierFull, lvl: LevelAssociate, want: true},
		{name: "fellow/fellow", tier: TierFellow, lvl: LevelFellow, want: true},
		{name: "unknown tier", tier: "platinum", lvl: LevelPublic, wantErr: true},
		{name: "unknown level", tier: TierFellow, lvl: "secret", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LevelAllowed(tt.tier, tt.lvl)
			if tt.wantErr {
				if !core.IsConfigurationError(err) {
					t.Errorf("LevelAllowed() error = %v, want a configuration error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LevelAllowed() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LevelAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

package entity

import (
	"testing"
	"time"
)

func TestPointBatchValidity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in3Days := now.Add(3 * 24 * time.Hour)
	in30Days := now.Add(30 * 24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	tests := []struct {
		name             string
		remaining        int64
		expiresAt        *time.Time
		wantExpired      bool
		wantValid        bool
		wantExpiringSoon bool
	}{
		{
			name:      "never expires with points left",
			remaining: 100,
			expiresAt: nil,
			wantValid: true,
		},
		{
			name:      "never expires but drained",
			remaining: 0,
			expiresAt: nil,
			wantValid: false,
		},
		{
			name:             "expiring within the window",
			remaining:        50,
			expiresAt:        &in3Days,
			wantValid:        true,
			wantExpiringSoon: true,
		},
		{
			name:      "expiring far out",
			remaining: 50,
			expiresAt: &in30Days,
			wantValid: true,
		},
		{
			name:        "already expired",
			remaining:   50,
			expiresAt:   &yesterday,
			wantExpired: true,
			wantValid:   false,
		},
		{
			name:        "expired and drained",
			remaining:   0,
			expiresAt:   &yesterday,
			wantExpired: true,
			wantValid:   false,
		},
		{
			name:        "expires exactly now counts as expired",
			remaining:   50,
			expiresAt:   &now,
			wantExpired: true,
			wantValid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := PointBatch{Remaining: tt.remaining, ExpiresAt: tt.expiresAt}

			if got := b.IsExpired(now); got != tt.wantExpired {
				t.Errorf("IsExpired = %v, want %v", got, tt.wantExpired)
			}
			if got := b.IsValid(now); got != tt.wantValid {
				t.Errorf("IsValid = %v, want %v", got, tt.wantValid)
			}
			if got := b.IsExpiringSoon(now); got != tt.wantExpiringSoon {
				t.Errorf("IsExpiringSoon = %v, want %v", got, tt.wantExpiringSoon)
			}
		})
	}
}

func TestRechargeCodeChecks(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	fresh := RechargeCode{ExpiresAt: &tomorrow}
	if fresh.IsRedeemed() {
		t.Error("code without UsedAt should not count as redeemed")
	}
	if fresh.IsExpired(now) {
		t.Error("code expiring tomorrow should not count as expired")
	}

	used := RechargeCode{UsedAt: &yesterday}
	if !used.IsRedeemed() {
		t.Error("code with UsedAt should count as redeemed")
	}

	stale := RechargeCode{ExpiresAt: &yesterday}
	if !stale.IsExpired(now) {
		t.Error("code past its deadline should count as expired")
	}

	open := RechargeCode{}
	if open.IsExpired(now) {
		t.Error("code without a deadline should never expire")
	}
}

func TestGenerationJobIsTerminal(t *testing.T) {
	tests := []struct {
		status GenerationStatus
		want   bool
	}{
		{GenerationStatusQueued, false},
		{GenerationStatusRunning, false},
		{GenerationStatusCompleted, true},
		{GenerationStatusFailed, true},
		{GenerationStatusInsufficientPoints, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			j := GenerationJob{Status: tt.status}
			if got := j.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestUserHelpers(t *testing.T) {
	key := "sk-own-key"
	empty := ""

	admin := User{Role: UserRoleAdmin}
	if !admin.IsAdmin() {
		t.Error("admin role should report IsAdmin")
	}

	user := User{Role: UserRoleUser, ProviderAPIKey: &key}
	if user.IsAdmin() {
		t.Error("user role should not report IsAdmin")
	}
	if !user.HasOwnProviderKey() {
		t.Error("user with a key should report HasOwnProviderKey")
	}

	blank := User{Role: UserRoleUser, ProviderAPIKey: &empty}
	if blank.HasOwnProviderKey() {
		t.Error("empty key string should not count as an own key")
	}
	none := User{Role: UserRoleUser}
	if none.HasOwnProviderKey() {
		t.Error("nil key should not count as an own key")
	}
}

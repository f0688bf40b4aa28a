package plans

import (
	"testing"
	"time"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "paid", want: PlanPaid},
		{in: " MASTER ", want: PlanMaster},
		{in: "trial", want: PlanTrial},
		{in: "garbage", want: PlanTrial},
		{in: "", want: PlanTrial},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRankOrdering(t *testing.T) {
	if !(Rank(PlanMaster) > Rank(PlanPaid) && Rank(PlanPaid) > Rank(PlanTrial)) {
		t.Fatalf("plan ranks out of order")
	}
}

func TestCanActivateAlbum_TrialCap(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Hour)
	end := now.Add(24 * time.Hour)
	sub := &models.Subscription{
		Plan:          models.PlanTrial,
		Status:        models.SubscriptionStatusActive,
		TrialStartsAt: &start,
		TrialEndsAt:   &end,
	}

	if !CanActivateAlbum(sub, 2) {
		t.Fatalf("expected trial plan to allow a third active album")
	}
	if CanActivateAlbum(sub, 3) {
		t.Fatalf("expected trial plan to cap active albums at 3")
	}
}

func TestCanActivateAlbum_ExpiredTrial(t *testing.T) {
	now := time.Now()
	start := now.Add(-48 * time.Hour)
	end := now.Add(-24 * time.Hour)
	sub := &models.Subscription{
		Plan:          models.PlanTrial,
		Status:        models.SubscriptionStatusActive,
		TrialStartsAt: &start,
		TrialEndsAt:   &end,
	}

	if CanActivateAlbum(sub, 0) {
		t.Fatalf("expected expired trial to deny album activation")
	}
}

func TestCanImportFromFTP(t *testing.T) {
	paid := &models.Subscription{Plan: models.PlanPaid, Status: models.SubscriptionStatusActive}
	if !CanImportFromFTP(paid) {
		t.Fatalf("expected paid plan to allow FTP import")
	}

	now := time.Now()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	trial := &models.Subscription{
		Plan:          models.PlanTrial,
		Status:        models.SubscriptionStatusActive,
		TrialStartsAt: &start,
		TrialEndsAt:   &end,
	}
	if CanImportFromFTP(trial) {
		t.Fatalf("expected trial plan to deny FTP import")
	}
}

package plans

import (
	"strings"
	"time"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

type Plan string

const (
	PlanTrial  Plan = "trial"
	PlanPaid   Plan = "paid"
	PlanMaster Plan = "master"
)

// TrialDuration is the default trial window for new studios.
const TrialDuration = 14 * 24 * time.Hour

// Limits describes what a plan allows.
type Limits struct {
	MaxActiveAlbums int  // 0 means unlimited
	MaxClients      int  // 0 means unlimited
	FTPImport       bool // whether FTP source import is available
}

// Normalize maps arbitrary plan strings to a known plan, defaulting to trial.
func Normalize(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPaid):
		return PlanPaid
	case string(PlanMaster):
		return PlanMaster
	default:
		return PlanTrial
	}
}

// LimitsFor returns the limits for a plan.
func LimitsFor(plan Plan) Limits {
	switch plan {
	case PlanMaster:
		return Limits{MaxActiveAlbums: 0, MaxClients: 0, FTPImport: true}
	case PlanPaid:
		return Limits{MaxActiveAlbums: 50, MaxClients: 0, FTPImport: true}
	default:
		return Limits{MaxActiveAlbums: 3, MaxClients: 20, FTPImport: false}
	}
}

// Rank orders plans so "best plan wins" comparisons stay in one place.
func Rank(plan Plan) int {
	switch plan {
	case PlanMaster:
		return 2
	case PlanPaid:
		return 1
	default:
		return 0
	}
}

// CanActivateAlbum checks the active-album cap for a subscription.
func CanActivateAlbum(sub *models.Subscription, activeAlbums int64) bool {
	if sub == nil || !sub.IsEntitled(time.Now()) {
		return false
	}
	limits := LimitsFor(Normalize(sub.Plan))
	if limits.MaxActiveAlbums == 0 {
		return true
	}
	return activeAlbums < int64(limits.MaxActiveAlbums)
}

// CanImportFromFTP checks whether the subscription plan includes FTP import.
func CanImportFromFTP(sub *models.Subscription) bool {
	if sub == nil || !sub.IsEntitled(time.Now()) {
		return false
	}
	return LimitsFor(Normalize(sub.Plan)).FTPImport
}

package domain

const (
	RoleUser    = "USER"
	RoleOfficer = "OFFICER"
	RoleAdmin   = "ADMIN"
)

const (
	AlertTypeEmergency = "emergency"
	AlertTypeSecurity  = "security"
	AlertTypeGeneral   = "general"
)

const (
	AlertStatusPending   = "pending"
	AlertStatusCompleted = "completed"
)

const (
	ShareStatusActive  = "ACTIVE"
	ShareStatusStopped = "STOPPED"
)

const (
	StopReasonUser    = "user"
	StopReasonLimit   = "limit"
	StopReasonExpired = "expired"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

const (
	ActorKindUser    = "USER"
	ActorKindOfficer = "OFFICER"
)

func ValidAlertType(t string) bool {
	return t == AlertTypeEmergency || t == AlertTypeSecurity || t == AlertTypeGeneral
}

func ValidStopReason(r string) bool {
	return r == StopReasonUser || r == StopReasonLimit || r == StopReasonExpired
}

func ValidPlan(p string) bool {
	return p == PlanFree || p == PlanPremium
}

func ValidActorKind(k string) bool {
	return k == ActorKindUser || k == ActorKindOfficer
}

package model

// AccountType is the fee bracket family an account belongs to.
type AccountType string

// Account type constants.
const (
	AccountIndividual AccountType = "INDIVIDUAL"
	AccountFamily     AccountType = "FAMILY"
	AccountBusiness   AccountType = "BUSINESS"
)

// BehaviorSignals is a per-user behavioral and market snapshot supplied by
// the analytics layer. All score fields are expected to be in [0,1].
type BehaviorSignals struct {
	LoyaltyScore              float64
	BehaviorConsistency       float64
	MarketCompetitivePressure float64
	RetentionChurnRisk        float64
	MonthlyTransactionVolume  int
}

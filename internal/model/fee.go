package model

// FeeBreakdown itemizes the platform fee charged for one transaction.
// FinalFee is never below the 0.01 floor.
type FeeBreakdown struct {
	BaseFee            float64
	LoyaltyDiscount    float64
	BehaviorBonus      float64
	MarketAdjustment   float64
	RetentionIncentive float64
	VolumeDiscount     float64
	TotalAdjustment    float64
	ConfidenceScore    float64
	FinalFee           float64
	Fallback           bool
	Notes              string
}

package notifications

const (
	TypeSaveFailed        = "save_failed"
	TypePeriodClosed      = "period_closed"
	TypePeriodLiquidated  = "period_liquidated"
	TypePeriodPaid        = "period_paid"
	TypePeriodReopened    = "period_reopened"
	TypePeriodEdited      = "period_edited"
	TypeDianReported      = "dian_reported"
	TypeDuplicatesCleaned = "duplicates_cleaned"
)

package dto

// SearchSpecialsRequest captures the query parameters of the specials
// search endpoint before the pipeline resolves them.
type SearchSpecialsRequest struct {
	Address              string
	RadiusMiles          float64
	SearchDateTime       string
	SearchTerm           string
	VenueID              string
	SpecialType          string
	CurrentlyRunningOnly bool
	Page                 int
	PageSize             int
}

// SchedulePayload is the external recurrence representation accepted on
// special create and update. Exactly one of the two forms may be set: the
// weekday-mask form (day_mask, optionally interval_weeks) or the cron form.
type SchedulePayload struct {
	DayMask       *uint8 `json:"day_mask,omitempty"`
	IntervalWeeks int    `json:"interval_weeks,omitempty"`
	CronExpr      string `json:"cron_expr,omitempty"`
}

package domain

// Scenario input for a single simulation run. Immutable once constructed;
// a solve produces a resolved copy with the solved fee filled in.

// B2B commercial modes.
const (
	B2BModeGiven    = "given"
	B2BModeSolveFee = "solve_employee_fee"
)

// Solver target types.
const (
	TargetBreakeven = "breakeven"
	TargetProfit    = "profit"
	TargetMargin    = "margin"
)

// AdoptionConfig drives the active-card state machine.
type AdoptionConfig struct {
	StartActiveCards int     `json:"start_active_cards"`
	MonthlyNetAdds   int     `json:"monthly_net_adds"`
	ChurnRate        float64 `json:"churn_rate"`
}

// UsageConfig describes how cards are used each month. Share fields are
// fractions in [0,1].
type UsageConfig struct {
	SpendPerActiveCardMonth float64  `json:"spend_per_active_card_month"`
	InAppShare              float64  `json:"in_app_share"`
	AvgTicket               float64  `json:"avg_ticket"`
	EcomShare               float64  `json:"ecom_share"`
	EEAShare                float64  `json:"eea_share"`
	ThreeDSAttemptRate      float64  `json:"three_ds_attempt_rate"`
	AuthMultiplier          *float64 `json:"auth_multiplier,omitempty"`
}

// AuthMult returns the authorization multiplier applied on top of the
// spend-derived transaction count. Unset means 1.
func (u UsageConfig) AuthMult() float64 {
	if u.AuthMultiplier == nil {
		return 1
	}
	return *u.AuthMultiplier
}

// IssuanceConfig controls how many new cards are produced each month and
// how they split between plastic and virtual. IssuedEqualsNetAdds is true
// unless explicitly disabled; when disabled no cards are issued at all.
type IssuanceConfig struct {
	PhysicalShareIssued float64 `json:"physical_share_issued"`
	IssuedEqualsNetAdds *bool   `json:"issued_equals_net_adds,omitempty"`
}

// IssueNetAdds reports whether monthly issuance follows net adds.
func (c IssuanceConfig) IssueNetAdds() bool {
	return c.IssuedEqualsNetAdds == nil || *c.IssuedEqualsNetAdds
}

// B2BTarget is the profitability condition the solver aims for.
type B2BTarget struct {
	Type   string  `json:"type"`
	Months int     `json:"months"`
	Amount float64 `json:"amount"`
}

// B2BConfig holds the partner-side commercial parameters. EmployeeFeeMonth
// is the per-active-card fee; in solve mode it is the unknown.
type B2BConfig struct {
	Companies               int       `json:"companies"`
	PlatformFeeCompanyMonth float64   `json:"platform_fee_company_month"`
	EmployeeFeeMonth        float64   `json:"employee_fee_month"`
	Mode                    string    `json:"mode"`
	Target                  B2BTarget `json:"target"`
}

// CommercialConfig groups revenue-side parameters.
type CommercialConfig struct {
	PartnerFeePct  float64   `json:"partner_fee_pct"`
	InterchangePct float64   `json:"interchange_pct"`
	B2B            B2BConfig `json:"b2b"`
}

// Toggles switch optional plan fees on or off per scenario, keyed by fee
// key. A missing key falls back to the fee's enabled_by_default. The
// physical-card switches follow the same rule; DeliveryMethod empty means
// the plan's default shipping method.
type Toggles struct {
	FixedFees             map[string]bool `json:"fixed_fees"`
	OneOffs               map[string]bool `json:"one_offs"`
	EventFees             map[string]bool `json:"event_fees"`
	PhysicalManufacturing *bool           `json:"physical_manufacturing,omitempty"`
	PhysicalDelivery      *bool           `json:"physical_delivery,omitempty"`
	DeliveryMethod        string          `json:"delivery_method,omitempty"`
}

// OpsAssumptions derive event volumes deterministically from usage.
type OpsAssumptions struct {
	KYCAttemptsPerNewUser    float64 `json:"kyc_attempts_per_new_user"`
	DocConfirmRatePerNewUser float64 `json:"doc_confirm_rate_per_new_user"`
	DisputeRatePerTx         float64 `json:"dispute_rate_per_tx"`
	SMSPerActiveUserMonth    float64 `json:"sms_per_active_user_month"`
	PINChangesPerActiveMonth float64 `json:"pin_changes_per_active_user_month"`
	ClosuresPerChurnedUser   float64 `json:"closures_per_churned_user"`
}

// Scenario is the full input to one simulation run.
type Scenario struct {
	Name          string           `json:"name"`
	HorizonMonths int              `json:"horizon_months"`
	Adoption      AdoptionConfig   `json:"adoption"`
	Usage         UsageConfig      `json:"usage"`
	Issuance      IssuanceConfig   `json:"issuance"`
	Commercial    CommercialConfig `json:"commercial"`
	Toggles       Toggles          `json:"toggles"`
	Ops           OpsAssumptions   `json:"ops_assumptions"`
}

// Validate checks the numeric-range invariants the engine owns. Shape
// validation (presence, types) is the loader's and API layer's problem.
func (s *Scenario) Validate() error {
	if s.HorizonMonths <= 0 {
		return &ErrInvalidScenario{Field: "horizon_months", Message: "must be positive"}
	}
	if s.Adoption.StartActiveCards < 0 {
		return &ErrInvalidScenario{Field: "adoption.start_active_cards", Message: "must be >= 0"}
	}
	if s.Adoption.ChurnRate < 0 || s.Adoption.ChurnRate >= 1 {
		return &ErrInvalidScenario{Field: "adoption.churn_rate", Message: "must be in [0,1)"}
	}
	if s.Usage.SpendPerActiveCardMonth < 0 {
		return &ErrInvalidScenario{Field: "usage.spend_per_active_card_month", Message: "must be >= 0"}
	}
	if s.Usage.AvgTicket < 0 {
		return &ErrInvalidScenario{Field: "usage.avg_ticket", Message: "must be >= 0"}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"usage.in_app_share", s.Usage.InAppShare},
		{"usage.ecom_share", s.Usage.EcomShare},
		{"usage.eea_share", s.Usage.EEAShare},
		{"usage.three_ds_attempt_rate", s.Usage.ThreeDSAttemptRate},
		{"issuance.physical_share_issued", s.Issuance.PhysicalShareIssued},
		{"commercial.partner_fee_pct", s.Commercial.PartnerFeePct},
		{"commercial.interchange_pct", s.Commercial.InterchangePct},
	} {
		if f.value < 0 || f.value > 1 {
			return &ErrInvalidScenario{Field: f.name, Message: "must be in [0,1]"}
		}
	}
	if s.Usage.AuthMultiplier != nil && *s.Usage.AuthMultiplier < 0 {
		return &ErrInvalidScenario{Field: "usage.auth_multiplier", Message: "must be >= 0"}
	}
	if s.Commercial.B2B.Companies < 0 {
		return &ErrInvalidScenario{Field: "commercial.b2b.companies", Message: "must be >= 0"}
	}
	if s.Commercial.B2B.PlatformFeeCompanyMonth < 0 {
		return &ErrInvalidScenario{Field: "commercial.b2b.platform_fee_company_month", Message: "must be >= 0"}
	}
	if s.Commercial.B2B.EmployeeFeeMonth < 0 {
		return &ErrInvalidScenario{Field: "commercial.b2b.employee_fee_month", Message: "must be >= 0"}
	}
	switch s.Commercial.B2B.Mode {
	case "", B2BModeGiven:
	case B2BModeSolveFee:
		switch s.Commercial.B2B.Target.Type {
		case TargetBreakeven, TargetProfit, TargetMargin:
		default:
			return &ErrInvalidScenario{Field: "commercial.b2b.target.type", Message: "unknown target type"}
		}
		if s.Commercial.B2B.Target.Months <= 0 {
			return &ErrInvalidScenario{Field: "commercial.b2b.target.months", Message: "must be positive"}
		}
	default:
		return &ErrInvalidScenario{Field: "commercial.b2b.mode", Message: "unknown mode"}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"ops_assumptions.kyc_attempts_per_new_user", s.Ops.KYCAttemptsPerNewUser},
		{"ops_assumptions.doc_confirm_rate_per_new_user", s.Ops.DocConfirmRatePerNewUser},
		{"ops_assumptions.dispute_rate_per_tx", s.Ops.DisputeRatePerTx},
		{"ops_assumptions.sms_per_active_user_month", s.Ops.SMSPerActiveUserMonth},
		{"ops_assumptions.pin_changes_per_active_user_month", s.Ops.PINChangesPerActiveMonth},
		{"ops_assumptions.closures_per_churned_user", s.Ops.ClosuresPerChurnedUser},
	} {
		if f.value < 0 {
			return &ErrInvalidScenario{Field: f.name, Message: "must be >= 0"}
		}
	}
	return nil
}

// SolveRequested reports whether this scenario asks for fee solving.
func (s *Scenario) SolveRequested() bool {
	return s.Commercial.B2B.Mode == B2BModeSolveFee
}

// Clone returns a deep copy, so sweeps can mutate it without touching the
// caller's scenario.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Toggles.FixedFees = cloneBoolMap(s.Toggles.FixedFees)
	c.Toggles.OneOffs = cloneBoolMap(s.Toggles.OneOffs)
	c.Toggles.EventFees = cloneBoolMap(s.Toggles.EventFees)
	c.Toggles.PhysicalManufacturing = cloneBoolPtr(s.Toggles.PhysicalManufacturing)
	c.Toggles.PhysicalDelivery = cloneBoolPtr(s.Toggles.PhysicalDelivery)
	c.Issuance.IssuedEqualsNetAdds = cloneBoolPtr(s.Issuance.IssuedEqualsNetAdds)
	if s.Usage.AuthMultiplier != nil {
		v := *s.Usage.AuthMultiplier
		c.Usage.AuthMultiplier = &v
	}
	return &c
}

func cloneBoolPtr(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

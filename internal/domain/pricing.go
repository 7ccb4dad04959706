package domain

// Pricing plan value objects. The plan is loaded once from static
// configuration and passed explicitly into every engine call; it is never
// mutated after load, so it can be shared across concurrent runs without
// locking.

// Metric keys for tiered monthly pricing tables.
const (
	MetricActiveCards = "active_cards"
	MetricAuthEEA     = "authorizations_eea"
	MetricAuthNonEEA  = "authorizations_non_eea"
	MetricThreeDS     = "three_ds"
)

// Event fee keys referenced by the monthly calculator.
const (
	EventCardIssue       = "card_issue"
	EventPersonalization = "plastic_personalization"
	EventKYCAttempt      = "kyc_attempt"
	EventDispute         = "dispute"
	EventSMS             = "sms"
	EventPINChange       = "pin_change"
	EventAccountClosure  = "account_closure"
	EventAccountDocs     = "account_documents"
)

// Tier is one bracket of a tiered price table. UpTo is the inclusive upper
// volume bound; nil means unbounded and is only valid on the last tier.
type Tier struct {
	UpTo  *float64 `json:"up_to"`
	Price float64  `json:"price"`
}

// TieredPricing is the ordered tier table for one billed metric.
// The entire volume is billed at the single tier rate determined by total
// volume (offer-table pricing, not marginal bracketing).
type TieredPricing struct {
	Unit  string `json:"unit"`
	Tiers []Tier `json:"tiers"`
}

// Validate checks the structural invariants of a tier table: non-empty,
// strictly ascending bounds, unbounded last tier.
func (tp TieredPricing) Validate(metric string) error {
	return validateTiers(metric, tp.Tiers)
}

func validateTiers(metric string, tiers []Tier) error {
	if len(tiers) == 0 {
		return &ErrInvalidPricingTable{Metric: metric, Reason: "tier list is empty"}
	}
	prev := -1.0
	for i, t := range tiers {
		if t.UpTo == nil {
			if i != len(tiers)-1 {
				return &ErrInvalidPricingTable{Metric: metric, Reason: "unbounded tier before the last position"}
			}
			continue
		}
		if *t.UpTo <= prev {
			return &ErrInvalidPricingTable{Metric: metric, Reason: "tier bounds are not strictly ascending"}
		}
		prev = *t.UpTo
	}
	if tiers[len(tiers)-1].UpTo != nil {
		return &ErrInvalidPricingTable{Metric: metric, Reason: "last tier must be unbounded"}
	}
	return nil
}

// FixedMonthlyFee is a named recurring fee. Mandatory fees always apply;
// optional fees are controlled by scenario toggles.
type FixedMonthlyFee struct {
	Key              string  `json:"key"`
	Label            string  `json:"label"`
	Amount           float64 `json:"amount"`
	Mandatory        bool    `json:"mandatory"`
	EnabledByDefault bool    `json:"enabled_by_default"`
}

// OneOffFee is a one-time fee applied in a single month (setup costs).
type OneOffFee struct {
	Key              string  `json:"key"`
	Label            string  `json:"label"`
	Amount           float64 `json:"amount"`
	EnabledByDefault bool    `json:"enabled_by_default"`
	ApplyMonth       int     `json:"apply_month"`
}

// EventFee is a per-occurrence fee (card issued, KYC attempt, dispute...).
type EventFee struct {
	Key              string  `json:"key"`
	Label            string  `json:"label"`
	Amount           float64 `json:"amount"`
	Unit             string  `json:"unit"`
	Mandatory        bool    `json:"mandatory"`
	EnabledByDefault bool    `json:"enabled_by_default"`
}

// ManufacturingTier is one batch bracket of the card manufacturing price
// list. MaxBatch nil means the bracket is open-ended.
type ManufacturingTier struct {
	MinBatch int     `json:"min_batch"`
	MaxBatch *int    `json:"max_batch"`
	Price    float64 `json:"price"`
}

// PhysicalManufacturing prices plastic card production per issued physical
// card, with the unit price depending on the monthly batch size.
type PhysicalManufacturing struct {
	EnabledByDefault bool                `json:"enabled_by_default"`
	Tiers            []ManufacturingTier `json:"tiers"`
	OrderingPolicy   string              `json:"ordering_policy"`
}

// UnitPrice returns the per-card price for a monthly batch. A batch below
// the smallest bracket is still produced and billed at the first bracket's
// price.
func (m PhysicalManufacturing) UnitPrice(batch float64) float64 {
	var price float64
	for _, t := range m.Tiers {
		if batch >= float64(t.MinBatch) && (t.MaxBatch == nil || batch <= float64(*t.MaxBatch)) {
			price = t.Price
			break
		}
	}
	if price == 0 && len(m.Tiers) > 0 {
		price = m.Tiers[0].Price
	}
	return price
}

// DeliveryMethod is one shipping option for physical cards.
type DeliveryMethod struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// PhysicalDelivery prices card shipping per issued physical card. The
// scenario may pick a method; absent that, DefaultMethod applies.
type PhysicalDelivery struct {
	EnabledByDefault bool             `json:"enabled_by_default"`
	Methods          []DeliveryMethod `json:"methods"`
	DefaultMethod    string           `json:"default_method"`
}

// Method resolves a delivery method by key, falling back to the first
// configured method when the key is unknown.
func (d PhysicalDelivery) Method(key string) (DeliveryMethod, bool) {
	for _, m := range d.Methods {
		if m.Key == key {
			return m, true
		}
	}
	if len(d.Methods) > 0 {
		return d.Methods[0], true
	}
	return DeliveryMethod{}, false
}

// PhysicalCardPricing groups the manufacturing and delivery price lists for
// plastic cards. Plans without physical issuance omit it.
type PhysicalCardPricing struct {
	Manufacturing PhysicalManufacturing `json:"manufacturing"`
	Delivery      PhysicalDelivery      `json:"delivery"`
}

// PricingPlan is the complete issuer pricing configuration. Immutable once
// loaded.
type PricingPlan struct {
	ID            string                   `json:"id"`
	Currency      string                   `json:"currency"`
	FixedMonthly  []FixedMonthlyFee        `json:"fixed_monthly"`
	OneOffs       []OneOffFee              `json:"one_offs"`
	TieredMonthly map[string]TieredPricing `json:"tiered_monthly"`
	EventFees     []EventFee               `json:"event_fees"`
	PhysicalCards *PhysicalCardPricing     `json:"physical_cards,omitempty"`
}

// Validate checks every tiered table in the plan. The active-card table is
// required; the other metrics are optional.
func (p *PricingPlan) Validate() error {
	if _, ok := p.TieredMonthly[MetricActiveCards]; !ok {
		return &ErrInvalidPricingTable{Metric: MetricActiveCards, Reason: "missing tier table"}
	}
	for metric, tp := range p.TieredMonthly {
		if err := tp.Validate(metric); err != nil {
			return err
		}
	}
	return nil
}

// TiersFor returns the tier table for a metric, or nil if the plan does not
// price that metric.
func (p *PricingPlan) TiersFor(metric string) []Tier {
	tp, ok := p.TieredMonthly[metric]
	if !ok {
		return nil
	}
	return tp.Tiers
}

// Event returns the event fee with the given key.
func (p *PricingPlan) Event(key string) (EventFee, bool) {
	for _, e := range p.EventFees {
		if e.Key == key {
			return e, true
		}
	}
	return EventFee{}, false
}

package recurring

import (
	"math"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Target cadences, in days, a group must match to be considered recurring.
const (
	MonthlyCadenceDays     = 30.0
	FortnightlyCadenceDays = 14.0
)

const detectionNote = "Detected based on stable pattern of amount, date, and merchant/source."

// Config holds the stability thresholds used by the detector.
type Config struct {
	MinOccurrences     int
	MaxDayVariation    float64
	MerchantSimilarity float64
	AmountDeviation    float64
	Currency           string
}

// DefaultConfig returns the thresholds the detector was tuned with.
func DefaultConfig() Config {
	return Config{
		MinOccurrences:     3,
		MaxDayVariation:    4,
		MerchantSimilarity: 0.90,
		AmountDeviation:    0.05,
		Currency:           "RM",
	}
}

// Outcome is the classification result for a candidate group.
type Outcome int

const (
	Accepted Outcome = iota
	// InsufficientData means the group has too few occurrences.
	InsufficientData
	// IrregularCadence means the mean interval matches no supported cadence.
	IrregularCadence
	// UnstableAmount means the amounts vary more than the allowed deviation.
	UnstableAmount
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case InsufficientData:
		return "insufficient_data"
	case IrregularCadence:
		return "irregular_cadence"
	case UnstableAmount:
		return "unstable_amount"
	default:
		return "unknown"
	}
}

// CandidateGroup is a cluster of same-flow transactions sharing a canonical
// merchant and amount bucket. Members are in ascending date order.
type CandidateGroup struct {
	CanonicalMerchant string
	AmountBucket      decimal.Decimal
	Members           []model.TransactionRecord
}

// Pattern is a recurring income or expense detected from history.
type Pattern struct {
	Flow              model.Flow      `json:"flow_type"`
	Name              string          `json:"name"`
	CanonicalMerchant string          `json:"canonical_merchant"`
	AmountBucket      decimal.Decimal `json:"amount_bucket"`
	AmountMean        decimal.Decimal `json:"amount"`
	AmountDeviation   float64         `json:"amount_deviation"`
	FrequencyDays     float64         `json:"frequency_days"`
	OccurrenceCount   int             `json:"count"`
	LastDate          civil.Date      `json:"last_date"`
	NextProjectedDate *civil.Date     `json:"next_date"`
	Notes             string          `json:"notes"`
}

// Detector finds recurring patterns in a user's transaction history. It keeps
// no state between calls.
type Detector struct {
	cfg Config
	log zerolog.Logger
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(cfg Config, log zerolog.Logger) *Detector {
	return &Detector{cfg: cfg, log: log}
}

// Cluster groups the transactions of one flow by canonical merchant and amount bucket.
// Groups are ordered by merchant, then bucket.
func (d *Detector) Cluster(transactions []model.TransactionRecord, flow model.Flow) []CandidateGroup {
	var flowTxs []model.TransactionRecord
	for _, tx := range transactions {
		if tx.Flow == flow {
			flowTxs = append(flowTxs, tx)
		}
	}
	if len(flowTxs) == 0 {
		return nil
	}

	sort.SliceStable(flowTxs, func(i, j int) bool {
		return flowTxs[i].Date.Before(flowTxs[j].Date)
	})

	// Distinct normalized names, in first-seen order
	seen := make(map[string]bool)
	var names []string
	for _, tx := range flowTxs {
		n := NormalizeMerchant(tx.Merchant)
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	canonical := CanonicalMerchants(names, d.cfg.MerchantSimilarity)

	type groupKey struct {
		merchant string
		bucket   string
	}
	index := make(map[groupKey]int)
	var groups []CandidateGroup
	for _, tx := range flowTxs {
		merchant := canonical[NormalizeMerchant(tx.Merchant)]
		bucket := AmountBucket(tx.Amount)
		key := groupKey{merchant: merchant, bucket: bucket.String()}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CandidateGroup{CanonicalMerchant: merchant, AmountBucket: bucket})
		}
		groups[i].Members = append(groups[i].Members, tx)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].CanonicalMerchant != groups[j].CanonicalMerchant {
			return groups[i].CanonicalMerchant < groups[j].CanonicalMerchant
		}
		return groups[i].AmountBucket.LessThan(groups[j].AmountBucket)
	})
	return groups
}

// Classify computes the stability metrics of a group and decides whether it is
// recurring. The returned pattern carries the metrics even when rejected.
func (d *Detector) Classify(group CandidateGroup) (Pattern, Outcome) {
	members := group.Members
	count := len(members)
	if count == 0 {
		return Pattern{}, InsufficientData
	}

	var frequency float64
	if count >= 2 {
		total := 0
		for i := 1; i < count; i++ {
			total += members[i].Date.DaysSince(members[i-1].Date)
		}
		frequency = roundTo(float64(total)/float64(count-1), 2)
	}

	sum := decimal.Zero
	amounts := make([]float64, count)
	for i, m := range members {
		sum = sum.Add(m.Amount)
		amounts[i] = m.Amount.InexactFloat64()
	}
	meanF, std := meanStd(amounts)

	var deviation float64
	switch {
	case meanF != 0:
		deviation = roundTo(std/meanF, 4)
	case std == 0:
		deviation = 0
	default:
		deviation = math.Inf(1)
	}

	last := members[count-1].Date
	p := Pattern{
		Name:              members[0].Merchant,
		CanonicalMerchant: group.CanonicalMerchant,
		AmountBucket:      group.AmountBucket,
		AmountMean:        sum.Div(decimal.NewFromInt(int64(count))).Round(2),
		AmountDeviation:   deviation,
		FrequencyDays:     frequency,
		OccurrenceCount:   count,
		LastDate:          last,
		Notes:             detectionNote,
	}
	// Projected from the reported 2dp frequency, so a mean of 15.498 is
	// 15.50 and then 16 days, never 15.
	if frequency > 0 {
		next := last.AddDays(int(math.RoundToEven(frequency)))
		p.NextProjectedDate = &next
	}

	if count < d.cfg.MinOccurrences {
		return p, InsufficientData
	}
	if !d.withinCadence(frequency, MonthlyCadenceDays) && !d.withinCadence(frequency, FortnightlyCadenceDays) {
		return p, IrregularCadence
	}
	if deviation > d.cfg.AmountDeviation {
		return p, UnstableAmount
	}
	return p, Accepted
}

// Detect returns the accepted recurring patterns of one flow.
func (d *Detector) Detect(transactions []model.TransactionRecord, flow model.Flow) []Pattern {
	patterns := make([]Pattern, 0)
	for _, group := range d.Cluster(transactions, flow) {
		p, outcome := d.Classify(group)
		if outcome != Accepted {
			d.log.Debug().
				Str("merchant", group.CanonicalMerchant).
				Str("amount_bucket", group.AmountBucket.String()).
				Int("count", len(group.Members)).
				Stringer("outcome", outcome).
				Msg("candidate group rejected")
			continue
		}
		p.Flow = flow
		patterns = append(patterns, p)
	}
	return patterns
}

func (d *Detector) withinCadence(frequency, target float64) bool {
	return math.Abs(frequency-target) <= d.cfg.MaxDayVariation
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return mean, math.Sqrt(sumSq / float64(len(values)))
}

func roundTo(v float64, places int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

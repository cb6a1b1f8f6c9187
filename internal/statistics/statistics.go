package statistics

import (
	"fmt"
	"math"
	"sort"
)

const (
	// MinCountBucket and MaxCountBucket bound the true count index buckets.
	// Rounds outside the range land in the end buckets.
	MinCountBucket = -5
	MaxCountBucket = 10
)

// RoundResult is one settled round reduced to what aggregate statistics need
type RoundResult struct {
	NetUnits   float64 // Net result in units of the initial bet
	Seed       int64   // Session seed, for replay
	CountIndex int     // Truncated true count when the round was dealt
	Hands      int     // Player hands after splits
	Blackjack  bool
	Doubled    bool
	Split      bool
	Surrender  bool
}

// CountStats tracks results for one true count bucket
type CountStats struct {
	Rounds    int
	SumUnits  float64
	SumUnits2 float64
}

// Statistics tracks aggregate results across many rounds
type Statistics struct {
	Rounds    int
	SumUnits  float64
	SumUnits2 float64   // Sum of squares for variance calculation
	Values    []float64 // Store all values for median/percentile calculation

	// Ledger: every round lands in exactly one of these
	Wins      int
	Losses    int
	Pushes    int
	WinUnits  float64
	LossUnits float64
	PushUnits float64
	AllUnits  float64 // Total for sanity check

	Blackjacks int
	Doubles    int
	Splits     int
	Surrenders int

	// True count analytics, index 0 is MinCountBucket
	CountResults [MaxCountBucket - MinCountBucket + 1]CountStats

	MaxWinUnits  float64
	MaxLossUnits float64
}

// Mean returns the arithmetic mean of all results in units per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumUnits / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumUnits2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := result.NetUnits
	s.Rounds++
	s.SumUnits += net
	s.SumUnits2 += net * net
	s.Values = append(s.Values, net)
	s.AllUnits += net

	switch {
	case net > 0:
		s.Wins++
		s.WinUnits += net
		s.MaxWinUnits = math.Max(s.MaxWinUnits, net)
	case net < 0:
		s.Losses++
		s.LossUnits += net
		s.MaxLossUnits = math.Min(s.MaxLossUnits, net)
	default:
		s.Pushes++
		s.PushUnits += net
	}

	if result.Blackjack {
		s.Blackjacks++
	}
	if result.Doubled {
		s.Doubles++
	}
	if result.Split {
		s.Splits++
	}
	if result.Surrender {
		s.Surrenders++
	}

	b := &s.CountResults[bucket(result.CountIndex)]
	b.Rounds++
	b.SumUnits += net
	b.SumUnits2 += net * net
}

// Merge folds another set of statistics into s
func (s *Statistics) Merge(o *Statistics) {
	s.Rounds += o.Rounds
	s.SumUnits += o.SumUnits
	s.SumUnits2 += o.SumUnits2
	s.Values = append(s.Values, o.Values...)
	s.Wins += o.Wins
	s.Losses += o.Losses
	s.Pushes += o.Pushes
	s.WinUnits += o.WinUnits
	s.LossUnits += o.LossUnits
	s.PushUnits += o.PushUnits
	s.AllUnits += o.AllUnits
	s.Blackjacks += o.Blackjacks
	s.Doubles += o.Doubles
	s.Splits += o.Splits
	s.Surrenders += o.Surrenders
	for i := range s.CountResults {
		s.CountResults[i].Rounds += o.CountResults[i].Rounds
		s.CountResults[i].SumUnits += o.CountResults[i].SumUnits
		s.CountResults[i].SumUnits2 += o.CountResults[i].SumUnits2
	}
	s.MaxWinUnits = math.Max(s.MaxWinUnits, o.MaxWinUnits)
	s.MaxLossUnits = math.Min(s.MaxLossUnits, o.MaxLossUnits)
}

func bucket(index int) int {
	return min(max(index, MinCountBucket), MaxCountBucket) - MinCountBucket
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// CountMean returns the mean result for rounds dealt at a true count index
func (s *Statistics) CountMean(index int) float64 {
	cs := s.CountResults[bucket(index)]
	if cs.Rounds == 0 {
		return 0
	}
	return cs.SumUnits / float64(cs.Rounds)
}

// CountRounds returns how many rounds were dealt at a true count index
func (s *Statistics) CountRounds(index int) int {
	return s.CountResults[bucket(index)].Rounds
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllUnits-s.WinUnits-s.LossUnits-s.PushUnits) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllUnits=%.6f, WinUnits=%.6f, LossUnits=%.6f, PushUnits=%.6f",
			s.AllUnits, s.WinUnits, s.LossUnits, s.PushUnits)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if s.Wins+s.Losses+s.Pushes != s.Rounds {
		return fmt.Errorf("wins+losses+pushes (%d) does not match rounds (%d)",
			s.Wins+s.Losses+s.Pushes, s.Rounds)
	}

	totalCountRounds := 0
	for _, cs := range s.CountResults {
		totalCountRounds += cs.Rounds
	}
	if totalCountRounds != s.Rounds {
		return fmt.Errorf("count bucket total (%d) does not match total rounds (%d)",
			totalCountRounds, s.Rounds)
	}

	return nil
}

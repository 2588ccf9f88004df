package synth

import (
	"math"
	"time"

	"mmmsynth/domain/mmm"
	"mmmsynth/internal/errors"
	"mmmsynth/internal/rng"
	"mmmsynth/ports"
)

// Config controls the size and shape of the synthetic weekly dataset
type Config struct {
	Samples   int
	Seed      int64
	StartDate time.Time

	// KeepFraction of each spend column survives missing-value injection
	KeepFraction float64
	MissingMode  MissingMode

	Channels [mmm.NumChannels]mmm.ChannelParams
}

// DefaultConfig returns three years of weekly data seeded with 91
func DefaultConfig() Config {
	return Config{
		Samples:      52 * 3,
		Seed:         91,
		StartDate:    mmm.DefaultStartDate,
		KeepFraction: 0.99,
		MissingMode:  MissingResample,
		Channels:     mmm.DefaultChannelParams(),
	}
}

// Fixed coefficients of the sales model
const (
	trendSlope     = 20.0
	trendIntercept = 2000.0
	// spend and demand carry a tenth of the trend
	trendShare = 10.0

	demandMin    = 5000
	demandMax    = 15000
	demandWeight = 1.2

	baseSales       = 2000.0
	channelCeiling  = 2000.0
	holidayUplift   = 30000.0
	seasonalWeight  = 500.0
	noiseSigma      = 200.0
	carryoverBase   = 1000.0
	carryoverScale  = 2000.0
	salesLag1Weight = 0.02
	salesLag2Weight = 0.01
)

// GenerateSeeded builds the dataset from a fresh stream seeded with cfg.Seed
func GenerateSeeded(cfg Config) (*mmm.Table, error) {
	return Generate(cfg, rng.New(cfg.Seed))
}

// Generate builds the weekly table. Draws are taken from r in a fixed order:
// each channel's spend, consumer demand, sales noise, then one permutation per
// spend column for missing-value injection.
func Generate(cfg Config, r ports.RNG) (*mmm.Table, error) {
	if cfg.Samples < 0 {
		return nil, errors.ValidationError("samples must be >= 0")
	}
	if cfg.KeepFraction <= 0 || cfg.KeepFraction > 1 {
		return nil, errors.ValidationError("keep fraction must be in (0, 1]")
	}
	if !cfg.MissingMode.Valid() {
		return nil, errors.ValidationError("unknown missing mode: " + string(cfg.MissingMode))
	}

	n := cfg.Samples
	t := mmm.NewTable(n)

	for i := 0; i < n; i++ {
		date := cfg.StartDate.AddDate(0, 0, 7*i)
		t.Records[i].Date = date
		t.Records[i].Holiday = mmm.IsHoliday(date)
		t.Trend[i] = trendSlope*float64(i) + trendIntercept
	}

	holidays := t.Holidays()

	for _, p := range cfg.Channels {
		for i := 0; i < n; i++ {
			draw := float64(r.IntRange(p.SpendMin, p.SpendMax))
			t.Records[i].Spend[p.Channel] = draw + p.HolidayBoost*holidays[i] + t.Trend[i]/trendShare
		}
	}

	demand := make([]float64, n)
	for i := range demand {
		demand[i] = float64(r.IntRange(demandMin, demandMax)) + t.Trend[i]/trendShare
	}

	for i := 0; i < n; i++ {
		rec := &t.Records[i]
		rec.Sales = baseSales +
			channelResponse(cfg.Channels, rec.Spend) +
			demandWeight*demand[i] +
			holidayUplift*holidays[i] +
			seasonalWeight*seasonal(rec.Date) +
			t.Trend[i] +
			noiseSigma*r.Normal()
	}

	t.SpendLags = spendLags(t)

	for i, c := range carryover(t, cfg.Channels) {
		t.Records[i].Sales += c
	}

	injectMissing(t, r, cfg.KeepFraction, cfg.MissingMode)

	sales := t.Sales()
	t.SalesLags = [mmm.MaxLag][]float64{shift(sales, 1), shift(sales, 2)}
	adj := reinforcement(t.SalesLags[0], t.SalesLags[1])
	for i := range t.Records {
		t.Records[i].Sales = math.RoundToEven(sales[i] + adj[i])
	}

	return t, nil
}

// channelResponse sums the saturating response of every channel to its spend
func channelResponse(params [mmm.NumChannels]mmm.ChannelParams, spend [mmm.NumChannels]float64) float64 {
	total := 0.0
	for _, p := range params {
		total += channelCeiling - p.Saturation*math.Exp(-p.ResponseRate*spend[p.Channel])
	}
	return total
}

// seasonal is the yearly sine keyed by the month of the week's Friday
func seasonal(date time.Time) float64 {
	month := float64(mmm.Anchor(date).Month())
	return math.Sin(2 * math.Pi * month / 12)
}

// shift returns values moved down by lag rows, NaN-filled at the top
func shift(values []float64, lag int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < lag {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i-lag]
	}
	return out
}

func spendLags(t *mmm.Table) [mmm.MaxLag][mmm.NumChannels][]float64 {
	var lags [mmm.MaxLag][mmm.NumChannels][]float64
	for lag := 1; lag <= mmm.MaxLag; lag++ {
		for _, ch := range mmm.Channels {
			lags[lag-1][ch] = shift(t.Spend(ch), lag)
		}
	}
	return lags
}

// carryover is the lagged spend contribution per row. A row missing any lagged
// value gets no carryover at all.
func carryover(t *mmm.Table, params [mmm.NumChannels]mmm.ChannelParams) []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		sum := 0.0
		for lag := 1; lag <= mmm.MaxLag; lag++ {
			for _, p := range params {
				s := t.SpendLags[lag-1][p.Channel][i]
				sum += carryoverBase - carryoverScale*math.Exp(-p.CarryoverDecay[lag-1]*s)
			}
		}
		if math.IsNaN(sum) {
			sum = 0
		}
		out[i] = sum
	}
	return out
}

// reinforcement feeds a share of the previous two weeks' sales back into the
// current week; missing history counts as zero
func reinforcement(lag1, lag2 []float64) []float64 {
	out := make([]float64, len(lag1))
	for i := range out {
		out[i] = salesLag1Weight*zeroIfNaN(lag1[i]) + salesLag2Weight*zeroIfNaN(lag2[i])
	}
	return out
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

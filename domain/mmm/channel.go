package mmm

import "fmt"

// Channel identifies a paid marketing channel
type Channel int

const (
	ChannelAdwords Channel = iota
	ChannelFacebookAds
	ChannelAwin
	ChannelTikTok
	ChannelSnapchat
)

// NumChannels is the number of modelled spend channels
const NumChannels = 5

// Channels lists every channel in frame order
var Channels = [NumChannels]Channel{
	ChannelAdwords,
	ChannelFacebookAds,
	ChannelAwin,
	ChannelTikTok,
	ChannelSnapchat,
}

var channelNames = map[Channel]string{
	ChannelAdwords:     "adwords",
	ChannelFacebookAds: "facebookads",
	ChannelAwin:        "awin",
	ChannelTikTok:      "tiktok",
	ChannelSnapchat:    "snapchat",
}

// String returns the short channel name
func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return "unknown"
}

// Column returns the spend column name, e.g. "adwords_spending"
func (c Channel) Column() string {
	return c.String() + "_spending"
}

// LagColumn returns the name of the spend column shifted by lag weeks
func (c Channel) LagColumn(lag int) string {
	return fmt.Sprintf("%s_t_%d", c.Column(), lag)
}

// ChannelParams holds the fixed causal parameters of one channel.
//
// Weekly spend is drawn uniformly from [SpendMin, SpendMax) and boosted by
// HolidayBoost on holiday weeks. Sales respond with
// 2000 - Saturation*exp(-ResponseRate*spend), and past spend carries over with
// 1000 - 2000*exp(-CarryoverDecay[lag-1]*spend_lag).
type ChannelParams struct {
	Channel        Channel
	SpendMin       int
	SpendMax       int
	HolidayBoost   float64
	Saturation     float64
	ResponseRate   float64
	CarryoverDecay [MaxLag]float64
}

// MaxLag is the deepest spend history that contributes carryover
const MaxLag = 2

// DefaultChannelParams returns the parameter table the synthetic truth is built from
func DefaultChannelParams() [NumChannels]ChannelParams {
	return [NumChannels]ChannelParams{
		{
			Channel:        ChannelAdwords,
			SpendMin:       1000,
			SpendMax:       5000,
			HolidayBoost:   2000,
			Saturation:     30000,
			ResponseRate:   0.005,
			CarryoverDecay: [MaxLag]float64{0.002, 0.001},
		},
		{
			Channel:        ChannelFacebookAds,
			SpendMin:       800,
			SpendMax:       4500,
			HolidayBoost:   1500,
			Saturation:     10000,
			ResponseRate:   0.007,
			CarryoverDecay: [MaxLag]float64{0.003, 0.002},
		},
		{
			Channel:        ChannelAwin,
			SpendMin:       300,
			SpendMax:       2000,
			HolidayBoost:   1000,
			Saturation:     40000,
			ResponseRate:   0.005,
			CarryoverDecay: [MaxLag]float64{0.002, 0.001},
		},
		{
			Channel:        ChannelTikTok,
			SpendMin:       200,
			SpendMax:       1500,
			HolidayBoost:   800,
			Saturation:     20000,
			ResponseRate:   0.003,
			CarryoverDecay: [MaxLag]float64{0.001, 0.001},
		},
		{
			Channel:        ChannelSnapchat,
			SpendMin:       300,
			SpendMax:       2000,
			HolidayBoost:   1000,
			Saturation:     50000,
			ResponseRate:   0.004,
			CarryoverDecay: [MaxLag]float64{0.003, 0.002},
		},
	}
}

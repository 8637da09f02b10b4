package exchange

import (
	"strings"
	"time"
)

//
// Interval is an enum that represents various kline/candlestick intervals that can be retrieved
// from an exchange's historical data endpoints. Every adapter keeps its own table translating an
// Interval into the vendor's spelling; an Interval missing from that table is unsupported there.
//
type Interval int

const (
	OneMinute Interval = iota
	ThreeMinute
	FiveMinute
	FifteenMinute
	ThirtyMinute
	OneHour
	TwoHour
	FourHour
	SixHour
	EightHour
	TwelveHour
	OneDay
	ThreeDay
	OneWeek
	OneMonth
)

var intervalNames = [...]string{"1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "8h", "12h", "1d", "3d", "1w", "1M"}

var intervalDurations = [...]time.Duration{
	time.Minute,
	3 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	2 * time.Hour,
	4 * time.Hour,
	6 * time.Hour,
	8 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	30 * 24 * time.Hour,
}

//
// aliases holds the alternative spellings accepted by ParseInterval. KuCoin style names are the
// ones users most often type.
//
var aliases = map[string]Interval{
	"1min":   OneMinute,
	"3min":   ThreeMinute,
	"5min":   FiveMinute,
	"15min":  FifteenMinute,
	"30min":  ThirtyMinute,
	"1hour":  OneHour,
	"2hour":  TwoHour,
	"4hour":  FourHour,
	"6hour":  SixHour,
	"8hour":  EightHour,
	"12hour": TwelveHour,
	"1day":   OneDay,
	"3day":   ThreeDay,
	"1week":  OneWeek,
	"1month": OneMonth,
}

func (o Interval) String() string {
	if !o.valid() {
		return "invalid"
	}

	return intervalNames[o]
}

//
// Duration returns the nominal length of one candle. A month is treated as thirty days.
//
func (o Interval) Duration() time.Duration {
	if !o.valid() {
		return 0
	}

	return intervalDurations[o]
}

func (o Interval) valid() bool {
	return o >= OneMinute && o <= OneMonth
}

//
// ParseInterval accepts either the canonical name ("30m") or an alias ("30min"). "1M" is the only
// case-sensitive name since it would otherwise collide with one minute.
//
func ParseInterval(s string) (Interval, error) {
	for i, name := range intervalNames {
		if s == name {
			return Interval(i), nil
		}
	}

	if interval, ok := aliases[strings.ToLower(s)]; ok {
		return interval, nil
	}

	return 0, NewParameterError("interval", "unknown interval", s)
}

//
// IntervalTable maps intervals to an exchange's own interval codes.
//
type IntervalTable map[Interval]string

//
// Code returns the vendor code for the interval or a ParameterError if the exchange does not
// support it.
//
func (o IntervalTable) Code(interval Interval) (string, error) {
	code, ok := o[interval]
	if !ok {
		return "", NewParameterError("interval", "not supported by this exchange", interval)
	}

	return code, nil
}

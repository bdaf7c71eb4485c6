package dataflows

import (
	"math"
	"sort"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// tradingDaysPerYear annualizes daily return volatility.
const tradingDaysPerYear = 252

// SortCandles orders bars by date ascending, which every calculation below
// assumes.
func SortCandles(candles []models.Candle) {
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date < candles[j].Date
	})
}

func closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close.InexactFloat64()
	}
	return out
}

// SMA returns the simple moving average of closes over period.
func SMA(candles []models.Candle, period int) []IndicatorValue {
	if period <= 0 || len(candles) < period {
		return nil
	}
	cl := closes(candles)

	var result []IndicatorValue
	sum := 0.0
	for i, v := range cl {
		sum += v
		if i >= period {
			sum -= cl[i-period]
		}
		if i >= period-1 {
			result = append(result, IndicatorValue{
				Date:  candles[i].Date,
				Value: sum / float64(period),
			})
		}
	}
	return result
}

// emaSeries computes the EMA over values, seeded with the SMA of the first
// period entries. out[i] is only meaningful for i >= period-1.
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	multiplier := 2.0 / (float64(period) + 1.0)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema

	for i := period; i < len(values); i++ {
		ema = values[i]*multiplier + ema*(1-multiplier)
		out[i] = ema
	}
	return out
}

// EMA returns the exponential moving average of closes over period.
func EMA(candles []models.Candle, period int) []IndicatorValue {
	if period <= 0 || len(candles) < period {
		return nil
	}
	series := emaSeries(closes(candles), period)

	result := make([]IndicatorValue, 0, len(candles)-period+1)
	for i := period - 1; i < len(candles); i++ {
		result = append(result, IndicatorValue{Date: candles[i].Date, Value: series[i]})
	}
	return result
}

// RSI returns the Wilder-smoothed relative strength index.
func RSI(candles []models.Candle, period int) []IndicatorValue {
	if period <= 0 || len(candles) < period+1 {
		return nil
	}
	cl := closes(candles)

	var gains, losses float64
	for i := 1; i <= period; i++ {
		ch := cl[i] - cl[i-1]
		if ch > 0 {
			gains += ch
		} else {
			losses -= ch
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	result := []IndicatorValue{{Date: candles[period].Date, Value: rsiValue(avgGain, avgLoss)}}
	for i := period + 1; i < len(cl); i++ {
		ch := cl[i] - cl[i-1]
		var gain, loss float64
		if ch > 0 {
			gain = ch
		} else {
			loss = -ch
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		result = append(result, IndicatorValue{Date: candles[i].Date, Value: rsiValue(avgGain, avgLoss)})
	}
	return result
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the 12/26 MACD line, its 9-period signal, and the histogram,
// all date-aligned. The line starts once 26 bars exist, the signal and
// histogram once 9 line values exist.
func MACD(candles []models.Candle) (line, signal, histogram []IndicatorValue) {
	const (
		fast       = 12
		slow       = 26
		signalSpan = 9
	)
	if len(candles) < slow {
		return nil, nil, nil
	}

	cl := closes(candles)
	emaFast := emaSeries(cl, fast)
	emaSlow := emaSeries(cl, slow)

	lineVals := make([]float64, 0, len(candles)-slow+1)
	for i := slow - 1; i < len(candles); i++ {
		v := emaFast[i] - emaSlow[i]
		lineVals = append(lineVals, v)
		line = append(line, IndicatorValue{Date: candles[i].Date, Value: v})
	}

	if len(lineVals) < signalSpan {
		return line, nil, nil
	}
	signalSeries := emaSeries(lineVals, signalSpan)
	for i := signalSpan - 1; i < len(lineVals); i++ {
		date := line[i].Date
		signal = append(signal, IndicatorValue{Date: date, Value: signalSeries[i]})
		histogram = append(histogram, IndicatorValue{Date: date, Value: lineVals[i] - signalSeries[i]})
	}
	return line, signal, histogram
}

// Bollinger returns the upper, middle, and lower bands over period with the
// given standard deviation multiplier.
func Bollinger(candles []models.Candle, period int, multiplier float64) (upper, middle, lower []IndicatorValue) {
	if period <= 0 || len(candles) < period {
		return nil, nil, nil
	}
	cl := closes(candles)

	for i := period - 1; i < len(candles); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += cl[j]
		}
		sma := sum / float64(period)

		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			diff := cl[j] - sma
			variance += diff * diff
		}
		stdDev := math.Sqrt(variance / float64(period))

		date := candles[i].Date
		upper = append(upper, IndicatorValue{Date: date, Value: sma + multiplier*stdDev})
		middle = append(middle, IndicatorValue{Date: date, Value: sma})
		lower = append(lower, IndicatorValue{Date: date, Value: sma - multiplier*stdDev})
	}
	return upper, middle, lower
}

// ATR returns the average true range over period.
func ATR(candles []models.Candle, period int) []IndicatorValue {
	if period <= 0 || len(candles) < period+1 {
		return nil
	}

	trueRanges := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		high := candles[i].High.InexactFloat64()
		low := candles[i].Low.InexactFloat64()
		prevClose := candles[i-1].Close.InexactFloat64()

		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		trueRanges = append(trueRanges, tr)
	}

	var result []IndicatorValue
	for i := period - 1; i < len(trueRanges); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += trueRanges[j]
		}
		result = append(result, IndicatorValue{
			Date:  candles[i+1].Date,
			Value: sum / float64(period),
		})
	}
	return result
}

// VWMA returns the volume weighted moving average over period.
func VWMA(candles []models.Candle, period int) []IndicatorValue {
	if period <= 0 || len(candles) < period {
		return nil
	}
	cl := closes(candles)

	var result []IndicatorValue
	for i := period - 1; i < len(candles); i++ {
		var totalVolume, weightedSum float64
		for j := i - period + 1; j <= i; j++ {
			v := float64(candles[j].Volume)
			totalVolume += v
			weightedSum += cl[j] * v
		}
		vwma := 0.0
		if totalVolume > 0 {
			vwma = weightedSum / totalVolume
		}
		result = append(result, IndicatorValue{Date: candles[i].Date, Value: vwma})
	}
	return result
}

// MFI returns the money flow index over period.
func MFI(candles []models.Candle, period int) []IndicatorValue {
	if period <= 0 || len(candles) < period+1 {
		return nil
	}

	typical := make([]float64, len(candles))
	for i, c := range candles {
		typical[i] = (c.High.InexactFloat64() + c.Low.InexactFloat64() + c.Close.InexactFloat64()) / 3
	}

	var result []IndicatorValue
	for i := period; i < len(candles); i++ {
		var positive, negative float64
		for j := i - period + 1; j <= i; j++ {
			flow := typical[j] * float64(candles[j].Volume)
			switch {
			case typical[j] > typical[j-1]:
				positive += flow
			case typical[j] < typical[j-1]:
				negative += flow
			}
		}

		mfi := 100.0
		if negative != 0 {
			ratio := positive / negative
			mfi = 100 - 100/(1+ratio)
		}
		result = append(result, IndicatorValue{Date: candles[i].Date, Value: mfi})
	}
	return result
}

// AnnualizedVolatility is the standard deviation of daily log returns
// scaled to a trading year. Fewer than three bars yield zero.
func AnnualizedVolatility(candles []models.Candle) float64 {
	if len(candles) < 3 {
		return 0
	}
	cl := closes(candles)

	returns := make([]float64, 0, len(cl)-1)
	for i := 1; i < len(cl); i++ {
		if cl[i-1] <= 0 || cl[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(cl[i]/cl[i-1]))
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}

// DeriveRiskMetrics reduces a candle history to the numeric inputs the risk
// engine and position sizer consume.
func DeriveRiskMetrics(candles []models.Candle) models.RiskMetrics {
	m := models.RiskMetrics{DataPoints: len(candles)}
	if len(candles) == 0 {
		return m
	}

	m.LastClose = candles[len(candles)-1].Close.InexactFloat64()
	m.Volatility = AnnualizedVolatility(candles)

	var totalVolume float64
	for _, c := range candles {
		totalVolume += float64(c.Volume)
	}
	m.AvgVolume = totalVolume / float64(len(candles))

	if len(candles) < 2 {
		return m
	}

	cl := closes(candles)
	var ups int
	var gainSum, lossSum float64
	var gainCount, lossCount int
	for i := 1; i < len(cl); i++ {
		ch := cl[i] - cl[i-1]
		if ch > 0 {
			ups++
			gainSum += ch
			gainCount++
		} else if ch < 0 {
			lossSum -= ch
			lossCount++
		}
	}
	m.WinRate = float64(ups) / float64(len(cl)-1)

	if gainCount > 0 && lossCount > 0 {
		avgGain := gainSum / float64(gainCount)
		avgLoss := lossSum / float64(lossCount)
		if avgLoss > 0 {
			m.PayoffRatio = avgGain / avgLoss
		}
	}
	return m
}

// LatestIndicators computes the most recent value of each indicator the
// market analyst reports on. Indicators without enough history are omitted.
func LatestIndicators(candles []models.Candle) map[string]float64 {
	out := make(map[string]float64)
	last := func(name string, series []IndicatorValue) {
		if len(series) > 0 {
			out[name] = series[len(series)-1].Value
		}
	}

	last("close_10_ema", EMA(candles, 10))
	last("close_50_sma", SMA(candles, 50))
	last("close_200_sma", SMA(candles, 200))
	last("vwma", VWMA(candles, 20))
	last("rsi", RSI(candles, 14))
	last("mfi", MFI(candles, 14))
	last("atr", ATR(candles, 14))

	line, signal, histogram := MACD(candles)
	last("macd", line)
	last("macds", signal)
	last("macdh", histogram)

	upper, middle, lower := Bollinger(candles, 20, 2)
	last("boll_ub", upper)
	last("boll", middle)
	last("boll_lb", lower)

	return out
}

package audio

import "math"

const (
	HighPassCutoffHz    = 80.0
	CompressorThreshold = 0.3
	CompressorRatio     = 0.6

	peakEpsilon = 1e-9
)

// Enhance prepares speech for recognition: unit-peak normalization, an 80 Hz
// high-pass to drop rumble, then soft compression of loud passages.
// The input slice is not modified.
func Enhance(samples []float64, sampleRate int) []float64 {
	out := NormalizePeak(samples)
	out = HighPass(out, sampleRate, HighPassCutoffHz)
	return Compress(out, CompressorThreshold, CompressorRatio)
}

// NormalizePeak scales samples so the loudest one sits at unit amplitude.
// All-zero input stays all-zero.
func NormalizePeak(samples []float64) []float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s / (peak + peakEpsilon)
	}
	return out
}

// biquad holds normalized (a0 = 1) direct-form coefficients.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// butterworthHighPass designs a 2nd-order Butterworth high-pass section via
// the bilinear transform with frequency pre-warping.
func butterworthHighPass(sampleRate int, cutoff float64) biquad {
	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * (1 / math.Sqrt2))

	a0 := 1 + alpha
	return biquad{
		b0: (1 + cosw) / 2 / a0,
		b1: -(1 + cosw) / a0,
		b2: (1 + cosw) / 2 / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
}

// HighPass filters samples with a 2nd-order Butterworth high-pass at cutoff Hz.
// Cutoffs at or above Nyquist leave the signal unchanged.
func HighPass(samples []float64, sampleRate int, cutoff float64) []float64 {
	out := make([]float64, len(samples))
	if sampleRate <= 0 || cutoff <= 0 || cutoff >= float64(sampleRate)/2 {
		copy(out, samples)
		return out
	}

	f := butterworthHighPass(sampleRate, cutoff)
	var x1, x2, y1, y2 float64
	for i, x := range samples {
		y := f.b0*x + f.b1*x1 + f.b2*x2 - f.a1*y1 - f.a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		out[i] = y
	}
	return out
}

// Compress reduces the part of each sample's magnitude above threshold by ratio.
func Compress(samples []float64, threshold, ratio float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		a := math.Abs(s)
		if a <= threshold {
			out[i] = s
			continue
		}
		out[i] = math.Copysign(threshold+(a-threshold)*ratio, s)
	}
	return out
}

// Quantize converts [-1, 1] floats to 16-bit signed PCM, clipping overshoot.
func Quantize(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if math.IsNaN(s) {
			continue
		}
		v := math.Round(s * math.MaxInt16)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		out[i] = int16(v)
	}
	return out
}

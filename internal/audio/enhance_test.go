package audio

import (
	"math"
	"testing"
)

func TestEnhanceSilenceStaysSilent(t *testing.T) {
	silence := make([]float64, 16000)

	out := Enhance(silence, 16000)
	if len(out) != len(silence) {
		t.Fatalf("len = %d, want %d", len(out), len(silence))
	}
	for i, s := range out {
		if math.IsNaN(s) || s != 0 {
			t.Fatalf("sample %d = %v, want 0", i, s)
		}
	}
	for i, q := range Quantize(out) {
		if q != 0 {
			t.Fatalf("quantized sample %d = %d, want 0", i, q)
		}
	}
}

func TestNormalizePeakScalesToUnit(t *testing.T) {
	out := NormalizePeak([]float64{0.1, -0.25, 0.05})

	if math.Abs(math.Abs(out[1])-1) > 1e-6 {
		t.Fatalf("peak = %v, want ~1", out[1])
	}
	if math.Abs(out[0]-0.4) > 1e-6 {
		t.Fatalf("out[0] = %v, want ~0.4", out[0])
	}
}

func TestHighPassRemovesDCOffset(t *testing.T) {
	const sr = 16000
	dc := make([]float64, sr)
	for i := range dc {
		dc[i] = 0.5
	}

	out := HighPass(dc, sr, HighPassCutoffHz)
	tail := out[len(out)-1000:]
	for i, s := range tail {
		if math.Abs(s) > 1e-3 {
			t.Fatalf("tail sample %d = %v, want ~0", i, s)
		}
	}
}

func TestHighPassKeepsSpeechBand(t *testing.T) {
	const sr = 16000
	in := sine(1000, sr, sr)

	out := HighPass(in, sr, HighPassCutoffHz)

	ratio := rms(out[sr/2:]) / rms(in[sr/2:])
	if ratio < 0.98 || ratio > 1.02 {
		t.Fatalf("1 kHz gain = %.3f, want ~1", ratio)
	}
}

func TestHighPassAttenuatesRumble(t *testing.T) {
	const sr = 16000
	in := sine(20, sr, sr)

	out := HighPass(in, sr, HighPassCutoffHz)

	// Second order: about -24 dB two octaves below cutoff.
	ratio := rms(out[sr/2:]) / rms(in[sr/2:])
	if ratio > 0.1 {
		t.Fatalf("20 Hz gain = %.3f, want < 0.1", ratio)
	}
}

func TestHighPassAboveNyquistIsIdentity(t *testing.T) {
	in := []float64{0.1, 0.2, -0.3}
	out := HighPass(in, 100, 80)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestCompress(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.2, 0.2},
		{0.3, 0.3},
		{1.0, 0.3 + 0.7*0.6},
		{-1.0, -(0.3 + 0.7*0.6)},
		{0.5, 0.3 + 0.2*0.6},
	}

	for _, tt := range tests {
		got := Compress([]float64{tt.in}, CompressorThreshold, CompressorRatio)[0]
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Compress(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestQuantizeClips(t *testing.T) {
	got := Quantize([]float64{0, 1, -1, 1.5, -1.5, 0.5, math.NaN()})
	want := []int16{0, 32767, -32767, 32767, -32768, 16384, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Quantize[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDownmix(t *testing.T) {
	got := Downmix([]float64{1, 0, 0.5, 0.5, -1, 1, 0.3}, 2)
	want := []float64{0.5, 0.5, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func rms(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

package analysis

import (
	"errors"
	"math"
	"math/cmplx"
)

var ErrNotPowerOfTwo = errors.New("analysis: fft length must be a power of two")

// FFT transforms data, whose length must be a power of two.
func FFT(data []float64) ([]complex128, error) {
	n := len(data)
	if n&(n-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	in := make([]complex128, n)
	for i, v := range data {
		in[i] = complex(v, 0)
	}
	return fft(in), nil
}

func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		return data
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

func PowerSpectrum(data []float64) ([]float64, error) {
	f, err := FFT(data)
	if err != nil {
		return nil, err
	}
	ps := make([]float64, len(f)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps, nil
}

// DominantPeriod returns the period, in the units of sampleDt, of the
// strongest oscillation in samples after removing the mean. Only the
// leading power-of-two prefix is analyzed. ok is false when there are fewer
// than 8 samples or the series is flat.
func DominantPeriod(samples []float64, sampleDt float64) (period float64, ok bool) {
	n := 1
	for n*2 <= len(samples) {
		n *= 2
	}
	if n < 8 || sampleDt <= 0 {
		return 0, false
	}

	var mean float64
	for _, v := range samples[:n] {
		mean += v
	}
	mean /= float64(n)
	centered := make([]float64, n)
	for i, v := range samples[:n] {
		centered[i] = v - mean
	}

	ps, err := PowerSpectrum(centered)
	if err != nil {
		return 0, false
	}
	best, peak := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > peak {
			best, peak = k, ps[k]
		}
	}
	if best == 0 || peak < 1e-12*float64(n) {
		return 0, false
	}
	return float64(n) * sampleDt / float64(best), true
}

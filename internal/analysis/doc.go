// Package analysis provides spectral tools for telemetry series recorded by
// headless runs.
//
//   - [FFT]: radix-2 discrete Fourier transform
//   - [PowerSpectrum]: magnitude of the positive-frequency bins
//   - [DominantPeriod]: period of the strongest non-constant component
//
// A symplectic integrator's energy error oscillates at the orbital period of
// the dominant pair, so the period of the sampled total energy is a cheap
// orbit estimate:
//
//	period, ok := analysis.DominantPeriod(result.Energy, dt*float64(sampleEvery))
package analysis

/*
 * Copyright 2026 The quadvfo authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package si5351

import (
	"errors"

	"quadvfo/src/support"
)

// VCO operating window. The low bound is relaxed from the 600MHz datasheet
// figure; the part tolerates it and it roughly doubles the tuning range at
// the bottom end.
const (
	vcoLow    = 400_000_000
	vcoHigh   = 900_000_000
	vcoCenter = 700_000_000
)

// ErrVCORange reports that the selected dividers put the internal
// oscillator outside its operating window. The parameters are still
// recorded and will be programmed as-is; the caller decides whether to
// back off.
var ErrVCORange = errors.New("si5351: VCO frequency out of range")

// selectDividers picks the R divider by frequency band and an even
// multisynth divider aiming the VCO at the center of its window.
//
// The R divider keeps the product freq*ri high enough that a divider in
// 4..126 can reach the window at all; below 6MHz only the top of the
// divider range comes close, so the maximum divider is used outright.
func selectDividers(freqHz uint32) (ri uint32, msi uint8) {
	switch {
	case freqHz < 1_000_000:
		ri = 128
	case freqHz < 3_000_000:
		ri = 32
	default:
		ri = 1
	}
	if freqHz < 6_000_000 {
		return ri, 126
	}
	tentative := uint32(vcoCenter / (uint64(freqHz) * uint64(ri)))
	if tentative < 4 {
		tentative = 4
	}
	if tentative > 126 {
		tentative = 126
	}
	// integer-mode multisynths only take even dividers
	if tentative&1 != 0 {
		tentative++
	}
	if tentative > 126 {
		tentative = 126
	}
	return ri, uint8(tentative)
}

// vcoFrequency is the internal oscillator frequency the dividers imply.
func vcoFrequency(freqHz, ri uint32, msi uint8) uint64 {
	return uint64(freqHz) * uint64(msi) * uint64(ri)
}

// feedbackRatio computes the PLL feedback multiplier a + b/fracDenom such
// that xtal*(a + b/fracDenom)/(msi*ri) hits freqHz as closely as the fixed
// denominator allows. Done in integer arithmetic so b is exactly the
// floor of the fractional part scaled by fracDenom.
func feedbackRatio(freqHz, ri uint32, msi uint8, xtal uint32) (a, b uint32) {
	fvco := vcoFrequency(freqHz, ri, msi)
	a = uint32(fvco / uint64(xtal))
	b = uint32(fvco % uint64(xtal) * fracDenom / uint64(xtal))
	return a, b
}

// feedbackRatioFine computes the same multiplier but lets the denominator
// float: the exact ratio fvco/xtal is reduced by continued fractions to
// the best b/c fitting the 20-bit P3 field. Resolution improves from
// roughly a quarter hertz to microhertz, which matters for slow digital
// modes.
func feedbackRatioFine(freqHz, ri uint32, msi uint8, xtal uint32) (a, b, c uint32) {
	fvco := vcoFrequency(freqHz, ri, msi)
	num, den, _ := support.NearestFraction(fvco, uint64(xtal), maxDenom)
	return uint32(num / den), uint32(num % den), uint32(den)
}

// rDivCode converts an R divider value (a power of two in 1..128) to its
// 3-bit register code.
func rDivCode(r uint32) uint8 {
	code := uint8(0)
	for r > 1 {
		r >>= 1
		code++
	}
	return code
}

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

package support

/*
NearestFraction finds the best approximation c/d ≈ a/b such that
d <= maxDenominator. Returns c, d and the error a/b - c/d as floating point.

The Si5351 encodes its PLL feedback ratio as a + b/c where c fits in a
20-bit register field. Simply pinning c at 2^20-1 and rounding b loses most
of that field's resolution: near 7MHz the quantization step is a sizeable
fraction of a hertz, which is fatal for modes like WSPR that modulate the
carrier in steps of 1.4648Hz. Taking the continued-fraction convergent of
the exact ratio instead gives errors well below a millihertz for any
denominator budget the chip allows.

The convergents p/q of a/b are built from the continued-fraction terms t
with the standard recurrence

	p[k] = t[k]*p[k-1] + p[k-2]
	q[k] = t[k]*q[k-1] + q[k-2]

and each convergent is the best rational approximation among all fractions
with a denominator no larger than its own. We run the recurrence forward
until the next denominator would exceed the budget and keep the last one
that fit.
*/
func NearestFraction(a, b, maxDenominator uint64) (c, d uint64, eps float64) {
	num, den := a, b
	p0, q0 := uint64(1), uint64(0)
	p1, q1 := num/den, uint64(1)
	num, den = den, num%den
	for den != 0 {
		t := num / den
		if t*q1+q0 > maxDenominator {
			break
		}
		p0, q0, p1, q1 = p1, q1, t*p1+p0, t*q1+q0
		num, den = den, num%den
	}
	return p1, q1, float64(a)/float64(b) - float64(p1)/float64(q1)
}

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

// The chip stores every multisynth ratio a + b/c as three fixed-point
// fields P1/P2/P3 spread over an 8-byte register block (AN619 §3.2):
//
//	P1 = 128*a + floor(128*b/c) - 512
//	P2 = 128*b - c*floor(128*b/c)
//	P3 = c
//
// The byte layout is the same for the PLL feedback multisynths and the
// output multisynths; only the output blocks carry the R-divider code in
// bits 6:4 of byte 2.

const (
	// fracDenom is the fixed denominator c used by the standard tuning
	// path: six decimal digits of fractional precision.
	fracDenom = 1_000_000
	// maxDenom is the widest denominator the 20-bit P3 field can hold,
	// used by the fine tuning path.
	maxDenom = 1<<20 - 1
)

// encodeFraction packs a + b/c into a synth register image. Requires
// b < c and c <= maxDenom.
func encodeFraction(a, b, c uint32) [8]byte {
	t := 128 * b / c
	p1 := 128*a + t - 512
	p2 := 128*b - c*t
	p3 := c
	return [8]byte{
		byte(p3 >> 8),
		byte(p3),
		byte(p1>>16) & 0x03,
		byte(p1 >> 8),
		byte(p1),
		byte(p3>>12)&0xF0 | byte(p2>>16)&0x0F,
		byte(p2 >> 8),
		byte(p2),
	}
}

// encodeDivider packs an even integer divider and a 3-bit R-divider code
// into an output multisynth image. With no fractional part, P2 = 0 and
// P3 = 1, so the general formula collapses to P1 = 128*div - 512 and the
// whole thing stays in integer arithmetic.
func encodeDivider(div uint8, rCode uint8) [8]byte {
	p1 := 128*uint32(div) - 512
	var buf [8]byte
	buf[1] = 0x01 // P3 = 1
	buf[2] = byte(p1>>16)&0x03 | rCode<<4&0x70
	buf[3] = byte(p1 >> 8)
	buf[4] = byte(p1)
	return buf
}

// decodeFraction recovers a + b/c from a synth register image. The inverse
// exists because floor(128*b/c) < 128, so it is exactly P1+512 mod 128.
func decodeFraction(buf [8]byte) (a, b, c uint32) {
	p1 := uint32(buf[2]&0x03)<<16 | uint32(buf[3])<<8 | uint32(buf[4])
	p2 := uint32(buf[5]&0x0F)<<16 | uint32(buf[6])<<8 | uint32(buf[7])
	c = uint32(buf[5]&0xF0)<<12 | uint32(buf[0])<<8 | uint32(buf[1])
	t := p1 + 512
	a = t / 128
	b = (t%128*c + p2) / 128
	return a, b, c
}

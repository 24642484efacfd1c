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

/*
Package si5351 drives a Si5351A clock generator as a two-channel VFO.

VFO 0 generates a quadrature pair on CLK0 and CLK1: both outputs share
PLLA and one integer multisynth divider, with CLK1 offset from CLK0 by a
selectable 0/90/180/270 degrees. VFO 1 generates a single output on CLK2
from PLLB. Frequency changes are two-step: SetFrequency computes and
stores the divider and feedback parameters, Update programs them into the
chip and pulses the PLL reset.

For smooth tuning call SetFrequency/Update at a bounded rate; around every
100ms works well.
*/
package si5351

import "tinygo.org/x/drivers"

// vfoState holds the synthesis parameters for one channel group.
//
// Invariants: freq*msi*ri is the VCO frequency and should sit inside the
// VCO window; msi is even in 4..126; ri is a power of two in 1..128;
// msnB < msnC.
type vfoState struct {
	freq  uint32 // target output frequency in Hz
	phase Phase  // quadrature selector, VFO 0 only
	ri    uint32 // R divider
	msi   uint8  // multisynth integer divider
	msnA  uint32 // feedback multiplier, integer part
	msnB  uint32 // feedback multiplier, fractional numerator
	msnC  uint32 // feedback multiplier, fractional denominator
}

// Device wraps an I2C connection to a Si5351A. Create one with New,
// adjust Crystal if the reference is not 25MHz, then call Configure. The
// bus must already be configured.
type Device struct {
	bus     drivers.I2C
	Address uint16
	Crystal uint32 // reference crystal frequency in Hz
	vfo     [2]vfoState
}

// New creates a driver instance on the given bus.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:     bus,
		Address: Address,
		Crystal: 25_000_000,
	}
}

func (d *Device) writeReg(reg, val uint8) error {
	return d.bus.Tx(d.Address, []byte{reg, val}, nil)
}

func (d *Device) writeRegs(reg uint8, data []byte) error {
	return d.bus.Tx(d.Address, append([]byte{reg}, data...), nil)
}

// readReg returns the register value, or 0xFF if the bus transaction
// fails. The sentinel is what an absent device would read as anyway, and
// callers treat it that way rather than aborting.
func (d *Device) readReg(reg uint8) uint8 {
	var buf [1]byte
	if err := d.bus.Tx(d.Address, []byte{reg}, buf[:]); err != nil {
		return 0xFF
	}
	return buf[0]
}

// Connected reports whether the chip answers on the bus and has finished
// its power-on initialization.
func (d *Device) Connected() (bool, error) {
	var buf [1]byte
	if err := d.bus.Tx(d.Address, []byte{regStatus}, buf[:]); err != nil {
		return false, err
	}
	return buf[0]&statusSysInit == 0, nil
}

// Configure brings the chip to a known state: spread spectrum off, 10pF
// crystal load, CLK0/CLK1 on PLLA and CLK2 on PLLB at 4mA drive, both
// VFOs programmed with power-on defaults, VFO 0 enabled and VFO 1 off.
func (d *Device) Configure() error {
	// Spread spectrum modulates PLLA and would wreck both the quadrature
	// relationship and the frequency accuracy.
	if err := d.writeReg(regSSEnable, 0x00); err != nil {
		return err
	}
	if err := d.writeReg(regXtalLoad, xtalLoad10pF); err != nil {
		return err
	}
	if err := d.writeReg(regClk0Ctl, clkSrcMultisynth|clkDrive4mA); err != nil {
		return err
	}
	if err := d.writeReg(regClk1Ctl, clkSrcMultisynth|clkDrive4mA); err != nil {
		return err
	}
	if err := d.writeReg(regClk2Ctl, clkSrcMultisynth|clkSrcPLLB|clkDrive4mA); err != nil {
		return err
	}

	d.vfo[0] = vfoState{freq: 7_074_000, phase: Phase270, ri: 1, msi: 106, msnA: 30, msnC: fracDenom}
	d.vfo[1] = vfoState{freq: 10_000_000, phase: Phase0, ri: 1, msi: 76, msnA: 30, msnC: fracDenom}

	if err := d.Update(0); err != nil {
		return err
	}
	if err := d.Update(1); err != nil {
		return err
	}
	if err := d.Enable(0, true); err != nil {
		return err
	}
	return d.Enable(1, false)
}

// ResetPLL resets PLLA and PLLB simultaneously. All outputs glitch
// briefly.
func (d *Device) ResetPLL() error {
	return d.writeReg(regPLLReset, 0xA0)
}

// Enable turns a VFO's outputs on or off without touching its frequency
// or phase parameters. VFO 0 owns CLK0 and CLK1, VFO 1 owns CLK2. Other
// indices are ignored.
func (d *Device) Enable(vfo int, on bool) error {
	var mask uint8
	switch vfo {
	case 0:
		mask = 0x03
	case 1:
		mask = 0x04
	default:
		return nil
	}
	oe := d.readReg(regOutputEnable) // a set bit disables the output
	if on {
		oe &^= mask
	} else {
		oe |= mask
	}
	return d.writeReg(regOutputEnable, oe)
}

// SetPhase selects the CLK1 phase relative to CLK0. Only VFO 0 has a
// quadrature pair; calls for other VFOs or with an unknown selector are
// ignored. Takes effect on the next Update.
func (d *Device) SetPhase(vfo int, p Phase) {
	if vfo != 0 || p > Phase270 {
		return
	}
	d.vfo[0].phase = p
}

// SetFrequency computes and stores the synthesis parameters for a new
// target frequency. Nothing is written to the chip until Update. Setting
// the current frequency again is a no-op.
//
// When the implied VCO frequency misses its operating window the
// parameters are still stored, and ErrVCORange reports the miss: the
// outputs would be wrong, and backing off is the caller's call.
func (d *Device) SetFrequency(vfo int, freqHz uint32) error {
	if vfo < 0 || vfo > 1 || d.vfo[vfo].freq == freqHz {
		return nil
	}
	ri, msi := selectDividers(freqHz)
	a, b := feedbackRatio(freqHz, ri, msi, d.Crystal)
	d.vfo[vfo] = vfoState{
		freq:  freqHz,
		phase: d.vfo[vfo].phase,
		ri:    ri,
		msi:   msi,
		msnA:  a,
		msnB:  b,
		msnC:  fracDenom,
	}
	if fv := vcoFrequency(freqHz, ri, msi); fv < vcoLow || fv > vcoHigh {
		return ErrVCORange
	}
	return nil
}

// Frequency returns the stored target frequency of a VFO.
func (d *Device) Frequency(vfo int) uint32 {
	if vfo < 0 || vfo > 1 {
		return 0
	}
	return d.vfo[vfo].freq
}

// Update programs all registers for a VFO from its stored parameters and
// pulses the PLL reset. It is idempotent; calling it with nothing pending
// rewrites the same values.
func (d *Device) Update(vfo int) error {
	if vfo < 0 || vfo > 1 {
		return nil
	}
	v := &d.vfo[vfo]

	msn := encodeFraction(v.msnA, v.msnB, v.msnC)
	pll := uint8(regPLLA)
	if vfo == 1 {
		pll = regPLLB
	}
	if err := d.writeRegs(pll, msn[:]); err != nil {
		return err
	}

	div := encodeDivider(v.msi, rDivCode(v.ri))
	if vfo == 0 {
		// CLK0 and CLK1 run the same divider; the quadrature offset and
		// inversion live entirely in the CLK1 registers.
		if err := d.writeRegs(regMS0, div[:]); err != nil {
			return err
		}
		if err := d.writeRegs(regMS1, div[:]); err != nil {
			return err
		}
		offset, invert := phaseRegisters(v.phase, v.msi)
		if err := d.writeReg(regClk0Phase, 0); err != nil {
			return err
		}
		if err := d.writeReg(regClk1Phase, offset); err != nil {
			return err
		}
		ctl := uint8(clkSrcMultisynth | clkIntegerMode | clkDrive4mA)
		if err := d.writeReg(regClk0Ctl, ctl); err != nil {
			return err
		}
		if invert {
			ctl |= clkInvert
		}
		if err := d.writeReg(regClk1Ctl, ctl); err != nil {
			return err
		}
	} else {
		if err := d.writeRegs(regMS2, div[:]); err != nil {
			return err
		}
		ctl := uint8(clkSrcMultisynth | clkIntegerMode | clkSrcPLLB | clkDrive4mA)
		if err := d.writeReg(regClk2Ctl, ctl); err != nil {
			return err
		}
	}

	return d.ResetPLL()
}

// UpdateFine is Update with the feedback fraction re-derived by continued
// fractions instead of the fixed six-digit denominator. Use it when
// tuning in sub-hertz steps.
func (d *Device) UpdateFine(vfo int) error {
	if vfo < 0 || vfo > 1 {
		return nil
	}
	v := &d.vfo[vfo]
	v.msnA, v.msnB, v.msnC = feedbackRatioFine(v.freq, v.ri, v.msi, d.Crystal)
	return d.Update(vfo)
}

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
	"testing"
)

var errBus = errors.New("i2c fault")

// fakeBus implements drivers.I2C over a flat register file, the way the
// chip itself behaves: the first written byte selects the register,
// further bytes write consecutive registers, reads return from the
// selected register onward.
type fakeBus struct {
	regs [256]uint8
	fail bool
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.fail {
		return errBus
	}
	if len(w) == 0 {
		return errBus
	}
	reg := int(w[0])
	for i, v := range w[1:] {
		b.regs[reg+i] = v
	}
	for i := range r {
		r[i] = b.regs[reg+i]
	}
	return nil
}

func newTestDevice() (*Device, *fakeBus) {
	bus := &fakeBus{}
	return New(bus), bus
}

func Test_configure(t *testing.T) {
	d, bus := newTestDevice()
	if err := d.Configure(); err != nil {
		t.Fatalf("Configure: %s", err)
	}
	if bus.regs[regSSEnable] != 0 {
		t.Error("spread spectrum left enabled")
	}
	if bus.regs[regXtalLoad] != xtalLoad10pF {
		t.Errorf("crystal load = %#x, want %#x", bus.regs[regXtalLoad], xtalLoad10pF)
	}
	// Update(0) rewrote the CLK0/CLK1 controls in integer mode; the default
	// phase is 270°, so CLK1 is inverted and offset by the divider.
	if bus.regs[regClk0Ctl] != clkSrcMultisynth|clkIntegerMode|clkDrive4mA {
		t.Errorf("CLK0 control = %#x", bus.regs[regClk0Ctl])
	}
	if bus.regs[regClk1Ctl] != clkSrcMultisynth|clkIntegerMode|clkInvert|clkDrive4mA {
		t.Errorf("CLK1 control = %#x", bus.regs[regClk1Ctl])
	}
	if bus.regs[regClk2Ctl] != clkSrcMultisynth|clkIntegerMode|clkSrcPLLB|clkDrive4mA {
		t.Errorf("CLK2 control = %#x", bus.regs[regClk2Ctl])
	}
	if bus.regs[regClk0Phase] != 0 || bus.regs[regClk1Phase] != 106 {
		t.Errorf("phase offsets = %d, %d", bus.regs[regClk0Phase], bus.regs[regClk1Phase])
	}
	// VFO 0 enabled (bits 0,1 clear), VFO 1 disabled (bit 2 set)
	if bus.regs[regOutputEnable] != 0x04 {
		t.Errorf("output enable = %#x, want 0x04", bus.regs[regOutputEnable])
	}
	if bus.regs[regPLLReset] != 0xA0 {
		t.Error("PLL reset not pulsed")
	}
	// default feedback multiplier 30.0 on both PLLs
	var pllA, pllB [8]byte
	copy(pllA[:], bus.regs[regPLLA:regPLLA+8])
	copy(pllB[:], bus.regs[regPLLB:regPLLB+8])
	if a, b, _ := decodeFraction(pllA); a != 30 || b != 0 {
		t.Errorf("PLLA programmed to %d + %d", a, b)
	}
	if a, b, _ := decodeFraction(pllB); a != 30 || b != 0 {
		t.Errorf("PLLB programmed to %d + %d", a, b)
	}
}

func Test_updateQuadrature(t *testing.T) {
	d, bus := newTestDevice()
	if err := d.SetFrequency(0, 7_074_000); err != nil {
		t.Fatalf("SetFrequency: %s", err)
	}
	d.SetPhase(0, Phase90)
	if err := d.Update(0); err != nil {
		t.Fatalf("Update: %s", err)
	}
	// both output multisynths carry the same divider image
	var ms0, ms1, pll [8]byte
	copy(ms0[:], bus.regs[regMS0:regMS0+8])
	copy(ms1[:], bus.regs[regMS1:regMS1+8])
	copy(pll[:], bus.regs[regPLLA:regPLLA+8])
	if ms0 != ms1 {
		t.Error("CLK0 and CLK1 dividers differ")
	}
	if div, _, _ := decodeFraction(ms0); div != 98 {
		t.Errorf("divider = %d, want 98", div)
	}
	if a, b, c := decodeFraction(pll); a != 27 || b != 730_080 || c != fracDenom {
		t.Errorf("PLLA programmed to %d + %d/%d", a, b, c)
	}
	// 90°: offset equals the divider, no inversion
	if bus.regs[regClk1Phase] != 98 {
		t.Errorf("CLK1 phase offset = %d, want 98", bus.regs[regClk1Phase])
	}
	if bus.regs[regClk1Ctl]&clkInvert != 0 {
		t.Error("CLK1 inverted at 90°")
	}
	// 270° keeps the offset and adds inversion
	d.SetPhase(0, Phase270)
	if err := d.Update(0); err != nil {
		t.Fatalf("Update: %s", err)
	}
	if bus.regs[regClk1Phase] != 98 || bus.regs[regClk1Ctl]&clkInvert == 0 {
		t.Error("270° must offset and invert CLK1")
	}
}

func Test_updateSecondVFO(t *testing.T) {
	d, bus := newTestDevice()
	if err := d.SetFrequency(1, 10_000_000); err != nil {
		t.Fatalf("SetFrequency: %s", err)
	}
	if err := d.Update(1); err != nil {
		t.Fatalf("Update: %s", err)
	}
	var ms2, pllB [8]byte
	copy(ms2[:], bus.regs[regMS2:regMS2+8])
	copy(pllB[:], bus.regs[regPLLB:regPLLB+8])
	if div, _, _ := decodeFraction(ms2); div != 70 {
		t.Errorf("CLK2 divider = %d, want 70", div)
	}
	if a, b, _ := decodeFraction(pllB); a != 28 || b != 0 {
		t.Errorf("PLLB programmed to %d + %d", a, b)
	}
	if bus.regs[regClk2Ctl]&clkSrcPLLB == 0 {
		t.Error("CLK2 not sourced from PLLB")
	}
}

func Test_setFrequencyIdempotent(t *testing.T) {
	d, _ := newTestDevice()
	if err := d.SetFrequency(0, 14_097_000); err != nil {
		t.Fatalf("SetFrequency: %s", err)
	}
	before := d.vfo[0]
	if err := d.SetFrequency(0, 14_097_000); err != nil {
		t.Fatalf("repeat SetFrequency: %s", err)
	}
	if d.vfo[0] != before {
		t.Error("repeated SetFrequency changed the stored parameters")
	}
}

func Test_vcoRangeObservable(t *testing.T) {
	d, _ := newTestDevice()
	// 2MHz drives the VCO far out of its window; the error must surface
	// but the parameters must still be stored as computed.
	err := d.SetFrequency(0, 2_000_000)
	if !errors.Is(err, ErrVCORange) {
		t.Fatalf("SetFrequency(2MHz) = %v, want ErrVCORange", err)
	}
	if d.vfo[0].freq != 2_000_000 || d.vfo[0].ri != 32 || d.vfo[0].msi != 126 {
		t.Error("out-of-window parameters were not stored")
	}
	if err := d.SetFrequency(0, 7_074_000); err != nil {
		t.Errorf("SetFrequency(7.074MHz) = %v", err)
	}
}

func Test_enableReadModifyWrite(t *testing.T) {
	d, bus := newTestDevice()
	bus.regs[regOutputEnable] = 0xFF // everything off, as after a dead read
	if err := d.Enable(0, true); err != nil {
		t.Fatalf("Enable: %s", err)
	}
	if bus.regs[regOutputEnable] != 0xFC {
		t.Errorf("output enable = %#x, want 0xFC", bus.regs[regOutputEnable])
	}
	if err := d.Enable(1, true); err != nil {
		t.Fatalf("Enable: %s", err)
	}
	if bus.regs[regOutputEnable] != 0xF8 {
		t.Errorf("output enable = %#x, want 0xF8", bus.regs[regOutputEnable])
	}
	if err := d.Enable(0, false); err != nil {
		t.Fatalf("Enable: %s", err)
	}
	if bus.regs[regOutputEnable] != 0xFB {
		t.Errorf("output enable = %#x, want 0xFB", bus.regs[regOutputEnable])
	}
}

func Test_invalidVFO(t *testing.T) {
	d, bus := newTestDevice()
	if err := d.SetFrequency(2, 7_074_000); err != nil {
		t.Errorf("SetFrequency on an invalid VFO = %v", err)
	}
	if err := d.Update(5); err != nil {
		t.Errorf("Update on an invalid VFO = %v", err)
	}
	if err := d.Enable(-1, true); err != nil {
		t.Errorf("Enable on an invalid VFO = %v", err)
	}
	d.SetPhase(1, Phase90)
	if d.vfo[1].phase != Phase0 {
		t.Error("SetPhase touched the non-quadrature VFO")
	}
	d.SetPhase(0, Phase(7))
	if d.vfo[0].phase != Phase0 {
		t.Error("an invalid selector changed the phase")
	}
	for _, v := range bus.regs {
		if v != 0 {
			t.Fatal("ignored operations still wrote registers")
		}
	}
}

func Test_busErrors(t *testing.T) {
	d, bus := newTestDevice()
	bus.fail = true
	if err := d.Configure(); !errors.Is(err, errBus) {
		t.Errorf("Configure on a dead bus = %v", err)
	}
	if _, err := d.Connected(); !errors.Is(err, errBus) {
		t.Errorf("Connected on a dead bus = %v", err)
	}
	// a dead read yields the 0xFF sentinel; Enable then writes it back
	// with the mask applied, which is as far as error handling goes there
	if err := d.Enable(0, false); !errors.Is(err, errBus) {
		t.Errorf("Enable on a dead bus = %v", err)
	}
}

func Test_connected(t *testing.T) {
	d, bus := newTestDevice()
	ok, err := d.Connected()
	if err != nil || !ok {
		t.Errorf("Connected = (%v, %v) with the chip ready", ok, err)
	}
	bus.regs[regStatus] = statusSysInit
	ok, err = d.Connected()
	if err != nil || ok {
		t.Errorf("Connected = (%v, %v) during chip init", ok, err)
	}
}

func Test_updateFine(t *testing.T) {
	d, bus := newTestDevice()
	if err := d.SetFrequency(0, 7_040_123); err != nil {
		t.Fatalf("SetFrequency: %s", err)
	}
	if err := d.UpdateFine(0); err != nil {
		t.Fatalf("UpdateFine: %s", err)
	}
	var pll [8]byte
	copy(pll[:], bus.regs[regPLLA:regPLLA+8])
	a, b, c := decodeFraction(pll)
	if c == fracDenom || c > maxDenom {
		t.Errorf("fine path denominator = %d", c)
	}
	v := d.vfo[0]
	if a != v.msnA || b != v.msnB || c != v.msnC {
		t.Errorf("registers carry %d + %d/%d, state has %d + %d/%d",
			a, b, c, v.msnA, v.msnB, v.msnC)
	}
}

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

package main

import (
	"fmt"
	"machine"
	"time"

	"quadvfo/src/si5351"
)

// Quadrature VFO on CLK0/CLK1 for a 40m direct-conversion receiver, with
// a 10MHz marker on CLK2, then a slow tuning sweep across the band.
func main() {
	err := machine.I2C0.Configure(machine.I2CConfig{})
	if err != nil {
		panic("failed to configure I2C0")
	}

	vfo := si5351.New(machine.I2C0)

	connected, err := vfo.Connected()
	if err != nil {
		panic("unable to read SI5351 status")
	}
	if !connected {
		panic("SI5351 not found on the bus")
	}
	if err := vfo.Configure(); err != nil {
		panic("unable to configure SI5351: " + err.Error())
	}

	if err := vfo.SetFrequency(0, 7_074_000); err != nil {
		fmt.Printf("VFO0: %s\n", err)
	}
	vfo.SetPhase(0, si5351.Phase90)
	if err := vfo.Update(0); err != nil {
		panic("unable to program VFO0: " + err.Error())
	}

	if err := vfo.SetFrequency(1, 10_000_000); err != nil {
		fmt.Printf("VFO1: %s\n", err)
	}
	if err := vfo.Update(1); err != nil {
		panic("unable to program VFO1: " + err.Error())
	}
	if err := vfo.Enable(1, true); err != nil {
		panic("unable to enable VFO1: " + err.Error())
	}

	fmt.Printf("CLK0/CLK1 quadrature at %d Hz, CLK2 at %d Hz\n",
		vfo.Frequency(0), vfo.Frequency(1))

	// Sweep the 40m band. One step per 100ms keeps the tuning smooth.
	tick := time.NewTicker(100 * time.Millisecond)
	f := uint32(7_000_000)
	for range tick.C {
		if err := vfo.SetFrequency(0, f); err != nil {
			fmt.Printf("set %d Hz: %s\n", f, err)
		}
		if err := vfo.Update(0); err != nil {
			fmt.Printf("update %d Hz: %s\n", f, err)
		}
		f += 100
		if f > 7_200_000 {
			f = 7_000_000
		}
	}
}

package si5351

// Si5351A register map, per AN619.
const (
	// Address is the chip's fixed I2C address.
	Address uint16 = 0x60

	regStatus       = 0   // device status
	regOutputEnable = 3   // output enable control, a set bit disables
	regClk0Ctl      = 16  // CLK0 control
	regClk1Ctl      = 17  // CLK1 control
	regClk2Ctl      = 18  // CLK2 control
	regPLLA         = 26  // PLLA feedback multisynth, 8 bytes
	regPLLB         = 34  // PLLB feedback multisynth, 8 bytes
	regMS0          = 42  // multisynth 0 (CLK0), 8 bytes
	regMS1          = 50  // multisynth 1 (CLK1), 8 bytes
	regMS2          = 58  // multisynth 2 (CLK2), 8 bytes
	regSSEnable     = 149 // spread spectrum enable
	regClk0Phase    = 165 // CLK0 initial phase offset
	regClk1Phase    = 166 // CLK1 initial phase offset
	regClk2Phase    = 167 // CLK2 initial phase offset
	regPLLReset     = 177 // PLL reset trigger
	regXtalLoad     = 183 // crystal internal load capacitance
)

// CLKn_CTL bit fields.
const (
	clkIntegerMode   = 1 << 6 // multisynth runs in integer mode
	clkSrcPLLB       = 1 << 5 // feed from PLLB instead of PLLA
	clkInvert        = 1 << 4 // invert the output
	clkSrcMultisynth = 0x0C   // clock source is the multisynth, not XTAL
	clkDrive4mA      = 0x01   // 4mA output drive strength
)

// Device status bits.
const statusSysInit = 1 << 7 // chip still initializing

// Crystal load capacitance codes; bits 5:0 are reserved and must read
// 0b010010.
const (
	xtalLoad6pF  = 0x40 | 0x12
	xtalLoad8pF  = 0x80 | 0x12
	xtalLoad10pF = 0xC0 | 0x12
)

/*
   gsx - 65C816 ADC/SBC, binary and BCD.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package cpu

// adc and sbc implement the W65C816 quirk that decimal mode (D flag) is
// honored in both 8-bit and 16-bit accumulator width, with per-nibble carry
// propagation rather than a single fixup pass -- unlike the NMOS 6502's
// undefined decimal-mode flags, the 65C816 sets N/V/Z correctly in decimal
// mode too.
func (s *State) adc(bus Bus, o operand) {
	wide := s.m16()
	v := s.readValue(bus, o, wide)
	carry := s.P&FlagC != 0

	if s.P&FlagD != 0 {
		if wide {
			s.adcDecimal16(v, carry)
		} else {
			s.adcDecimal8(uint8(v), carry)
		}
		return
	}

	if wide {
		a := s.A
		sum := uint32(a) + uint32(v) + b32(carry)
		r := uint16(sum)
		s.P &^= FlagC | FlagV | FlagN | FlagZ
		if sum > 0xFFFF {
			s.P |= FlagC
		}
		if (a^r)&(v^r)&0x8000 != 0 {
			s.P |= FlagV
		}
		s.A = r
		s.setNZ16(r)
		return
	}

	a := uint8(s.A)
	b := uint8(v)
	sum := uint16(a) + uint16(b) + uint16(b8(carry))
	r := uint8(sum)
	s.P &^= FlagC | FlagV | FlagN | FlagZ
	if sum > 0xFF {
		s.P |= FlagC
	}
	if (a^r)&(b^r)&0x80 != 0 {
		s.P |= FlagV
	}
	s.A = mergeWide(s.A, uint16(r), false)
	s.setNZ8(r)
}

func (s *State) sbc(bus Bus, o operand) {
	wide := s.m16()
	v := s.readValue(bus, o, wide)
	carry := s.P&FlagC != 0

	if s.P&FlagD != 0 {
		if wide {
			s.sbcDecimal16(v, carry)
		} else {
			s.sbcDecimal8(uint8(v), carry)
		}
		return
	}

	if wide {
		a := s.A
		vi := v ^ 0xFFFF
		sum := uint32(a) + uint32(vi) + b32(carry)
		r := uint16(sum)
		s.P &^= FlagC | FlagV | FlagN | FlagZ
		if sum > 0xFFFF {
			s.P |= FlagC
		}
		if (a^r)&(vi^r)&0x8000 != 0 {
			s.P |= FlagV
		}
		s.A = r
		s.setNZ16(r)
		return
	}

	a := uint8(s.A)
	b := uint8(v) ^ 0xFF
	sum := uint16(a) + uint16(b) + uint16(b8(carry))
	r := uint8(sum)
	s.P &^= FlagC | FlagV | FlagN | FlagZ
	if sum > 0xFF {
		s.P |= FlagC
	}
	if (a^r)&(b^r)&0x80 != 0 {
		s.P |= FlagV
	}
	s.A = mergeWide(s.A, uint16(r), false)
	s.setNZ8(r)
}

func b32(c bool) uint32 {
	if c {
		return 1
	}
	return 0
}

func (s *State) adcDecimal8(v uint8, carry bool) {
	a := uint8(s.A)
	al := (a & 0x0F) + (v & 0x0F) + b8(carry)
	if al > 9 {
		al = ((al + 6) & 0x0F) + 0x10
	}
	sum := uint16(a&0xF0) + uint16(v&0xF0) + uint16(al)
	// V is the binary-addition overflow of the high nibble sum before the
	// final $60 decimal correction, per the documented 65C02/65C816 decimal
	// flag behavior -- not the NMOS 6502's undefined decimal V.
	overflow := ^(uint16(a)^uint16(v))&(uint16(a)^sum)&0x80 != 0
	if sum >= 0xA0 {
		sum += 0x60
	}
	r := uint8(sum)
	s.P &^= FlagC | FlagN | FlagZ | FlagV
	if sum >= 0x100 {
		s.P |= FlagC
	}
	if overflow {
		s.P |= FlagV
	}
	s.A = mergeWide(s.A, uint16(r), false)
	s.setNZ8(r)
}

func (s *State) sbcDecimal8(v uint8, carry bool) {
	a := uint8(s.A)
	borrow := uint8(1)
	if carry {
		borrow = 0
	}
	lo := int16(a&0x0F) - int16(v&0x0F) - int16(borrow)
	hi := int16(a>>4) - int16(v>>4)
	if lo < 0 {
		lo -= 6
		hi--
	}
	noBorrow := true
	if hi < 0 {
		hi -= 6
		noBorrow = false
	}
	r := uint8((hi<<4)&0xF0) | uint8(lo&0x0F)
	// C is the decimal borrow computed above and N/Z come from the BCD
	// result; only V is taken from the equivalent binary subtraction of
	// the original operands, same as non-decimal SBC.
	bv := v ^ 0xFF
	bsum := uint16(a) + uint16(bv) + uint16(b8(carry))
	overflow := (a^uint8(bsum))&(bv^uint8(bsum))&0x80 != 0
	s.P &^= FlagC | FlagN | FlagZ | FlagV
	if noBorrow {
		s.P |= FlagC
	}
	if overflow {
		s.P |= FlagV
	}
	s.A = mergeWide(s.A, uint16(r), false)
	s.setNZ8(r)
}

func (s *State) adcDecimal16(v uint16, carry bool) {
	a := s.A
	r := uint16(0)
	c := b16(carry)
	overflowed := false
	for nibble := 0; nibble < 4; nibble++ {
		shift := uint(nibble * 4)
		an := (a >> shift) & 0xF
		vn := (v >> shift) & 0xF
		sum := an + vn + c
		if sum > 9 {
			sum += 6
			c = 1
		} else {
			c = 0
		}
		r |= (sum & 0xF) << shift
	}
	if c != 0 {
		overflowed = true
	}
	// V applies the binary signed-overflow rule to the operands and the
	// BCD-corrected result r (the decimal overflow rule is otherwise a
	// per-nibble carry chain with no single clean binary analogue).
	overflow := (a^r)&(v^r)&0x8000 != 0
	s.P &^= FlagC | FlagN | FlagZ | FlagV
	if overflowed {
		s.P |= FlagC
	}
	if overflow {
		s.P |= FlagV
	}
	s.A = r
	s.setNZ16(r)
}

func (s *State) sbcDecimal16(v uint16, carry bool) {
	a := s.A
	r := uint16(0)
	borrow := int16(1)
	if carry {
		borrow = 0
	}
	noBorrow := true
	for nibble := 0; nibble < 4; nibble++ {
		shift := uint(nibble * 4)
		an := int16((a >> shift) & 0xF)
		vn := int16((v >> shift) & 0xF)
		d := an - vn - borrow
		if d < 0 {
			d += 10
			borrow = 1
		} else {
			borrow = 0
		}
		r |= uint16(d&0xF) << shift
	}
	if borrow != 0 {
		noBorrow = false
	}
	bv := v ^ 0xFFFF
	bsum := uint32(a) + uint32(bv) + uint32(b16(carry))
	overflow := (a^uint16(bsum))&(bv^uint16(bsum))&0x8000 != 0
	s.P &^= FlagC | FlagN | FlagZ | FlagV
	if noBorrow {
		s.P |= FlagC
	}
	if overflow {
		s.P |= FlagV
	}
	s.A = r
	s.setNZ16(r)
}

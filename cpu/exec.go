package cpu

// A handler executes every instruction that shares one top nibble.
// By the time it runs, the program counter already points past the instruction.
type handler func(c *Chip8, opcode Opcode) error

// dispatch maps an opcode's top nibble to its handler.
var dispatch = [16]handler{
	0x0: (*Chip8).exec0,
	0x1: (*Chip8).jump,
	0x2: (*Chip8).call,
	0x3: (*Chip8).skipEqualByte,
	0x4: (*Chip8).skipNotEqualByte,
	0x5: (*Chip8).skipEqualRegister,
	0x6: (*Chip8).loadByte,
	0x7: (*Chip8).addByte,
	0x8: (*Chip8).exec8,
	0x9: (*Chip8).skipNotEqualRegister,
	0xA: (*Chip8).loadIndex,
	0xB: (*Chip8).jumpOffset,
	0xC: (*Chip8).random,
	0xD: (*Chip8).draw,
	0xE: (*Chip8).execE,
	0xF: (*Chip8).execF,
}

func (c *Chip8) skip() {
	c.pc += InstructionSize
}

func (c *Chip8) unrecognized(opcode Opcode) error {
	return &OpcodeError{Opcode: uint16(opcode), PC: c.pc - InstructionSize}
}

func (c *Chip8) exec0(opcode Opcode) error {
	// 00EE: RET (return)
	if opcode.N() == 0xE {
		c.logger.Printf("%04x: RET", opcode)
		addr, err := c.stack.Pop()
		if err != nil {
			return err
		}
		c.pc = addr
		return nil
	}

	// 00E0: CLS (clear). Every other 0nnn lands here too.
	c.logger.Printf("%04x: CLS", opcode)
	c.display.Clear()
	c.drawRequired = true
	return nil
}

// 1nnn: JP (jump) addr
func (c *Chip8) jump(opcode Opcode) error {
	addr := opcode.NNN()
	c.logger.Printf("%04x: JP %03x", opcode, addr)
	c.pc = addr
	return nil
}

// 2nnn: CALL addr
func (c *Chip8) call(opcode Opcode) error {
	addr := opcode.NNN()
	c.logger.Printf("%04x: CALL %03x", opcode, addr)
	// pc already points at the instruction after the CALL, which is where RET comes back to.
	if err := c.stack.Push(c.pc); err != nil {
		return err
	}
	c.pc = addr
	return nil
}

// 3xkk: SE Vx byte (skip if equal)
func (c *Chip8) skipEqualByte(opcode Opcode) error {
	x, kk := opcode.X(), opcode.KK()
	c.logger.Printf("%04x: SE V%x %02x", opcode, x, kk)
	if c.registers.Get(x) == kk {
		c.skip()
	}
	return nil
}

// 4xkk: SNE Vx byte (skip if not equal)
func (c *Chip8) skipNotEqualByte(opcode Opcode) error {
	x, kk := opcode.X(), opcode.KK()
	c.logger.Printf("%04x: SNE V%x %02x", opcode, x, kk)
	if c.registers.Get(x) != kk {
		c.skip()
	}
	return nil
}

// 5xy0: SE Vx Vy (skip if equal)
func (c *Chip8) skipEqualRegister(opcode Opcode) error {
	x, y := opcode.X(), opcode.Y()
	c.logger.Printf("%04x: SE V%x V%x", opcode, x, y)
	if c.registers.Get(x) == c.registers.Get(y) {
		c.skip()
	}
	return nil
}

// 6xkk: LD Vx byte (load value to register)
func (c *Chip8) loadByte(opcode Opcode) error {
	x, kk := opcode.X(), opcode.KK()
	c.logger.Printf("%04x: LD V%x %02x", opcode, x, kk)
	c.registers.Set(x, kk)
	return nil
}

// 7xkk: ADD Vx byte (add value to register). Wraps around, and never touches VF.
func (c *Chip8) addByte(opcode Opcode) error {
	x, kk := opcode.X(), opcode.KK()
	c.logger.Printf("%04x: ADD V%x %02x", opcode, x, kk)
	c.registers.Set(x, c.registers.Get(x)+kk)
	return nil
}

// exec8 runs the register-to-register ALU instructions.
// Instructions that set VF write it after Vx, so with x=F the flag wins.
func (c *Chip8) exec8(opcode Opcode) error {
	x, y := opcode.X(), opcode.Y()
	vx, vy := c.registers.Get(x), c.registers.Get(y)

	switch opcode.N() {

	// 8xy0: LD Vx Vy (clone register)
	case 0x0:
		c.logger.Printf("%04x: LD V%x V%x", opcode, x, y)
		c.registers.Set(x, vy)

	// 8xy1: OR Vx Vy (or Vx Vy, assign result to Vx)
	case 0x1:
		c.logger.Printf("%04x: OR V%x V%x", opcode, x, y)
		c.registers.Set(x, vx|vy)

	// 8xy2: AND Vx Vy (and Vx Vy, assign result to Vx)
	case 0x2:
		c.logger.Printf("%04x: AND V%x V%x", opcode, x, y)
		c.registers.Set(x, vx&vy)

	// 8xy3: XOR Vx Vy (xor Vx Vy, assign result to Vx)
	case 0x3:
		c.logger.Printf("%04x: XOR V%x V%x", opcode, x, y)
		c.registers.Set(x, vx^vy)

	// 8xy4: ADD Vx Vy (add Vx Vy, assign result to Vx, set VF=1 on carry)
	case 0x4:
		c.logger.Printf("%04x: ADD V%x V%x", opcode, x, y)
		sum := uint16(vx) + uint16(vy)
		c.registers.Set(x, byte(sum))
		c.registers.Set(flagRegister, flag(sum > 0xff))

	// 8xy5: SUB Vx Vy (Vx = Vx - Vy, set VF=1 if Vx > Vy)
	case 0x5:
		c.logger.Printf("%04x: SUB V%x V%x", opcode, x, y)
		c.registers.Set(x, vx-vy)
		c.registers.Set(flagRegister, flag(vx > vy))

	// 8xy6: SHR Vx (set VF to the lowest bit of Vx, then right shift Vx by 1). Vy is ignored.
	case 0x6:
		c.logger.Printf("%04x: SHR V%x", opcode, x)
		c.registers.Set(x, vx>>1)
		c.registers.Set(flagRegister, vx&0x01)

	// 8xy7: SUBN Vx Vy (Vx = Vy - Vx, set VF=1 if Vy > Vx)
	case 0x7:
		c.logger.Printf("%04x: SUBN V%x V%x", opcode, x, y)
		c.registers.Set(x, vy-vx)
		c.registers.Set(flagRegister, flag(vy > vx))

	// 8xyE: SHL Vx (set VF to the highest bit of Vx, then left shift Vx by 1). Vy is ignored.
	case 0xE:
		c.logger.Printf("%04x: SHL V%x", opcode, x)
		c.registers.Set(x, vx<<1)
		c.registers.Set(flagRegister, vx>>7)

	default:
		return c.unrecognized(opcode)
	}
	return nil
}

// 9xy0: SNE Vx Vy (skip next opcode if Vx != Vy)
func (c *Chip8) skipNotEqualRegister(opcode Opcode) error {
	x, y := opcode.X(), opcode.Y()
	c.logger.Printf("%04x: SNE V%x V%x", opcode, x, y)
	if c.registers.Get(x) != c.registers.Get(y) {
		c.skip()
	}
	return nil
}

// Annn: LD I addr (set I=nnn)
func (c *Chip8) loadIndex(opcode Opcode) error {
	addr := opcode.NNN()
	c.logger.Printf("%04x: LD I %03x", opcode, addr)
	c.i = addr
	return nil
}

// Bnnn: JP V0 addr (jump to address nnn + v0, set PC=nnn + v0)
func (c *Chip8) jumpOffset(opcode Opcode) error {
	addr := opcode.NNN()
	c.logger.Printf("%04x: JP V0 %03x", opcode, addr)
	c.pc = addr + uint16(c.registers.Get(0))
	return nil
}

// Cxkk: RND Vx byte (Vx = random byte and kk)
func (c *Chip8) random(opcode Opcode) error {
	x, kk := opcode.X(), opcode.KK()
	c.logger.Printf("%04x: RND V%x %02x", opcode, x, kk)
	c.registers.Set(x, c.rng.Next()&kk)
	return nil
}

// Dxyn: DRW Vx Vy n (display n-byte sprite located at I at coordinates Vx,Vy, set VF=collision)
//
// The starting coordinates wrap around to the screen, but the sprite itself is clipped
// at the right and bottom edges.
func (c *Chip8) draw(opcode Opcode) error {
	x, y, n := opcode.X(), opcode.Y(), opcode.N()
	c.logger.Printf("%04x: DRW V%x V%x %x", opcode, x, y, n)

	// read the whole sprite first, so a sprite hanging off the end of
	// memory fails without drawing half of itself.
	sprite, err := c.memory.Slice(int(c.i), int(n))
	if err != nil {
		return err
	}

	left := int(c.registers.Get(x)) % ScreenWidth
	top := int(c.registers.Get(y)) % ScreenHeight
	collided := false
	for row, b := range sprite {
		if c.display.DrawSprite(left, top+row, b) {
			collided = true
		}
	}
	c.registers.Set(flagRegister, flag(collided))
	c.drawRequired = true
	return nil
}

func (c *Chip8) execE(opcode Opcode) error {
	x := opcode.X()
	key := c.registers.Get(x)

	// Ex9E: SKP Vx (skip next instruction if key with the value of Vx is currently pressed)
	if opcode.N() == 0xE {
		c.logger.Printf("%04x: SKP V%x", opcode, x)
		if c.keyPressed(key) {
			c.skip()
		}
		return nil
	}

	// ExA1: SKNP Vx (skip next instruction if key with the value of Vx is currently not pressed)
	c.logger.Printf("%04x: SKNP V%x", opcode, x)
	if !c.keyPressed(key) {
		c.skip()
	}
	return nil
}

func (c *Chip8) keyPressed(key byte) bool {
	return int(key) < KeyCount && c.keys[key]
}

func (c *Chip8) execF(opcode Opcode) error {
	x := opcode.X()
	vx := c.registers.Get(x)

	switch opcode.KK() {

	// Fx07: LD Vx DT (set Vx=DT)
	case 0x07:
		c.logger.Printf("%04x: LD V%x DT", opcode, x)
		c.registers.Set(x, c.dt)

	// Fx0A: LD Vx K (wait for key press, store value of key press in Vx)
	case 0x0A:
		c.logger.Printf("%04x: LD V%x K", opcode, x)
		// Tick does nothing until KeyDown or KeyUp releases the wait.
		// Vx only receives the key with WithKeyCapture.
		c.waitingForKey = true
		c.keyRegister = x

	// Fx15: LD DT Vx (set DT=Vx)
	case 0x15:
		c.logger.Printf("%04x: LD DT V%x", opcode, x)
		c.dt = vx

	// Fx18: LD ST Vx (set ST=Vx)
	case 0x18:
		c.logger.Printf("%04x: LD ST V%x", opcode, x)
		was := c.st
		c.st = vx
		switch {
		case was == 0 && vx > 0:
			c.emit(SoundStart)
		case was > 0 && vx == 0:
			c.emit(SoundStop)
		}

	// Fx1E: ADD I Vx (set I=I+Vx)
	case 0x1E:
		c.logger.Printf("%04x: ADD I V%x", opcode, x)
		c.i += uint16(vx)

	// Fx29: LD F Vx (set I=memory address of sprite corresponding to digit in Vx)
	case 0x29:
		c.logger.Printf("%04x: LD F V%x", opcode, x)
		// only 0-F have a glyph; anything else leaves I alone.
		if vx <= 0xF {
			c.i = FontAddress + uint16(vx)*GlyphSize
		}

	// Fx33: LD B Vx (store the BCD representation of Vx in memory locations
	// I (hundreds place), I+1 (tens place), I+2 (ones place))
	case 0x33:
		c.logger.Printf("%04x: LD B V%x", opcode, x)
		addr := int(c.i)
		if err := checkRange(addr, 3); err != nil {
			return err
		}
		for offset, digit := range [3]byte{vx / 100, vx / 10 % 10, vx % 10} {
			if err := c.memory.Write(addr+offset, digit); err != nil {
				return err
			}
		}

	// Fx55: LD [I] Vx (store registers V0 through Vx in memory starting at I)
	case 0x55:
		c.logger.Printf("%04x: LD [I] V%x", opcode, x)
		addr := int(c.i)
		if err := checkRange(addr, x+1); err != nil {
			return err
		}
		for r := 0; r <= x; r++ {
			if err := c.memory.Write(addr+r, c.registers.Get(r)); err != nil {
				return err
			}
		}

	// Fx65: LD Vx [I] (read values in memory starting at I into registers V0 through Vx)
	case 0x65:
		c.logger.Printf("%04x: LD V%x [I]", opcode, x)
		values, err := c.memory.Slice(int(c.i), x+1)
		if err != nil {
			return err
		}
		for r, b := range values {
			c.registers.Set(r, b)
		}

	default:
		return c.unrecognized(opcode)
	}
	return nil
}

func flag(set bool) byte {
	if set {
		return 1
	}
	return 0
}

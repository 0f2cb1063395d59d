package cpu

// opcode is the 16-bit instruction word fetched big-endian from
// program memory.
type opcode uint16

// Field accessors. Which fields are meaningful depends on the
// instruction family; nnn is the low 12 bits (addresses), kk the low
// byte (immediates), x and y nibble-addressed register indices, n the
// low nibble (sprite height, sub-operation selector).
func (op opcode) nnn() uint16 { return uint16(op) & 0x0FFF }
func (op opcode) kk() uint8   { return uint8(op) }
func (op opcode) x() uint8    { return uint8(op>>8) & 0x0F }
func (op opcode) y() uint8    { return uint8(op>>4) & 0x0F }
func (op opcode) n() uint8    { return uint8(op) & 0x0F }

// operation is the decoded instruction tag. Decoding an opcode into a
// plain tag first keeps execution a single flat switch with no
// per-opcode closures.
type operation int

const (
	opInvalid operation = iota

	opCLS     // 00E0 clear the screen
	opRET     // 00EE return from subroutine
	opJP      // 1nnn jump
	opCALL    // 2nnn call subroutine
	opSEByte  // 3xkk skip if Vx == kk
	opSNEByte // 4xkk skip if Vx != kk
	opSEReg   // 5xy0 skip if Vx == Vy
	opLDByte  // 6xkk Vx = kk
	opADDByte // 7xkk Vx += kk, no carry flag
	opLDReg   // 8xy0 Vx = Vy
	opOR      // 8xy1 Vx |= Vy
	opAND     // 8xy2 Vx &= Vy
	opXOR     // 8xy3 Vx ^= Vy
	opADDReg  // 8xy4 Vx += Vy, VF = carry
	opSUB     // 8xy5 Vx -= Vy, VF = no borrow
	opSHR     // 8xy6 Vx >>= 1, VF = bit shifted out
	opSUBN    // 8xy7 Vx = Vy - Vx, VF = no borrow
	opSHL     // 8xyE Vx <<= 1, VF = bit shifted out
	opSNEReg  // 9xy0 skip if Vx != Vy
	opLDI     // Annn I = nnn
	opJPV0    // Bnnn jump to nnn + V0
	opRND     // Cxkk Vx = random byte & kk
	opDRW     // Dxyn draw n-row sprite at (Vx, Vy)
	opSKP     // Ex9E skip if key Vx is down
	opSKNP    // ExA1 skip if key Vx is up
	opLDVxDT  // Fx07 Vx = delay timer
	opLDKey   // Fx0A wait for a key press, store it in Vx
	opLDDTVx  // Fx15 delay timer = Vx
	opLDSTVx  // Fx18 sound timer = Vx
	opADDI    // Fx1E I += Vx
	opLDFont  // Fx29 I = fontset address of digit Vx
	opBCD     // Fx33 memory[I..I+2] = BCD of Vx
	opStore   // Fx55 memory[I..I+x] = V0..Vx
	opLoad    // Fx65 V0..Vx = memory[I..I+x]
)

// decode matches the opcode against the instruction set, primarily on
// the high nibble with the 0, 8, E and F families disambiguated by
// their low bits. Every defined opcode routes to exactly one tag;
// anything else reports false and is a fatal condition for the caller.
func decode(op opcode) (operation, bool) {
	switch op & 0xF000 {
	case 0x0000:
		switch op {
		case 0x00E0:
			return opCLS, true
		case 0x00EE:
			return opRET, true
		}
	case 0x1000:
		return opJP, true
	case 0x2000:
		return opCALL, true
	case 0x3000:
		return opSEByte, true
	case 0x4000:
		return opSNEByte, true
	case 0x5000:
		if op.n() == 0 {
			return opSEReg, true
		}
	case 0x6000:
		return opLDByte, true
	case 0x7000:
		return opADDByte, true
	case 0x8000:
		switch op.n() {
		case 0x0:
			return opLDReg, true
		case 0x1:
			return opOR, true
		case 0x2:
			return opAND, true
		case 0x3:
			return opXOR, true
		case 0x4:
			return opADDReg, true
		case 0x5:
			return opSUB, true
		case 0x6:
			return opSHR, true
		case 0x7:
			return opSUBN, true
		case 0xE:
			return opSHL, true
		}
	case 0x9000:
		if op.n() == 0 {
			return opSNEReg, true
		}
	case 0xA000:
		return opLDI, true
	case 0xB000:
		return opJPV0, true
	case 0xC000:
		return opRND, true
	case 0xD000:
		return opDRW, true
	case 0xE000:
		switch op.kk() {
		case 0x9E:
			return opSKP, true
		case 0xA1:
			return opSKNP, true
		}
	case 0xF000:
		switch op.kk() {
		case 0x07:
			return opLDVxDT, true
		case 0x0A:
			return opLDKey, true
		case 0x15:
			return opLDDTVx, true
		case 0x18:
			return opLDSTVx, true
		case 0x1E:
			return opADDI, true
		case 0x29:
			return opLDFont, true
		case 0x33:
			return opBCD, true
		case 0x55:
			return opStore, true
		case 0x65:
			return opLoad, true
		}
	}
	return opInvalid, false
}

// Package cpu implements the Chip-8 machine state and instruction
// engine: 4K of memory, sixteen 8-bit registers, the 12-bit index
// register, a 16-deep call stack, the two 60 Hz timers and the 16-key
// input latch, plus the fetch/decode/execute step that drives them.
//
// The package owns no loop and no devices. A driver calls Step in
// batches sized by the clock package, ticks the timers once per
// refresh and hands the frame buffer to whatever presents it.
package cpu

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"chirp8/emu/display"
)

const (
	memorySize = 4096
	romStart   = 0x200
	// maxROMSize is the program region 0x200..0xFFF inclusive.
	maxROMSize = memorySize - romStart
	stackDepth = 16
	numKeys    = 16
)

// Machine is a single Chip-8 instance. All mutable state lives here;
// nothing is shared between instances and no locking is done, the
// machine expects exactly one goroutine to drive it.
type Machine struct {
	memory [memorySize]uint8
	v      [16]uint8 // V0..VF, VF doubles as carry/borrow/collision flag
	i      uint16    // index register, 12-bit range
	pc     uint16
	stack  [stackDepth]uint16
	sp     uint8 // index of the next free stack slot

	delayTimer uint8
	soundTimer uint8

	keys    [numKeys]bool
	waiting bool  // suspended on LD Vx, K
	waitReg uint8 // register that receives the awaited key

	cycles uint64

	fb  *display.FrameBuffer
	rng *rand.Rand
}

// New returns a machine wired to the given frame buffer, reset and
// ready for a ROM. The frame buffer lives as long as the machine does.
func New(fb *display.FrameBuffer) *Machine {
	m := &Machine{
		fb:  fb,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	m.Reset()
	return m
}

// Reset zeroes all machine state and the frame buffer and re-seeds the
// fontset. The program counter starts at 0x200 where programs load.
func (m *Machine) Reset() {
	m.memory = [memorySize]uint8{}
	m.v = [16]uint8{}
	m.i = 0
	m.pc = romStart
	m.stack = [stackDepth]uint16{}
	m.sp = 0
	m.delayTimer = 0
	m.soundTimer = 0
	m.keys = [numKeys]bool{}
	m.waiting = false
	m.waitReg = 0
	m.cycles = 0
	m.fb.SetAll(0)

	copy(m.memory[fontOffset:], fontSet[:])
}

// LoadROM resets the machine and copies the program into memory at
// 0x200. Empty programs and programs that do not fit are rejected.
func (m *Machine) LoadROM(rom []uint8) error {
	if len(rom) == 0 || len(rom) > maxROMSize {
		return &ROMSizeError{Size: len(rom)}
	}
	m.Reset()
	copy(m.memory[romStart:], rom)
	return nil
}

// LoadROMFile reads a ROM from disk and loads it.
func (m *Machine) LoadROMFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rom %q: %w", path, err)
	}
	return m.LoadROM(rom)
}

// FrameBuffer returns the frame buffer the machine draws into.
func (m *Machine) FrameBuffer() *display.FrameBuffer {
	return m.fb
}

// Cycles reports the number of instructions executed since the last
// reset. Steps spent suspended on LD Vx, K are not counted.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// Waiting reports whether the machine is suspended on LD Vx, K. A
// waiting machine does nothing in Step until SetKeys delivers a fresh
// key press, so drivers should skip the rest of the batch.
func (m *Machine) Waiting() bool {
	return m.waiting
}

// Beeping reports whether the sound timer is running. It is the only
// audio signal the machine emits; the driver samples it once per
// batch.
func (m *Machine) Beeping() bool {
	return m.soundTimer > 0
}

// SetKeys replaces the input latch with a full snapshot of key-down
// states. If the machine is suspended on LD Vx, K and the snapshot
// holds a key that was up before, the lowest such key resolves the
// wait: it is stored in the destination register and the program
// counter moves past the instruction.
func (m *Machine) SetKeys(keys [numKeys]bool) {
	if m.waiting {
		for k := 0; k < numKeys; k++ {
			if keys[k] && !m.keys[k] {
				m.v[m.waitReg] = uint8(k)
				m.pc += 2
				m.waiting = false
				break
			}
		}
	}
	m.keys = keys
}

// TickTimers decrements both timers by one, clamped at zero. The
// driver calls it once per refresh tick, never per instruction.
func (m *Machine) TickTimers() {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
}

// Step fetches, decodes and executes exactly one instruction. The
// program counter advances according to the executed instruction's own
// rule. While the machine is suspended on LD Vx, K, Step is a no-op.
// A returned error is fatal for the session.
func (m *Machine) Step() error {
	if m.waiting {
		return nil
	}

	// the program counter has 12-bit range; indices wrap with it
	hi := m.memory[m.pc&0x0FFF]
	lo := m.memory[(m.pc+1)&0x0FFF]
	op := opcode(uint16(hi)<<8 | uint16(lo))
	tag, ok := decode(op)
	if !ok {
		return &OpcodeError{Opcode: uint16(op), Addr: m.pc}
	}

	if err := m.execute(tag, op); err != nil {
		return err
	}
	m.cycles++
	return nil
}

// skipIf advances the program counter by 4 when cond holds, else by 2.
func (m *Machine) skipIf(cond bool) {
	if cond {
		m.pc += 4
	} else {
		m.pc += 2
	}
}

// setFlag writes 1 or 0 into VF.
func (m *Machine) setFlag(cond bool) {
	if cond {
		m.v[0xF] = 1
	} else {
		m.v[0xF] = 0
	}
}

func (m *Machine) execute(tag operation, op opcode) error {
	x, y := op.x(), op.y()

	switch tag {
	case opCLS:
		m.fb.SetAll(0)
		m.pc += 2

	case opRET:
		if m.sp == 0 {
			return ErrStackUnderflow
		}
		m.sp--
		m.pc = m.stack[m.sp]

	case opJP:
		m.pc = op.nnn()

	case opCALL:
		if m.sp == stackDepth {
			return ErrStackOverflow
		}
		m.stack[m.sp] = m.pc + 2
		m.sp++
		m.pc = op.nnn()

	case opSEByte:
		m.skipIf(m.v[x] == op.kk())

	case opSNEByte:
		m.skipIf(m.v[x] != op.kk())

	case opSEReg:
		m.skipIf(m.v[x] == m.v[y])

	case opSNEReg:
		m.skipIf(m.v[x] != m.v[y])

	case opLDByte:
		m.v[x] = op.kk()
		m.pc += 2

	case opADDByte:
		// immediate form carries no flag
		m.v[x] += op.kk()
		m.pc += 2

	case opLDReg:
		m.v[x] = m.v[y]
		m.pc += 2

	case opOR:
		m.v[x] |= m.v[y]
		m.pc += 2

	case opAND:
		m.v[x] &= m.v[y]
		m.pc += 2

	case opXOR:
		m.v[x] ^= m.v[y]
		m.pc += 2

	case opADDReg:
		sum := uint16(m.v[x]) + uint16(m.v[y])
		m.v[x] = uint8(sum)
		m.setFlag(sum > 0xFF)
		m.pc += 2

	case opSUB:
		// VF = no borrow, decided before subtracting; equal operands
		// borrow (strict greater-than convention, held everywhere)
		noBorrow := m.v[x] > m.v[y]
		m.v[x] -= m.v[y]
		m.setFlag(noBorrow)
		m.pc += 2

	case opSUBN:
		noBorrow := m.v[y] > m.v[x]
		m.v[x] = m.v[y] - m.v[x]
		m.setFlag(noBorrow)
		m.pc += 2

	case opSHR:
		bit := m.v[x] & 0x01
		m.v[x] >>= 1
		m.v[0xF] = bit
		m.pc += 2

	case opSHL:
		bit := m.v[x] >> 7
		m.v[x] <<= 1
		m.v[0xF] = bit
		m.pc += 2

	case opLDI:
		m.i = op.nnn()
		m.pc += 2

	case opJPV0:
		m.pc = op.nnn() + uint16(m.v[0])

	case opRND:
		m.v[x] = uint8(m.rng.Intn(0x100)) & op.kk()
		m.pc += 2

	case opDRW:
		n := uint16(op.n())
		if end := uint32(m.i) + uint32(n); end > memorySize {
			return &MemoryError{Addr: end}
		}
		sprite := m.memory[m.i : m.i+n]
		collision := m.fb.XORSprite(int(m.v[x]), int(m.v[y]), sprite)
		m.setFlag(collision)
		m.pc += 2

	case opSKP:
		m.skipIf(m.keys[m.v[x]&0x0F])

	case opSKNP:
		m.skipIf(!m.keys[m.v[x]&0x0F])

	case opLDVxDT:
		m.v[x] = m.delayTimer
		m.pc += 2

	case opLDKey:
		// suspend until SetKeys observes a fresh key press; the pc
		// stays on this instruction and resolution happens there
		m.waiting = true
		m.waitReg = x

	case opLDDTVx:
		m.delayTimer = m.v[x]
		m.pc += 2

	case opLDSTVx:
		m.soundTimer = m.v[x]
		m.pc += 2

	case opADDI:
		m.i += uint16(m.v[x])
		m.pc += 2

	case opLDFont:
		m.i = fontOffset + 5*uint16(m.v[x]&0x0F)
		m.pc += 2

	case opBCD:
		if end := uint32(m.i) + 3; end > memorySize {
			return &MemoryError{Addr: end}
		}
		val := m.v[x]
		m.memory[m.i] = val / 100
		m.memory[m.i+1] = (val / 10) % 10
		m.memory[m.i+2] = val % 10
		m.pc += 2

	case opStore:
		if end := uint32(m.i) + uint32(x) + 1; end > memorySize {
			return &MemoryError{Addr: end}
		}
		for r := uint8(0); r <= x; r++ {
			m.memory[m.i+uint16(r)] = m.v[r]
		}
		m.pc += 2

	case opLoad:
		if end := uint32(m.i) + uint32(x) + 1; end > memorySize {
			return &MemoryError{Addr: end}
		}
		for r := uint8(0); r <= x; r++ {
			m.v[r] = m.memory[m.i+uint16(r)]
		}
		m.pc += 2
	}

	return nil
}

// String returns a one-line dump of the machine registers for
// diagnostics.
func (m *Machine) String() string {
	return fmt.Sprintf("Machine{PC: %#03x, I: %#03x, SP: %d, DT: %#02x, ST: %#02x, V: [% 02X], cycles: %d}",
		m.pc, m.i, m.sp, m.delayTimer, m.soundTimer, m.v, m.cycles)
}

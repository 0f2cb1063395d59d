package cpu

import (
	"errors"
	"testing"

	"chirp8/emu/display"

	"github.com/retroenv/retrogolib/assert"
)

func newTestMachine(t *testing.T, program ...uint8) *Machine {
	t.Helper()
	m := New(display.New())
	if len(program) > 0 {
		assert.NoError(t, m.LoadROM(program))
	}
	return m
}

func TestLoadROM(t *testing.T) {
	m := New(display.New())

	err := m.LoadROM(nil)
	var sizeErr *ROMSizeError
	assert.True(t, errors.As(err, &sizeErr))

	err = m.LoadROM(make([]uint8, maxROMSize+1))
	assert.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, maxROMSize+1, sizeErr.Size)

	rom := make([]uint8, maxROMSize)
	rom[0] = 0x12
	rom[1] = 0x00
	assert.NoError(t, m.LoadROM(rom))
	assert.Equal(t, uint16(romStart), m.pc)
	assert.Equal(t, uint8(0x12), m.memory[romStart])
}

func TestResetSeedsFontset(t *testing.T) {
	m := newTestMachine(t, 0x00, 0xE0)
	m.v[3] = 0xAB
	m.delayTimer = 7
	m.fb.SetPixel(0, 0, 1)

	m.Reset()

	assert.Equal(t, uint8(0), m.v[3])
	assert.Equal(t, uint8(0), m.delayTimer)
	assert.Equal(t, uint8(0), m.fb.Pixel(0, 0))
	assert.Equal(t, uint16(romStart), m.pc)
	for i, b := range fontSet {
		assert.Equal(t, b, m.memory[fontOffset+i])
	}
}

func TestTickTimersClampsAtZero(t *testing.T) {
	m := newTestMachine(t)
	m.delayTimer = 2
	m.soundTimer = 1

	m.TickTimers()
	assert.Equal(t, uint8(1), m.delayTimer)
	assert.Equal(t, uint8(0), m.soundTimer)
	assert.False(t, m.Beeping())

	m.TickTimers()
	m.TickTimers()
	assert.Equal(t, uint8(0), m.delayTimer)
	assert.Equal(t, uint8(0), m.soundTimer)
}

func TestTimersDecrementPerTickNotPerCycle(t *testing.T) {
	// a batch of 9 cycles with one trailing timer tick drops each
	// nonzero timer by exactly 1
	program := make([]uint8, 18)
	for i := 0; i < 18; i += 2 {
		program[i] = 0x60 // LD V0, 0x00
		program[i+1] = 0x00
	}
	m := newTestMachine(t, program...)
	m.delayTimer = 30
	m.soundTimer = 5

	for i := 0; i < 9; i++ {
		assert.NoError(t, m.Step())
	}
	m.TickTimers()

	assert.Equal(t, uint8(29), m.delayTimer)
	assert.Equal(t, uint8(4), m.soundTimer)
	assert.Equal(t, uint64(9), m.Cycles())
}

func TestWaitKeySuspendsUntilKeyDown(t *testing.T) {
	m := newTestMachine(t, 0xF5, 0x0A) // LD V5, K
	assert.NoError(t, m.Step())

	assert.True(t, m.Waiting())
	assert.Equal(t, uint16(romStart), m.pc)

	// steps while suspended are no-ops and consume no cycles
	cycles := m.Cycles()
	assert.NoError(t, m.Step())
	assert.Equal(t, cycles, m.Cycles())
	assert.Equal(t, uint16(romStart), m.pc)

	// a snapshot with no fresh press does not resolve the wait
	m.SetKeys([numKeys]bool{})
	assert.True(t, m.Waiting())

	// key 0xA goes down
	var keys [numKeys]bool
	keys[0xA] = true
	m.SetKeys(keys)

	assert.False(t, m.Waiting())
	assert.Equal(t, uint8(0xA), m.v[5])
	assert.Equal(t, uint16(romStart+2), m.pc)
}

func TestWaitKeyIgnoresHeldKeys(t *testing.T) {
	m := newTestMachine(t, 0xF0, 0x0A) // LD V0, K

	// key 2 is already down before the wait starts
	var held [numKeys]bool
	held[2] = true
	m.SetKeys(held)

	assert.NoError(t, m.Step())
	assert.True(t, m.Waiting())

	// the same snapshot again: no up-to-down transition, still waiting
	m.SetKeys(held)
	assert.True(t, m.Waiting())

	// a second key goes down and resolves the wait
	held[7] = true
	m.SetKeys(held)
	assert.False(t, m.Waiting())
	assert.Equal(t, uint8(7), m.v[0])
}

func TestSetKeysReplacesSnapshot(t *testing.T) {
	m := newTestMachine(t)

	var keys [numKeys]bool
	keys[1] = true
	keys[15] = true
	m.SetKeys(keys)
	assert.Equal(t, keys, m.keys)

	m.SetKeys([numKeys]bool{})
	assert.Equal(t, [numKeys]bool{}, m.keys)
}

func TestFatalErrorsSurfaceToCaller(t *testing.T) {
	// 0x0000 matches no instruction
	m := newTestMachine(t, 0x00, 0x00)
	err := m.Step()
	var opErr *OpcodeError
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, uint16(0x0000), opErr.Opcode)
	assert.Equal(t, uint16(romStart), opErr.Addr)

	// RET on an empty stack
	m = newTestMachine(t, 0x00, 0xEE)
	assert.True(t, errors.Is(m.Step(), ErrStackUnderflow))

	// 16 nested calls fit, the 17th overflows
	m = newTestMachine(t, 0x22, 0x00) // CALL 0x200, forever
	for i := 0; i < stackDepth; i++ {
		assert.NoError(t, m.Step())
	}
	assert.True(t, errors.Is(m.Step(), ErrStackOverflow))
}

func TestStringDump(t *testing.T) {
	m := newTestMachine(t)
	assert.Contains(t, m.String(), "PC: 0x200")
}

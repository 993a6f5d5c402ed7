package cpu

// MemorySize is the number of addressable bytes in the Chip-8 address space.
const MemorySize = 4096

// Memory is the Chip-8's 4KB of RAM.
//
// The first 512 bytes (0x000 to 0x1FF) were where the interpreter itself lived on
// the COSMAC VIP. Here they only hold the font sprites, and programs are loaded
// at 0x200. Every access is bounds checked: reading or writing outside the
// address space returns an *AddressError instead of quietly wrapping around.
type Memory struct {
	cells [MemorySize]byte
}

// NewMemory returns a zeroed Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Read returns the byte stored at addr.
func (m *Memory) Read(addr int) (byte, error) {
	if err := checkAddress(addr); err != nil {
		return 0, err
	}
	return m.cells[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr int, value byte) error {
	if err := checkAddress(addr); err != nil {
		return err
	}
	m.cells[addr] = value
	return nil
}

// Slice returns a copy of the n bytes starting at addr.
// The whole range is checked before anything is copied. An empty slice
// touches no memory, so addr is not checked for it.
func (m *Memory) Slice(addr, n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if err := checkRange(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.cells[addr:addr+n])
	return out, nil
}

// Clear zeroes every byte of memory.
func (m *Memory) Clear() {
	m.cells = [MemorySize]byte{}
}

func checkAddress(addr int) error {
	if addr < 0 || addr >= MemorySize {
		return &AddressError{Addr: addr}
	}
	return nil
}

// checkRange validates [addr, addr+n). An empty range is always valid.
func checkRange(addr, n int) error {
	if n == 0 {
		return nil
	}
	if err := checkAddress(addr); err != nil {
		return err
	}
	return checkAddress(addr + n - 1)
}

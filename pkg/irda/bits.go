package irda

// Bits accumulates the raw bits of a frame, LSB first per byte.
// The capacity is fixed when it is created.
type Bits struct {
	data []byte
	n    int
	cap  int
}

// NewBits returns an empty accumulator for up to capacity bits.
func NewBits(capacity int) *Bits {
	return &Bits{
		data: make([]byte, (capacity+7)/8),
		cap:  capacity,
	}
}

// Push appends a bit. Pushing to a full accumulator panics.
func (b *Bits) Push(bit bool) {
	if b.n >= b.cap {
		panic(ErrCapacityExceeded)
	}

	if bit {
		b.data[b.n/8] |= 1 << (b.n % 8)
	} else {
		b.data[b.n/8] &^= 1 << (b.n % 8)
	}
	b.n++
}

// PushUint appends the count lowest bits of v, LSB first.
func (b *Bits) PushUint(v uint64, count int) {
	for i := 0; i < count; i++ {
		b.Push(v&(1<<i) != 0)
	}
}

// Bit returns bit i.
func (b *Bits) Bit(i int) bool {
	return b.data[i/8]&(1<<(i%8)) != 0
}

// Uint returns count bits starting at bit from, the first bit being the LSB.
func (b *Bits) Uint(from, count int) uint64 {
	var v uint64
	for i := 0; i < count; i++ {
		if b.Bit(from + i) {
			v |= 1 << i
		}
	}
	return v
}

// Byte returns the i-th byte of the accumulator.
func (b *Bits) Byte(i int) byte {
	return b.data[i]
}

// Bytes returns the bytes holding the accumulated bits.
func (b *Bits) Bytes() []byte {
	return b.data[:(b.n+7)/8]
}

// Len returns the number of accumulated bits.
func (b *Bits) Len() int { return b.n }

// Cap returns the capacity in bits.
func (b *Bits) Cap() int { return b.cap }

// Full reports whether no further bit can be pushed.
func (b *Bits) Full() bool { return b.n >= b.cap }

// Reset drops all bits.
func (b *Bits) Reset() {
	b.n = 0
	for i := range b.data {
		b.data[i] = 0
	}
}

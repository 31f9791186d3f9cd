package irda

// SamplesCap is the number of samples a decoder buffers at most.
const SamplesCap = 6

// Samples is the lookahead buffer of a decoder, a fixed size ring.
type Samples struct {
	buf  [SamplesCap]Sample
	head int
	n    int
}

// Len returns the number of buffered samples.
func (q *Samples) Len() int { return q.n }

// At returns the i-th buffered sample, 0 being the oldest.
func (q *Samples) At(i int) Sample {
	if i >= q.n {
		panic("irda: sample index out of range")
	}
	return q.buf[(q.head+i)%SamplesCap]
}

// Consume drops the n oldest samples.
func (q *Samples) Consume(n int) {
	if n > q.n {
		n = q.n
	}
	q.head = (q.head + n) % SamplesCap
	q.n -= n
}

func (q *Samples) push(s Sample) {
	if q.n == SamplesCap {
		panic(ErrCapacityExceeded)
	}
	q.buf[(q.head+q.n)%SamplesCap] = s
	q.n++
}

func (q *Samples) reset() {
	q.head = 0
	q.n = 0
}

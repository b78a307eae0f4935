package strategy

// series is a fixed-capacity ring of prices in chronological order.
type series struct {
	buf   []float64
	start int
	size  int
}

func newSeries(capacity int) *series {
	if capacity < 1 {
		capacity = 1
	}
	return &series{buf: make([]float64, capacity)}
}

func (s *series) push(v float64) {
	c := len(s.buf)
	if s.size < c {
		s.buf[(s.start+s.size)%c] = v
		s.size++
		return
	}
	s.buf[s.start] = v
	s.start = (s.start + 1) % c
}

// at returns the i-th oldest value.
func (s *series) at(i int) float64 {
	return s.buf[(s.start+i)%len(s.buf)]
}

// tail appends the newest n values, oldest first, to dst.
func (s *series) tail(dst []float64, n int) []float64 {
	if n > s.size {
		n = s.size
	}
	for i := s.size - n; i < s.size; i++ {
		dst = append(dst, s.at(i))
	}
	return dst
}

// resize changes the capacity, keeping the newest values.
func (s *series) resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	if capacity == len(s.buf) {
		return
	}
	values := s.tail(make([]float64, 0, capacity), capacity)
	s.buf = make([]float64, capacity)
	copy(s.buf, values)
	s.start = 0
	s.size = len(values)
}

// PriceHistory keeps a bounded, chronological price series per token.
// It is not safe for concurrent use; strategies guard it with their own
// lock.
type PriceHistory struct {
	capacity int
	tokens   map[string]*series
}

// NewPriceHistory creates a new price history holding at most capacity
// prices per token.
func NewPriceHistory(capacity int) *PriceHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &PriceHistory{
		capacity: capacity,
		tokens:   make(map[string]*series),
	}
}

// Capacity returns the per-token bound.
func (h *PriceHistory) Capacity() int {
	return h.capacity
}

// Append records price for token, evicting the oldest entry when full, and
// returns the token's resulting length.
func (h *PriceHistory) Append(token string, price float64) int {
	s, ok := h.tokens[token]
	if !ok {
		s = newSeries(h.capacity)
		h.tokens[token] = s
	}
	s.push(price)
	return s.size
}

// Len returns the number of stored prices for token.
func (h *PriceHistory) Len(token string) int {
	if s, ok := h.tokens[token]; ok {
		return s.size
	}
	return 0
}

// Tail appends the newest n prices for token, oldest first, to dst.
func (h *PriceHistory) Tail(dst []float64, token string, n int) []float64 {
	if s, ok := h.tokens[token]; ok {
		return s.tail(dst, n)
	}
	return dst
}

// Values returns a copy of all stored prices for token.
func (h *PriceHistory) Values(token string) []float64 {
	s, ok := h.tokens[token]
	if !ok {
		return []float64{}
	}
	return s.tail(make([]float64, 0, s.size), s.size)
}

// Resize changes the per-token bound, keeping the newest prices.
func (h *PriceHistory) Resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	h.capacity = capacity
	for _, s := range h.tokens {
		s.resize(capacity)
	}
}

// Reset drops all stored prices.
func (h *PriceHistory) Reset() {
	h.tokens = make(map[string]*series)
}

// Tokens returns the number of tracked tokens.
func (h *PriceHistory) Tokens() int {
	return len(h.tokens)
}

package cart

import "sync"

// Session owns the cart of one register. Operations run one at a time and
// replace the whole value, so readers always see a consistent cart.
type Session struct {
	mu   sync.Mutex
	cart Cart
}

func NewSession() *Session {
	return &Session{cart: New()}
}

// Current returns the cart as it is now. The value is frozen: later
// operations on the session do not affect it.
func (s *Session) Current() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Apply runs op against the current cart and stores its result.
func (s *Session) Apply(op func(Cart) Cart) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = op(s.cart)
	return s.cart
}

// Reset empties the cart.
func (s *Session) Reset() Cart {
	return s.Apply(Cart.Clear)
}

package region

import (
	"sync"

	"github.com/dshills/profilecards/internal/schema"
)

// ContainerID is the id of the element that holds the rendered cards.
const ContainerID = "profiles-container"

// CardClass is the class of every card element inside the container.
const CardClass = "profile-card"

// Region is the display region: the single container owning every rendered
// card. Its contents are only ever replaced as a whole.
type Region struct {
	mu    sync.RWMutex
	cards []schema.Card
	loads int
}

// New returns an empty region.
func New() *Region {
	return &Region{}
}

// Replace destroys all current cards and installs cards in their place.
func (r *Region) Replace(cards []schema.Card) {
	next := make([]schema.Card, len(cards))
	copy(next, cards)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = next
	r.loads++
}

// Cards returns a copy of the current cards in display order.
func (r *Region) Cards() []schema.Card {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]schema.Card, len(r.cards))
	copy(out, r.cards)
	return out
}

// Len returns the number of rendered cards.
func (r *Region) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cards)
}

// Loads reports how many times the region has been replaced.
func (r *Region) Loads() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loads
}

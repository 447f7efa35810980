package presentation

import "sync"

const (
	// HeaderOffset is the fixed header height subtracted when scrolling to an anchor
	HeaderOffset = 80
	// Below this scroll position the header is never hidden
	headerHideThreshold = 100
	// Above this scroll position the header gets the "scrolled" style
	headerScrolledThreshold = 50
)

// HeaderState is what the page header should look like after a scroll event
type HeaderState struct {
	Hidden   bool `json:"hidden"`
	Scrolled bool `json:"scrolled"`
}

// Header tracks the last scroll position to decide header visibility
type Header struct {
	mu            sync.Mutex
	lastScrollTop float64
}

// Update hides the header while scrolling down past the threshold and shows
// it again on any upward scroll.
func (h *Header) Update(scrollTop float64) HeaderState {
	h.mu.Lock()
	defer h.mu.Unlock()

	state := HeaderState{
		Hidden:   scrollTop > h.lastScrollTop && scrollTop > headerHideThreshold,
		Scrolled: scrollTop > headerScrolledThreshold,
	}
	h.lastScrollTop = scrollTop
	return state
}

// AnchorOffset returns the scroll target for an in-page link so the section
// is not covered by the fixed header.
func AnchorOffset(elementTop, pageYOffset float64) float64 {
	return elementTop + pageYOffset - HeaderOffset
}

package scroll

import "sync"

// ReportedViewport mirrors a remote scroll container from the measurements
// the client reports.  The engine drives it like a real viewport; SetScrollTop
// records the position the client is to apply.
type ReportedViewport struct {
	mu       sync.Mutex
	top      float64
	content  float64
	viewport float64
}

// NewReportedViewport returns an empty mirror.
func NewReportedViewport() *ReportedViewport {
	return &ReportedViewport{}
}

// Report updates the mirror with the client's latest measurements.
func (v *ReportedViewport) Report(top, contentHeight, viewportHeight float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top = top
	v.content = contentHeight
	v.viewport = viewportHeight
}

func (v *ReportedViewport) ScrollTop() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.top
}

func (v *ReportedViewport) ContentHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.content
}

func (v *ReportedViewport) ViewportHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewport
}

func (v *ReportedViewport) SetScrollTop(top float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top = top
}

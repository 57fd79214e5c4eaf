package cv

import (
	"gocv.io/x/gocv"
)

// matScope tracks the Mats allocated during one operation and closes them
// all when the operation exits, success or failure.
type matScope struct {
	mats []*gocv.Mat
}

func newMatScope() *matScope {
	return &matScope{}
}

// track registers an already-created Mat for release.
func (s *matScope) track(m *gocv.Mat) {
	s.mats = append(s.mats, m)
}

// newMat registers and returns a fresh Mat.
func (s *matScope) newMat(m gocv.Mat) *gocv.Mat {
	s.mats = append(s.mats, &m)
	return &m
}

// release closes every tracked Mat. Safe to call more than once.
func (s *matScope) release() {
	for _, m := range s.mats {
		if m != nil && !m.Closed() {
			m.Close()
		}
	}
	s.mats = nil
}

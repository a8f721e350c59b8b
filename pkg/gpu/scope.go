package gpu

// Scope collects release functions for objects acquired during a multi-step
// initialization. Release undoes them in reverse order unless Commit was
// called, so a failure partway through leaves nothing allocated.
//
//	var s gpu.Scope
//	defer s.Release()
//	... s.Defer(func() { dev.DeleteTexture(tex) }) ...
//	s.Commit()
type Scope struct {
	releases  []func()
	committed bool
}

// Defer registers fn to run on Release.
func (s *Scope) Defer(fn func()) {
	s.releases = append(s.releases, fn)
}

// Commit keeps everything acquired so far; a later Release is a no-op.
func (s *Scope) Commit() {
	s.committed = true
	s.releases = nil
}

// Release runs registered release functions in reverse order.
func (s *Scope) Release() {
	if s.committed {
		return
	}
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

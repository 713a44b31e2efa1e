package frames

// Arena collects release functions for objects which live and die together
// and runs them in reverse order of registration. The zero value is ready to
// use.
type Arena struct {
	releases []func()
}

// Add registers release to be run by the next call to Release.
func (a *Arena) Add(release func()) {
	if release == nil {
		return
	}
	a.releases = append(a.releases, release)
}

// Len returns the number of pending release functions.
func (a *Arena) Len() int {
	return len(a.releases)
}

// Release runs all registered functions, newest first, and forgets them.
// Calling it again without new registrations does nothing.
func (a *Arena) Release() {
	for len(a.releases) > 0 {
		last := len(a.releases) - 1
		release := a.releases[last]
		a.releases[last] = nil
		a.releases = a.releases[:last]
		release()
	}
}

package optional

// Optional holds a value of type T which may or may not have been set. Its
// zero value is an unset optional.
type Optional[T any] struct {
	value T
	set   bool
}

// Of returns an optional which already holds v.
func Of[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Set stores v and marks the optional as having a value.
func (o *Optional[T]) Set(v T) {
	o.value = v
	o.set = true
}

// HasValue returns true when a value has been set.
func (o Optional[T]) HasValue() bool {
	return o.set
}

// Get returns the stored value. It panics when nothing has been set, so
// callers are expected to check HasValue first.
func (o Optional[T]) Get() T {
	if !o.set {
		panic("optional: Get called on an empty value")
	}
	return o.value
}

// GetOr returns the stored value or def when nothing has been set.
func (o Optional[T]) GetOr(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

// Package lazy provides the recompute-on-demand cache used by the solvers.
//
// An Object remembers whether its owner's result is current. The result is
// stale when Invalidate was called or when the generation token reported by
// the owner's token source differs from the one seen at the last successful
// calculation. Nothing is recomputed eagerly.
//
// Object is not safe for concurrent use.
package lazy

// TokenSource reports the current generation of the upstream inputs.
type TokenSource func() uint64

// Object tracks the freshness of a cached calculation.
type Object struct {
	source     TokenSource
	token      uint64
	calculated bool
}

// New returns an Object watching source. A nil source means the result only
// goes stale through Invalidate.
func New(source TokenSource) *Object {
	return &Object{source: source}
}

// Invalidate discards the cached result; the next Calculate recomputes.
func (o *Object) Invalidate() {
	o.calculated = false
}

// Stale reports whether the next Calculate would run the calculation.
func (o *Object) Stale() bool {
	if !o.calculated {
		return true
	}
	return o.source != nil && o.source() != o.token
}

// Calculate runs perform if the cached result is stale. On error the object
// stays stale so the failure is reported again on the next query.
func (o *Object) Calculate(perform func() error) error {
	if !o.Stale() {
		return nil
	}
	var token uint64
	if o.source != nil {
		token = o.source()
	}
	if err := perform(); err != nil {
		o.calculated = false
		return err
	}
	o.token = token
	o.calculated = true
	return nil
}

package diagram

import "fmt"

// LoadingError reports a malformed input tree: a smart constructor
// invariant violated by the caller, such as a linebreak/child arity
// mismatch or a default branch index out of range. The loader package
// wraps its own syntax errors in the same type so callers see one error
// kind for every "the tree was built wrong" failure.
type LoadingError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadingError) Unwrap() error { return e.Err }

// InvariantError reports a state the layout/render algorithm should have
// guaranteed internally. Well-formed trees built through this package's
// smart constructors (NewSequence, NewChoice, NewOneOrMore, ...) never
// trigger it; it only surfaces when a caller bypasses them and hands the
// engine a hand-built, inconsistent Element.
type InvariantError struct {
	Where   string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Where, e.Message)
}

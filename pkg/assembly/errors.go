package assembly

import (
	"errors"
	"fmt"
	"strings"
)

// Assembly errors.
var (
	ErrUnresolvedFile  = errors.New("unresolved model file")
	ErrCyclicReference = errors.New("cyclic model reference")
	ErrMissingTexture  = errors.New("missing texture")
)

// Issue is a problem that did not stop the import. Row and Field are zero
// when the issue is not tied to a placement row.
type Issue struct {
	File  string
	Row   int
	Field string
	Err   error
}

func (i Issue) Error() string {
	var b strings.Builder
	b.WriteString(i.File)
	if i.Row > 0 {
		fmt.Fprintf(&b, " row %d", i.Row)
	}
	if i.Field != "" {
		fmt.Fprintf(&b, " (%s)", i.Field)
	}
	b.WriteString(": ")
	b.WriteString(i.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error.
func (i Issue) Unwrap() error {
	return i.Err
}

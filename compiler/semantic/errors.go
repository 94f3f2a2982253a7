package semantic

import (
	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/srcfiles"
)

// reporter binds errors to positions in the query source.
type reporter struct {
	files *srcfiles.List
}

func (r reporter) error(loc ast.Node, err error) {
	r.files.AddError(err.Error(), loc.Pos(), loc.End())
}

func (r reporter) errorNoLoc(err error) {
	r.files.AddError(err.Error(), -1, -1)
}

type errloc struct {
	loc ast.Node
	err error
}

type errlist []errloc

func (e *errlist) error(loc ast.Node, err error) {
	*e = append(*e, errloc{loc, err})
}

func (e errlist) flushErrs(r reporter) {
	for _, info := range e {
		if info.loc == nil {
			r.errorNoLoc(info.err)
			continue
		}
		r.error(info.loc, info.err)
	}
}

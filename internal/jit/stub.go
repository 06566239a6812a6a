package jit

import (
	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/bferrors"
	"github.com/tobix/bfprove/internal/repository"
)

// lazyStub is the Artifact installed by InsertPlaceholder while a
// function's body sits in the Code Repository's pending table. Calling
// it compiles the body exactly once, installs the compiled Runable in
// its place, and forwards the call — so a definition is never "paid
// for" until its first use, and a function already mid-call through an
// older stub is unaffected: the repository's graveyard
// (internal/repository) keeps that stub's memory alive for the rest of
// the process.
type lazyStub struct {
	repo    *repository.CodeRepository
	name    string
	repoKey uintptr
}

// Call triggers compilation on first invocation. Only the first caller
// gets the pending body from TakePending (ok==true); any later
// invocation of the same stub does not recompile but resolves the name
// through the repository again, and the Code Repository's own mutex
// (internal/repository.CodeRepository) serializes the Replace.
func (s *lazyStub) Call(arg int32) int32 {
	def, ok := s.repo.TakePending(s.name)
	if !ok {
		// Another call already compiled this; resolve through the
		// repository again rather than recursing into the stub.
		return s.repo.Call(s.name, arg)
	}
	paramName := ""
	if def.Parameter != nil {
		paramName = *def.Parameter
	}
	compiled, err := func() (c *Runable, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				be, isBF := rec.(*bferrors.Error)
				if !isBF {
					panic(rec)
				}
				err = be
			}
		}()
		return Compile(def.Body, paramName, s.repoKey)
	}()
	if err != nil {
		// Compilation failure leaves no callable body: the definition
		// is deleted (the stub goes to the graveyard) and 0 is
		// returned, the same result FunctionCall gives an unknown name,
		// rather than taking down the process.
		s.repo.Delete(s.name)
		return 0
	}
	s.repo.Replace(s.name, compiled)
	return compiled.Call(arg)
}

// InsertPlaceholder registers def as pending in repo and installs a
// lazyStub as its currently-callable entry.
func InsertPlaceholder(repo *repository.CodeRepository, def ast.FunctionDef, repoKey uintptr) {
	repo.InsertPlaceholder(def, &lazyStub{repo: repo, name: def.Name, repoKey: repoKey})
}

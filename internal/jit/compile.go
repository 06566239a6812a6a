package jit

import (
	"github.com/tobix/bfprove/internal/asm/amd64"
	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/codemem"
)

// Compile lowers body to native code and finalizes it as a callable
// Runable. paramName is the single identifier body may read as its
// bound parameter ("" if body closes over none); any other Var node
// makes Compile panic with a *bferrors.Error of Kind NameResolution
// (the returned error covers executable-memory failures). repoKey must
// come from RegisterRepository for whichever CodeRepository this
// function's FunctionCall nodes should resolve their callees against.
func Compile(body ast.Expr, paramName string, repoKey uintptr) (*Runable, error) {
	asm := amd64.New()
	ctx := NewContext(asm, paramName)
	emitPrologue(asm)

	l := &lowering{ctx: ctx, repoKey: repoKey}
	result := l.lowerExpr(body)

	emitEpilogue(asm, result)

	region, err := codemem.Alloc(asm.Len())
	if err != nil {
		return nil, err
	}
	copy(region.Bytes(), asm.Bytes())
	return NewRunable(region)
}

// emitPrologue saves the registers this package's allocator uses as
// scratch but that the win64 convention requires preserved across a
// call (calleeSaved); the parameter itself needs no spill since it
// stays in RCX for the function's entire body.
func emitPrologue(a *amd64.Asm) {
	for _, r := range calleeSaved {
		a.Push(r)
	}
}

// emitEpilogue moves the lowering's result into RAX (the win64 return
// register) and restores calleeSaved in the reverse of emitPrologue's
// order before returning.
func emitEpilogue(a *amd64.Asm, result amd64.Reg) {
	if result != amd64.AX {
		a.MovRegReg(amd64.AX, result)
	}
	for i := len(calleeSaved) - 1; i >= 0; i-- {
		a.Pop(calleeSaved[i])
	}
	a.Ret()
}

// CompileQuery compiles expr as a nullary-or-unary query: the first
// name ast.UsedVariables reports (if any) is bound to the parameter
// register, matching internal/interp.Interpreter.CompileQuery so both
// backends agree on which free variable is "the" argument. A query
// with zero free variables simply never reads its parameter; a query
// with a second, distinct free variable fails to compile, the same way
// it fails to interpret, since only the first is ever bound.
func CompileQuery(expr ast.Expr, repoKey uintptr) (*Runable, error) {
	vars := ast.UsedVariables(expr)
	paramName := ""
	if len(vars) > 0 {
		paramName = vars[0]
	}
	return Compile(expr, paramName, repoKey)
}

// Package repository implements the Code Repository: the single owner
// of compiled Artifacts, pending function bodies, and the graveyard
// that keeps superseded code alive for the lifetime of the process.
//
// CodeRepository must never be copied after use and must have a
// stable address for as long as any compiled code might call back into
// it — callers should hold it behind a pointer, never pass it by
// value.
package repository

import (
	"fmt"
	"sync"

	"github.com/tobix/bfprove/internal/ast"
)

// Artifact is anything the repository can install under a function
// name and later invoke: a compiled native Runable (internal/jit) in
// production, or a stand-in in tests. The repository itself never
// constructs one; internal/jit owns that.
type Artifact interface {
	Call(arg int32) int32
}

// CodeRepository owns three collections: code (installed artifacts),
// pending (bodies awaiting lazy compilation), and graveyard
// (superseded artifacts, never freed during a session). Queries are
// never stored.
type CodeRepository struct {
	mu        sync.Mutex
	code      map[string]Artifact
	pending   map[string]ast.FunctionDef
	graveyard []Artifact
}

// New returns an empty CodeRepository.
func New() *CodeRepository {
	return &CodeRepository{
		code:    make(map[string]Artifact),
		pending: make(map[string]ast.FunctionDef),
	}
}

// InsertPlaceholder records def as pending and installs stub as its
// currently-callable Artifact, maintaining "exactly one of {pending
// body, compiled body}" for name: the stub occupies `code[name]` the
// whole time a body sits in `pending`.
func (r *CodeRepository) InsertPlaceholder(def ast.FunctionDef, stub Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.code[def.Name]; ok {
		r.graveyard = append(r.graveyard, prev)
	}
	r.pending[def.Name] = def.Clone()
	r.code[def.Name] = stub
}

// TakePending removes and returns the pending FunctionDef for name, if
// any. Used by the lazy-compile path (internal/jit/stub.go) exactly
// once per definition: after compilation succeeds or fails, nothing
// remains in `pending` for that name.
func (r *CodeRepository) TakePending(name string) (ast.FunctionDef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.pending[name]
	if ok {
		delete(r.pending, name)
	}
	return def, ok
}

// Get returns the currently installed Artifact for name.
func (r *CodeRepository) Get(name string) (Artifact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.code[name]
	return a, ok
}

// Replace installs newArtifact under name, moving whatever was there
// before into the graveyard rather than dropping it: the repository
// never frees executable memory mid-session, and existing entry points
// never move — this only ever adds a new mapping, never mutates one in
// place.
func (r *CodeRepository) Replace(name string, newArtifact Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.code[name]; ok {
		r.graveyard = append(r.graveyard, prev)
	}
	r.code[name] = newArtifact
}

// Delete removes name from both `code` and `pending`; any superseded
// artifact goes to the graveyard, same as Replace. After Delete, a
// FunctionCall to name resolves to 0: internal/jit's trampoline goes
// through Call, which treats a missing entry as an unknown name.
func (r *CodeRepository) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.code[name]; ok {
		r.graveyard = append(r.graveyard, prev)
		delete(r.code, name)
	}
	delete(r.pending, name)
}

// List returns the names currently installed in `code`, in no
// particular order.
func (r *CodeRepository) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.code))
	for n := range r.code {
		names = append(names, n)
	}
	return names
}

// GraveyardSize reports how many superseded artifacts are being kept
// alive. Exposed for tests; not part of the addressable code table.
func (r *CodeRepository) GraveyardSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.graveyard)
}

// Call resolves name at call time and invokes it with arg, returning 0
// if the name is unknown. This is the trampoline helper's core
// behavior: resolution by name, never by baked-in address, so
// redefinition and deletion are visible to future calls.
func (r *CodeRepository) Call(name string, arg int32) int32 {
	a, ok := r.Get(name)
	if !ok {
		return 0
	}
	return a.Call(arg)
}

// Print renders a hex dump of name's currently installed bytes, for
// the `.show` command. Only raw bytes: instruction-level disassembly
// is explicitly out of scope.
func (r *CodeRepository) Print(name string) (string, bool) {
	a, ok := r.Get(name)
	if !ok {
		return "", false
	}
	type byteSource interface{ Bytes() []byte }
	bs, ok := a.(byteSource)
	if !ok {
		return fmt.Sprintf("<no byte representation for %q>", name), true
	}
	return fmt.Sprintf("Code (size: %d):\n%x\n", len(bs.Bytes()), bs.Bytes()), true
}

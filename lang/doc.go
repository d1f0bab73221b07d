// Package lang implements the suite language: a declarative notation for
// describing test suites that expands into standard Go test source.
//
// # Philosophy
//
// A suite file nests named scopes around unit bodies. Scopes contribute
// context to everything they contain: before hooks run ahead of each
// descendant unit, after hooks run behind it, and a scope signature is
// the default for descendant units. A unit is self-contained after
// expansion, so every generated test can run, pass, or fail on its own.
//
// No parser generator. No generated code. The grammar is simple enough
// for a hand-written recursive descent parser, and unit bodies are
// carried verbatim into the output.
//
// # Grammar
//
// Informal EBNF:
//
//	Suite  → Block* EOF
//	Block  → Attr* (Scope | Unit | Hook)
//	Attr   → '#[' balanced text ']'
//	Scope  → ('describe' | 'context') Ident Sig? '{' Block* '}'
//	Unit   → ('it' | 'test') Ident Sig? '{' statements '}'
//	Hook   → ('before' | 'after') '{' statements '}'
//	Sig    → '->' TypeExpr? 'async'?
//
// Line comments ('//') and block comments ('/* */') are permitted
// between blocks. Comments inside unit bodies are part of the body and
// carried verbatim.
//
// # Example
//
//	describe calc {
//	    before {
//	        sum := 0
//	    }
//
//	    it adds {
//	        sum += 2
//	        if sum != 2 {
//	            t.Fatalf("sum = %d", sum)
//	        }
//	    }
//
//	    context checked -> error {
//	        it divides {
//	            if sum != 0 {
//	                return nil
//	            }
//	            return errors.New("empty")
//	        }
//	    }
//	}
//
// generates one Test function per top-level block with nested t.Run
// subtests, each unit inlining its ancestor hooks.
//
// # Signatures
//
// A signature declares the return type of a unit body and whether it
// runs concurrently. On a scope it sets the default for all descendant
// units; a unit signature overrides the scope default. An error return
// fails the test via t.Fatal, any other return value is discarded, and
// 'async' emits t.Parallel(). The type expression ends at the opening
// brace of the body, so composite type literals must be named types.
//
// # Hooks
//
// At most one before and one after hook may appear per scope. Hook
// position within the scope is irrelevant: hooks apply to every unit of
// the scope and its descendants. Before bodies are inlined outermost
// first; after bodies run innermost first from a deferred closure, so
// they execute even when a unit body returns early.
package lang

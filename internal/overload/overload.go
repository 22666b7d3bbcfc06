// Package overload implements the OverloadResolver component: ranking a
// candidate-producer's visible function declarations against a call site's
// argument types to select the single best match, independent of where the
// candidates came from (local scope, base class, or a qualified-name scan).
package overload

import (
	"fmt"

	"github.com/flashcpp/corefront/internal/ast"
	"github.com/flashcpp/corefront/internal/types"
)

// Category mirrors the value-category taxonomy an argument expression
// carries into resolution, needed to apply the rvalue/lvalue-reference
// binding rule.
type Category uint8

const (
	PRValue Category = iota
	LValue
	XValue
)

// Argument is one call-site argument's resolved type and value category.
type Argument struct {
	Type     types.TypeIndex
	Category Category
}

// ParamRefKind classifies how a candidate's parameter binds its argument.
type ParamRefKind uint8

const (
	ParamByValue ParamRefKind = iota
	ParamLValueRef
	ParamLValueRefConst
	ParamRValueRef
)

// Param is one candidate's declared parameter.
type Param struct {
	Type types.TypeIndex
	Ref  ParamRefKind
}

// Candidate is one overload participating in resolution.
type Candidate struct {
	Decl       *ast.FunctionDecl
	Params     []Param
	IsVariadic bool
	// ConvertingConstructorTargets lists the parameter types (by index)
	// for which a unique, non-explicit converting constructor exists from
	// the call-site argument's type, enabling a user-defined conversion
	// rank instead of an outright mismatch.
	ConvertingConstructorTargets map[int]bool
	// VTableSlot is the candidate's slot in its class's virtual table, as
	// recorded in types.MemberFunction.VTableSlot by the struct layout
	// pass. -1 for a non-virtual candidate.
	VTableSlot int
}

// Rank is the conversion-quality tier used to order otherwise-viable
// candidates; lower ranks win.
type Rank int

const (
	RankExact Rank = iota
	RankQualificationConversion
	RankStandardConversion
	RankUserDefinedConversion
	RankEllipsis
	rankNoMatch
)

// NoMatchError reports that no visible candidate accepted the call's
// argument list.
type NoMatchError struct {
	NumCandidates int
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching overload among %d candidate(s)", e.NumCandidates)
}

// AmbiguousError reports that two or more candidates tied for best rank.
type AmbiguousError struct {
	Candidates []*Candidate
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("call is ambiguous among %d equally-good candidate(s)", len(e.Candidates))
}

// Resolver is the OverloadResolver component. It holds no state: resolution
// is a pure function of the candidate set and argument list supplied per
// call.
type Resolver struct {
	registry *types.Registry
}

// New constructs a Resolver backed by registry, used to test arithmetic
// convertibility between argument and parameter types.
func New(registry *types.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve selects the best candidate in candidates for args, per the
// standard ranking: exact match > qualification conversion > standard
// conversion > user-defined conversion > ellipsis, after filtering by
// arity and reference-binding legality.
func (r *Resolver) Resolve(candidates []*Candidate, args []Argument) (*Candidate, error) {
	type scored struct {
		c    *Candidate
		rank Rank
	}
	var viable []scored

	for _, c := range candidates {
		if !r.arityMatches(c, len(args)) {
			continue
		}
		rank, ok := r.rankCandidate(c, args)
		if !ok {
			continue
		}
		viable = append(viable, scored{c, rank})
	}

	if len(viable) == 0 {
		return nil, &NoMatchError{NumCandidates: len(candidates)}
	}

	best := viable[0].rank
	for _, v := range viable[1:] {
		if v.rank < best {
			best = v.rank
		}
	}

	var winners []*Candidate
	for _, v := range viable {
		if v.rank == best {
			winners = append(winners, v.c)
		}
	}
	if len(winners) > 1 {
		return nil, &AmbiguousError{Candidates: winners}
	}
	return winners[0], nil
}

func (r *Resolver) arityMatches(c *Candidate, numArgs int) bool {
	if c.IsVariadic {
		return numArgs >= len(c.Params)
	}
	return numArgs == len(c.Params)
}

// rankCandidate computes the worst-case (i.e. overall) rank across the
// fixed (non-ellipsis) parameters, or rejects the candidate outright if any
// argument fails reference-binding legality or is not convertible at all.
func (r *Resolver) rankCandidate(c *Candidate, args []Argument) (Rank, bool) {
	worst := RankExact
	for i, param := range c.Params {
		arg := args[i]
		if !referenceBindingLegal(param.Ref, arg.Category) {
			return rankNoMatch, false
		}
		rank, ok := r.rankArgument(c, i, param, arg)
		if !ok {
			return rankNoMatch, false
		}
		if rank > worst {
			worst = rank
		}
	}
	if len(args) > len(c.Params) {
		worst = RankEllipsis
	}
	return worst, true
}

// referenceBindingLegal applies the standard rule: an rvalue reference
// binds only to an xvalue or prvalue; an lvalue reference binds only to an
// lvalue unless the parameter is const-qualified, in which case it may also
// bind a prvalue/xvalue (a temporary bound to const&).
func referenceBindingLegal(ref ParamRefKind, cat Category) bool {
	switch ref {
	case ParamRValueRef:
		return cat == XValue || cat == PRValue
	case ParamLValueRef:
		return cat == LValue
	case ParamLValueRefConst:
		return true
	default:
		return true
	}
}

func (r *Resolver) rankArgument(c *Candidate, index int, param Param, arg Argument) (Rank, bool) {
	if param.Type == arg.Type {
		return RankExact, true
	}

	argInfo := r.registry.Get(arg.Type)
	paramInfo := r.registry.Get(param.Type)

	if argInfo.Kind == paramInfo.Kind {
		return RankQualificationConversion, true
	}
	if argInfo.Kind.IsArithmetic() && paramInfo.Kind.IsArithmetic() {
		return RankStandardConversion, true
	}
	if c.ConvertingConstructorTargets != nil && c.ConvertingConstructorTargets[index] {
		return RankUserDefinedConversion, true
	}
	return rankNoMatch, false
}

package fsharpstyle

// goldenRules are the built-in prompts for steering a code generator toward
// F#-style TypeScript, grouped under the six topics.
var goldenRules = []Rule{
	MustRule(StructuralModelling, "Model every domain concept with a closed set of variants as a discriminated union of object types sharing a literal `kind` field."),
	MustRule(StructuralModelling, "Prefer `type` aliases over classes and interfaces for data; keep behaviour in standalone functions."),
	MustRule(StructuralModelling, "Mark every property `readonly` and every array `ReadonlyArray`; return new values instead of mutating."),

	MustRule(Exhaustiveness, "Match on unions with a `switch` over the discriminant and return from every case."),
	MustRule(Exhaustiveness, "Add a default branch that assigns the value to a variable of type `never` so a missing case fails to compile."),
	MustRule(Exhaustiveness, "Enable `strict` and `noImplicitReturns` in tsconfig."),

	MustRule(DomainSafety, "Wrap primitive identifiers and quantities in branded types so values of different meaning cannot be mixed."),
	MustRule(DomainSafety, "Expose a single smart constructor per branded type that validates input before branding it."),
	MustRule(DomainSafety, "Encode units of measure as brands and convert between them only through named functions."),

	MustRule(ErrorHandling, "Represent absence with an `Option` union of `Some` and `None` instead of `null` or `undefined`."),
	MustRule(ErrorHandling, "Return a `Result` union of `Ok` and `Err` from operations that can fail; do not throw for expected failures."),
	MustRule(ErrorHandling, "Chain fallible steps with `map` and `bind` helpers rather than nested conditionals."),

	MustRule(LogicStructure, "Write logic as small pure functions composed into pipelines; keep side effects at the edges."),
	MustRule(LogicStructure, "Express recurring classification logic as active-pattern style functions that return a tagged union."),
	MustRule(LogicStructure, "Prefer expressions over statements: use conditional expressions and early returns instead of mutable flags."),

	MustRule(Organisation, "Group the types and functions for one concept in a single module, types first and functions after."),
	MustRule(Organisation, "Export functions from modules as namespaces of plain functions, mirroring F# modules."),
	MustRule(Organisation, "Order files so that each module depends only on modules declared before it."),
}

var defaultCatalog = MustCatalog(goldenRules...)

// Default returns the built-in golden prompt catalog.
func Default() *Catalog { return defaultCatalog }

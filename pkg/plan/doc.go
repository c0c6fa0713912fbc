// Package plan turns an enumerated source tree into an ordered copy plan.
//
// Planning is a single-threaded, deterministic computation:
//   - NamePlanner maps one source file to a destination folder and a name,
//     derived from its capture timestamp when one is available
//   - Assembler walks the enumeration in sorted path order, applies the
//     survivor and suffix rules and collects the entries
//
// The collision table and folder cache are owned by one NamePlanner and
// live for one planning run only.
package plan

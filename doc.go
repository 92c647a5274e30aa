// Package oasmerge merges OpenAPI fragments into a single document.
//
// An API description is often maintained as many small files: schema
// fragments that each define a few named definitions, and route fragments
// that each describe a few operations. The fragments point at each other with
// "$ref" pointers such as "../schemas/user.yaml#/User". oasmerge assembles
// them into one document and makes every pointer valid inside it.
//
// # Modes
//
// Two merge modes are provided:
//
//   - rewrite: pointers are kept, and every address is rewritten to the
//     canonical root, so "../schemas/user.yaml#/User" becomes
//     "#/components/schemas/User".
//   - inline: every pointer is replaced with a deep copy of its target, so
//     the output contains no pointers at all. Circular references are
//     reported instead of expanded.
//
// # Packages
//
//   - tree: ordered document tree, YAML and JSON conversion
//   - refs: pointer recognition, address parsing and canonicalization
//   - loader: fragment sources (files or memory)
//   - assembler: namespace and route table assembly with collision strategies
//   - rewriter: rewrite-mode pointer rewriting
//   - inliner: inline-mode pointer expansion with cycle detection
//   - document: envelope construction and serialization
//   - verify: checks that every pointer of a merged document resolves
//   - config: merge configuration files
//   - merger: the complete merge pipeline
//   - oaserrors: typed errors shared by all packages
//
// # Quick Start
//
//	cfg, err := config.Load("merge.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := merger.Merge(merger.WithConfig(cfg), merger.WithVerify(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//	os.Stdout.Write(res.Output)
//
// The oasmerge command wraps the same pipeline; see cmd/oasmerge.
package oasmerge

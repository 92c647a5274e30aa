// Package pathutil provides location and address helpers shared by the merge stages.
//
// [PathBuilder] tracks where a walker is inside a document tree using push/pop
// semantics, so a diagnostic such as an unresolved reference can name the exact
// spot it was found:
//
//	path := pathutil.Get()
//	defer pathutil.Put(path)
//
//	path.Push("paths")
//	path.Push("/login")
//	path.Push("responses")
//	path.Push("400")
//	// path.String() == "paths./login.responses.400"
//
// The package also holds the well-known definition roots ("#/components/schemas/",
// "#/definitions/") and JSON pointer token escaping.
package pathutil

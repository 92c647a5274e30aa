// Package tree provides the generic document model shared by every stage of a merge.
//
// Each fragment, definition, and route is a Node: an ordered *Mapping, a
// *Sequence, or a Scalar leaf. The model has no notion of OpenAPI semantics; the
// refs package layers reference-pointer recognition on top of it.
//
// # Ownership
//
// Nodes are treated as values. Stages of the merge never modify their input;
// they build new containers instead, and DeepCopy is used wherever one subtree
// is substituted for another so that two positions in the output never share a
// container.
//
// # Serialization
//
// FromYAML converts a parsed yaml.Node into a Node, ToYAML converts back, and
// MarshalJSON on *Mapping and *Sequence produces JSON with keys in insertion order.
package tree

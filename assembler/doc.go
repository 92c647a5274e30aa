// Package assembler merges definition and route fragments into single tables.
//
// Fragments are applied in order. Every key records the fragment that
// contributed it, so a key contributed twice can be reported by name. What
// happens next is decided by a [CollisionStrategy]:
//
//   - [StrategyFailOnCollision] (default) returns an oaserrors.CollisionError
//     naming the key and both fragments.
//   - [StrategyAcceptLeft] keeps the first value and records a warning.
//   - [StrategyAcceptRight] keeps the last value and records a warning.
//
// Route fragments carry an ordered table from operation name to route key.
// Operations the table does not name are skipped with an info-level warning,
// as are named operations the fragment does not define.
package assembler

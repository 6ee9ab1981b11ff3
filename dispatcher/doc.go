// Package dispatcher resolves transformation identifiers against the catalog and
// applies them to whole documents.
//
// Every call is atomic from the caller's point of view: it returns either the complete
// replacement text or an error, never partial output. The input string is never
// modified, so a host can record a successful call as a single undoable edit.
//
// How unknown identifiers are treated is fixed per Dispatcher by its Policy and applies
// to Apply, ApplyChain and ApplyTransformations alike.
package dispatcher

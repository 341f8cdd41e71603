// Package internaldefs holds the shared metric naming tables used by the
// export backends. It is not part of the public API surface.
package internaldefs

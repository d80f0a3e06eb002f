// Package clarity models Clarity contract values as a closed set of Go types
// and converts them to and from the consensus wire encoding used by the
// Stacks node API.
//
// Arguments passed to contract calls are built from these types instead of
// loosely typed maps, so the shape of every argument is checked before any
// request leaves the process:
//
//	args := []clarity.Value{
//		clarity.NewUInt(42),
//		clarity.StringUTF8("ipfs://bafy..."),
//		clarity.Bool(true),
//	}
//
// Principals are parsed from and rendered to c32check addresses.
package clarity

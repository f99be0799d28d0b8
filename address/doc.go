// Package address parses resource identifiers of the form
//
//	[scheme://]path/to/file.ext[#fragment]
//
// An Address stores the raw string once and exposes its components as
// sub-slices of it. Parsing never fails: a missing separator yields an empty
// component.
//
// The scheme selects a storage backend, the extension selects a decoder and
// Path (scheme stripped, fragment kept) is the cache key. A fragment addresses
// one logical resource inside a composite file; backends always read BasePath.
package address

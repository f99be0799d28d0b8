// Package formats provides ready-made asset types for a content.Service.
//
// Blob keeps the raw bytes of any file. Bundle is a JSON manifest that names
// other assets; it completes once everything it names has completed.
//
//	_ = formats.Register(svc)
//	h, _ := content.Load[*formats.Bundle](svc, "pkg://levels/intro.bundle", nil)
package formats

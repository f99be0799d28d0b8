package formats

import (
	"github.com/hupe1980/content"
	"github.com/hupe1980/content/address"
	"github.com/hupe1980/content/resource"
)

// Blob is an asset holding the raw bytes of a file.
type Blob struct {
	resource.Base
	data []byte
}

// NewBlob returns an Idle blob for addr.
func NewBlob(addr address.Address) *Blob {
	b := &Blob{}
	b.Init(addr, resource.Managed)
	return b
}

// Bytes returns the blob content. It is nil until the blob has completed
// and after it was deleted.
func (b *Blob) Bytes() []byte {
	if !b.HasCompleted() {
		return nil
	}
	return b.data
}

// OnCreate implements resource.Asset.
func (b *Blob) OnCreate(resource.Host) error {
	b.SetMemory(int64(len(b.data)))
	return nil
}

// OnDelete implements resource.Asset.
func (b *Blob) OnDelete(resource.Host) {
	b.data = nil
}

// DecodeBlob keeps req.Data as is.
func DecodeBlob(req *content.DecodeRequest, b *Blob) error {
	b.data = req.Data
	return nil
}

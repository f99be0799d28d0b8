package resource

// Host is the owning-thread context handed to finalization hooks, such as a
// graphics or audio device. The content service passes whatever value it was
// configured with.
type Host any

// Asset is implemented by every concrete asset type. Embedding Base provides
// Resource; the type adds the two hooks.
type Asset interface {
	Resource() *Base

	// OnCreate finalizes decoded data on the owning thread. It should call
	// SetMemory with the asset's footprint before returning nil.
	OnCreate(host Host) error

	// OnDelete releases what OnCreate acquired. It is called at most once
	// per successful OnCreate, also on the owning thread.
	OnDelete(host Host)
}

// Create runs a.OnCreate and, on success, charges a's footprint to rc. On
// failure nothing is charged and the caller decides the status.
func Create(a Asset, rc *Controller, host Host) error {
	if err := a.OnCreate(host); err != nil {
		return err
	}

	b := a.Resource()
	n := b.Memory()
	b.charged.Store(n)
	b.created.Store(true)
	rc.ChargeMemory(n)
	return nil
}

// Delete releases exactly what the last successful Create charged and then
// runs a.OnDelete. It does nothing if there is no successful Create to undo,
// so calling it on a failed asset or twice is safe.
func Delete(a Asset, rc *Controller, host Host) bool {
	b := a.Resource()
	if !b.created.Swap(false) {
		return false
	}
	rc.ReleaseMemory(b.charged.Swap(0))
	a.OnDelete(host)
	return true
}

// Discarder is implemented by assets that acquire references while decoding,
// before OnCreate. Discard runs whenever the cache drops the asset or a
// reload restarts it, whether or not OnCreate ever ran.
type Discarder interface {
	Discard()
}

// Discard calls a.Discard if a implements Discarder.
func Discard(a Asset) {
	if d, ok := a.(Discarder); ok {
		d.Discard()
	}
}

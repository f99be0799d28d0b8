// Package content loads, decodes, caches and retires external assets without
// blocking the thread that drives the application loop.
//
// A Service owns one cache per registered asset type, a pool of background
// workers, and the queue of decoded jobs waiting to be finalized on the
// owning thread.
//
// # Quick Start
//
//	svc := content.New(content.WithWorkers(4), content.WithHost(device))
//	defer svc.Close()
//
//	_ = svc.Mount("pkg", blobstore.NewLocalStore("./assets"))
//	_, _ = content.Register(svc, NewTexture, cache.WithMemoryLimit(256<<20))
//	_ = content.RegisterDecoder(svc, DecodeTexture, "png", "jpg")
//
//	h, _ := content.Load[*Texture](svc, "pkg://ui/logo.png", nil)
//	defer h.Release()
//
//	for running {
//	    svc.Tick() // finalizes whatever is ready, on this thread
//	    ...
//	}
//
// # Asset Types
//
// An asset type embeds resource.Base and implements two hooks:
//
//	type Texture struct {
//	    resource.Base
//	    pixels []byte
//	    gpu    GPUHandle
//	}
//
//	func (t *Texture) OnCreate(host resource.Host) error {
//	    t.gpu = host.(*Device).Upload(t.pixels)
//	    t.SetMemory(int64(len(t.pixels)))
//	    return nil
//	}
//
//	func (t *Texture) OnDelete(host resource.Host) { host.(*Device).Free(t.gpu) }
//
// The service charges the footprint set in OnCreate to the type's cache and
// releases exactly that amount before OnDelete.
//
// # Lifecycle
//
//	Idle ──Load──▶ Queued ──decode──▶ awaiting dependencies ──Tick──▶ Completed
//	                 │                          │                       │
//	                 └───── read/decode error ──┴── dependency/create ──▶ Failed
//
// A resource stays Queued until Tick finalizes it. Reload moves a finished
// resource back to Idle and schedules it again; Unload and Prune only touch
// finished resources.
//
// # Dependencies
//
// A decoder that needs other assets loads them with its request's scope:
//
//	func DecodeMaterial(req *content.DecodeRequest, m *Material) error {
//	    h, err := content.Load[*Texture](req.Service, m.def.Albedo, req.Scope)
//	    ...
//	}
//
// The material is finalized only after the texture completed. If the texture
// fails, the material fails with ErrDependencyFailed.
//
// # Threading
//
// Load, Get, Stats and the registries are safe for concurrent use. Tick,
// Flush, Reload, Unload, Prune, PruneAll and Close call OnCreate or OnDelete
// and belong to the owning thread.
package content

package sync

import "sync/atomic"

// Gate suppresses the mirror while the store is being repopulated from
// storage, so the bootstrap does not write back the very rows it just
// read. It replaces what would otherwise be a package-level boolean so
// tests get isolated instances.
//
// The zero value is an open gate.
type Gate struct {
	closed atomic.Bool
}

// Enter closes the gate. Mirror passes are skipped until Exit.
func (g *Gate) Enter() {
	g.closed.Store(true)
}

// Exit reopens the gate. It must be called when the bootstrap fully
// resolves, whether or not it succeeded.
func (g *Gate) Exit() {
	g.closed.Store(false)
}

// Open reports whether mirror passes may run.
func (g *Gate) Open() bool {
	return !g.closed.Load()
}

// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co provides goroutine helpers shared by the runtime, the api and the servers.
package co

import "sync"

// Goes is a WaitGroup bound to the goroutines it starts. The zero value is ready to use.
type Goes sync.WaitGroup

// Go runs f in a new goroutine tracked by g.
func (g *Goes) Go(f func()) {
	(*sync.WaitGroup)(g).Go(f)
}

// Wait blocks until every goroutine started by g has returned.
func (g *Goes) Wait() {
	(*sync.WaitGroup)(g).Wait()
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "math/rand"

// pkgRand is the source of the probabilistic decisions the CC algorithm
// family makes on its own (HPCC-PINT sampling, RTT-QCN/PowerQCN marking
// probability). It is package-private and not part of the core's
// deterministic virtual-time semantics; the external event loop and link
// model own all timing-affecting randomness.
var pkgRand = rand.New(rand.NewSource(1))

// randIntn returns a pseudo-random int in [0, n).
func randIntn(n int) int {
	return pkgRand.Intn(n)
}

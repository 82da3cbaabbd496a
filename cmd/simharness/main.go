// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

// Command simharness drives the rocecc core end to end without the full
// discrete-event simulation kernel the core deliberately excludes: it
// wires a minimal in-memory Node (a priority queue of timers and
// delayed packet deliveries) to a pair of Hosts and runs one flow per
// configured CC algorithm to completion.
package main

import (
	"container/heap"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dcnsim/rocecc"
)

const (
	hostAIP uint32 = 0x0a000001
	hostBIP uint32 = 0x0a000002
)

// event is a scheduled timer callback or packet delivery.
type event struct {
	at  rocecc.Clock
	seq uint64
	fn  func()
}

type eventQueue []*event

func (q eventQueue) Len() int            { return len(q) }
func (q eventQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)         { *q = append(*q, x.(*event)) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// sim is a single-threaded discrete-event kernel implementing
// rocecc.Node. It is not a general-purpose simulator: link delay is a
// fixed constant and there's no AQM, ECN marking, or PFC model, since
// those belong to the external collaborators the core treats as out of
// scope.
type sim struct {
	now       rocecc.Clock
	queue     eventQueue
	nextSeq   uint64
	cancelled map[uint64]bool
	linkDelay rocecc.Clock
	hostA     *rocecc.Host
	hostB     *rocecc.Host
	label     string
}

func newSim(label string, linkDelay rocecc.Clock) *sim {
	return &sim{label: label, linkDelay: linkDelay, cancelled: make(map[uint64]bool)}
}

func (s *sim) Now() rocecc.Clock { return s.now }

func (s *sim) Timer(delay rocecc.Clock, fn func(rocecc.Node)) rocecc.TimerID {
	s.nextSeq++
	id := s.nextSeq
	heap.Push(&s.queue, &event{at: s.now + delay, seq: id, fn: func() {
		if !s.cancelled[id] {
			fn(s)
		}
	}})
	return rocecc.TimerID(id)
}

func (s *sim) CancelTimer(id rocecc.TimerID) {
	s.cancelled[uint64(id)] = true
}

// Send schedules pkt's delivery one link delay from now, routing by
// destination IP and dispatching through the receiving Host.
func (s *sim) Send(pkt rocecc.Packet) {
	dst := s.hostB
	if pkt.Flow.Dip == hostAIP {
		dst = s.hostA
	}
	s.nextSeq++
	heap.Push(&s.queue, &event{at: s.now + s.linkDelay, seq: s.nextSeq, fn: func() {
		if pkt.L3Proto == rocecc.L3Data {
			dst.ReceiveData(pkt)
		} else {
			dst.ReceiveControl(pkt, 2*s.linkDelay)
		}
	}})
}

func (s *sim) Logf(format string, a ...any) {
	log.Printf("[%s t=%s] "+format, append([]any{s.label, s.now}, a...)...)
}

// run drains the event queue until it's empty or ctx is done.
func (s *sim) run(ctx context.Context) {
	for s.queue.Len() > 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e := heap.Pop(&s.queue).(*event)
		s.now = e.at
		e.fn()
	}
}

// simulateFlow runs a single flow under mode to completion in its own
// isolated sim and pair of Hosts, returning the measured FCT.
func simulateFlow(ctx context.Context, mode rocecc.CCMode, size rocecc.Bytes) (rocecc.Clock, error) {
	cfg := rocecc.DefaultConfig()
	cfg.CCMode = mode

	s := newSim(fmt.Sprintf("mode=%d", mode), 5*rocecc.Clock(time.Microsecond))
	s.hostA = rocecc.NewHost(&cfg, s, nil, nil, 1)
	s.hostB = rocecc.NewHost(&cfg, s, nil, nil, 1)

	key := rocecc.FlowKey{Sip: hostAIP, Dip: hostBIP, Sport: 1, Dport: 1, Pg: 0}
	started := s.Now()
	qp, err := s.hostA.OpenFlow(key, size, s.hostB)
	if err != nil {
		return 0, fmt.Errorf("open flow for mode %d: %w", mode, err)
	}

	deadline, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	s.run(deadline)
	if !qp.Completed {
		return 0, fmt.Errorf("flow for mode %d stalled at t=%s", mode, s.Now())
	}
	return s.Now() - started, nil
}

func main() {
	modes := []rocecc.CCMode{
		rocecc.MlxCnp, rocecc.Hpcc, rocecc.Timely, rocecc.Dctcp,
		rocecc.HpccPint, rocecc.PatchedTimely, rocecc.Swift,
		rocecc.RttQcn, rocecc.PowerQcn, rocecc.Ufcc, rocecc.UfccCwnd,
	}

	g, ctx := errgroup.WithContext(context.Background())
	results := make([]rocecc.Clock, len(modes))
	for i, mode := range modes {
		i, mode := i, mode
		g.Go(func() error {
			fct, err := simulateFlow(ctx, mode, 10*rocecc.Megabyte)
			if err != nil {
				return err
			}
			results[i] = fct
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("simharness: %v", err)
	}

	for i, mode := range modes {
		fmt.Fprintf(os.Stdout, "mode=%d fct=%s\n", mode, results[i])
	}
}

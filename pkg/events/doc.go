// Package events is the in-process typed event bus that connects the scene,
// the spatial index, the viewport, the density estimator, the hit-test
// router and the transition engine.
//
// Every event name of the system is a field of [Bus] with its own payload
// type, so a subscriber can't attach to a misspelled event or receive the
// wrong payload. Delivery is synchronous and ordered by subscription order,
// on the caller's goroutine:
//
//	bus := events.NewBus()
//	sub := bus.NodeOver.Subscribe(func(t events.Target) {
//	    fmt.Println("hovering", t.ID)
//	})
//	defer sub.Unsubscribe()
//
// The bus is not safe for concurrent use; the whole subsystem is driven
// from a single frame loop.
package events

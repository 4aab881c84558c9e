/*
Package events provides the in-process pub/sub broker.

The pass loop must never block on an observer: pushing a counter to a dead
metrics collector, or any future consumer being slow, is not allowed to delay
resolution or the hosts rewrite. The broker decouples them — the reconciler
publishes what happened, consumers subscribe on their own goroutines, and
bounded buffers drop events for a consumer that cannot keep up rather than
backpressure the publisher.

# Architecture

	┌──────────────────── EVENT BROKER ─────────────────────────┐
	│                                                           │
	│   reconciler ──Publish──▶ eventCh (buffer 100)            │
	│                              │                            │
	│                              ▼ run()                      │
	│                        ┌──────────┐                       │
	│                        │broadcast │                       │
	│                        └────┬─────┘                       │
	│               ┌─────────────┼─────────────┐               │
	│               ▼             ▼             ▼               │
	│          subscriber    subscriber    subscriber           │
	│          (buffer 50)   (buffer 50)   (buffer 50)          │
	│                                                           │
	│   full subscriber buffer → event dropped for that         │
	│   subscriber only, publisher never blocks                 │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Event Types

  - variable.healthy — a candidate passed its probe and was selected
  - variable.unhealthy — a variable produced no address this pass; without a
    "variable" metadata key it is an anonymous pass-level failure
  - hosts.updated — the hosts file was rewritten
  - pass.completed — a pass finished; metadata carries the result

The metrics push reporter is the one built-in subscriber; it converts
variable.unhealthy and successful pass.completed events into counter pushes.
*/
package events

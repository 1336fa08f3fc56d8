/*
Package domain contains the core domain models of the parley dialog.

It defines the entities the Dialog Controller works with: the append-only
Transcript of Messages, the single PendingInteraction that tracks an open
disambiguation sub-flow, and the RequestState flags. It also defines the wire
shapes exchanged with the Answer Service and the typed errors surfaced by
adapters. This package is kept free of I/O and persistence.

# Key Entities

  - Message: one transcript entry (user or bot), tagged with a Kind that tells
    the renderer which affordance, if any, is attached.
  - PendingInteraction: the open sub-flow (option choice, manual answer or web
    confirmation) and the question that triggered it.
  - Snapshot: a read-only copy of the dialog handed to presentation layers.
  - Copy: the user-facing message copy used by the controller.
*/
package domain

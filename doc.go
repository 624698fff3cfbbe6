/*
Package espalier edits and validates dynamic choice-option configuration for
multi-page data-collection workflows.

A choice question can source its selectable options from a named list variable
instead of a typed-in option list. That list can optionally be routed through
a separate, reusable "List Tools" block that filters, sorts, dedupes, selects
and paginates it. Espalier owns the state machine that keeps the question's
configuration and the shared block consistent as a user links, unlinks or
replaces that relationship, plus the advisory consistency checks surfaced in
the editor (timing, missing columns). It never executes a transform and never
renders a widget; it is a library-level contract for the editing surface.

# Concept

Each question owns one DynamicOptionsConfig. Its link relationship is a tagged
variant: Unlinked (transform inline, possibly none) or Linked (options flow
through an external block, with the pre-link source retained for reverting).
Transitions are all-or-nothing: either the full new config (and, when
relevant, a freshly created block) is produced, or nothing changes.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/espalier"
		"github.com/aretw0/espalier/pkg/adapters/memory"
		"github.com/aretw0/espalier/pkg/domain"
	)

	func main() {
		ws := memory.NewWorkspace(nil)
		ws.AddProducer("applicants", "", domain.Position{Phase: domain.PhaseOnEnter})

		ed := espalier.New(ws)
		ctx := context.Background()

		if err := ed.SetOptions(ctx, "q-1", &domain.DynamicOptionsConfig{
			ListVariable: "applicants",
			LabelPath:    "fullName",
			ValuePath:    "id",
		}); err != nil {
			log.Fatal(err)
		}

		// Move the question's (empty) transform into a shared List Tools block.
		res, err := ed.CreateLink(ctx, "q-1", "page-1")
		if err != nil {
			log.Fatal(err)
		}
		log.Println("linked to block:", res.CreatedBlock.ID)

		// Undo it, keeping whatever the block accumulated meanwhile.
		if _, err := ed.Unlink(ctx, "q-1", espalier.UnlinkKeep); err != nil {
			log.Fatal(err)
		}
	}
*/
package espalier

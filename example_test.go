package espalier_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
)

// ExampleNew demonstrates the full link lifecycle over an in-memory workspace:
// a choice question starts with an inline transform, promotes it into a shared
// List Tools block, and later unlinks keeping the transforms.
func ExampleNew() {
	// 1. Describe the surrounding workflow: one table, one list producer and
	// the consuming question.
	ws := memory.NewWorkspace(nil)
	ws.AddTable("people", domain.TableSchema{
		Columns: []domain.Column{
			{ID: "id", Name: "ID", IsPrimary: true},
			{ID: "name", Name: "Name"},
		},
	})
	ws.AddProducer("applicants", "people", domain.Position{Phase: domain.PhaseOnEnter, Order: 1})
	ws.AddConsumer("q-pick", domain.Position{Phase: domain.PhaseOnEnter, Order: 5})

	editor := espalier.New(ws)
	ctx := context.Background()

	// 2. Configure the question with an inline transform.
	limit := 25
	err := editor.SetOptions(ctx, "q-pick", &domain.DynamicOptionsConfig{
		ListVariable: "applicants",
		LabelPath:    "name",
		ValuePath:    "id",
		Link:         domain.Unlinked{Transform: &domain.TransformConfig{Limit: &limit}},
	})
	if err != nil {
		log.Fatal(err)
	}

	// 3. Promote the transform into a shareable List Tools block.
	res, err := editor.CreateLink(ctx, "q-pick", "sec-main")
	if err != nil {
		log.Fatal(err)
	}
	cfg, _ := editor.Options(ctx, "q-pick")
	fmt.Printf("after link: %s\n", cfg.Status())
	fmt.Printf("block created: %v\n", res.CreatedBlock != nil)

	// 4. Undo the link, pulling the block's transforms back inline.
	if _, err := editor.Unlink(ctx, "q-pick", espalier.UnlinkKeep); err != nil {
		log.Fatal(err)
	}
	cfg, _ = editor.Options(ctx, "q-pick")
	fmt.Printf("after unlink: %s, source %s\n", cfg.Status(), cfg.ListVariable)
	// Output:
	// after link: linked
	// block created: true
	// after unlink: inline_transform, source applicants
}

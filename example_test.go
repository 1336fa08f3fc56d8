package parley_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
)

// ExampleNew_memory runs a whole disambiguation against the in-memory
// knowledge base, with no network involved.
func ExampleNew_memory() {
	kb := memory.NewKnowledgeBase(
		memory.WithWebSearcher(memory.StaticSearcher{"capital of mars?": "Mars has no capital"}),
	)

	d, err := parley.New("", parley.WithAnswerService(kb))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	snap, _ := d.SubmitQuestion(ctx, "Capital of Mars?")
	fmt.Println(snap.Stage())

	snap, _ = d.ChooseOption(ctx, domain.OptionSearchWeb)
	fmt.Println(snap.Stage())

	snap, _ = d.ConfirmWebAnswer(ctx, true)
	fmt.Println(snap.Stage())

	snap, _ = d.SubmitQuestion(ctx, "capital of mars?")
	last, _ := snap.LastMessage()
	fmt.Println(last.Text)
	// Output:
	// awaiting_option_choice
	// awaiting_web_confirmation
	// none
	// Mars has no capital
}

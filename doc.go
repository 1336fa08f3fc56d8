/*
Package parley is a conversational front-end for a remote question-answering
service (the Answer Service).

A Dialog exchanges messages with the service and, when the service has no
answer, walks the user through a short disambiguation flow: provide an answer,
search the web and confirm the preview, or ask for another joke.

# Concept

The Dialog owns an append-only transcript and at most one pending interaction.
Every action returns a Snapshot (transcript, pending interaction, request state
and the actions currently offered), so any front-end (terminal, HTTP, MCP) can
render it without touching internal state. Only one request is in flight at a
time; actions attempted meanwhile are dropped.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/parley"
		"github.com/aretw0/parley/pkg/domain"
	)

	func main() {
		d, err := parley.New("http://localhost:3000/api")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		snap, err := d.SubmitQuestion(ctx, "What is the capital of Mars?")
		if err != nil {
			log.Fatal(err)
		}

		if snap.Stage() == domain.StageAwaitingOptionChoice {
			snap, _ = d.ChooseOption(ctx, domain.OptionSearchWeb)
		}
		for _, m := range snap.Transcript {
			fmt.Printf("%s: %s\n", m.Role, m.Text)
		}
	}
*/
package parley

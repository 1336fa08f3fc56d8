/*
Package runner implements the terminal loop that drives a parley Dialog.

The runner reads one command per line, invokes the matching Dialog action and
prints only the messages appended since the previous action. Plain text is a
question, or the manual answer while the dialog awaits one.

# Key Components

  - Runner: the read, dispatch, show loop.
  - IOHandler: decouples how commands arrive and how results are presented.
  - TextHandler: interactive terminal usage with slash commands.
  - JSONHandler: JSON-Lines in and out, for scripts and other processes.
  - Sanitizer: input size and control character filtering.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, dialog); err != nil {
		log.Fatal(err)
	}
*/
package runner

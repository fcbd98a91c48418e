/*
Package dialectic is a dialogue and strategic-action engine for narrative
learning games.

A player talks with mentors through authored dialogue graphs. Each stage shows
a speaker, some text and a list of options; choosing an option applies its
effects to the player's insight, momentum, knowledge and mentor relationships
and moves the conversation on. At any stage the player may instead spend a
strategic action (reframe, extrapolate, boast or synthesis) which rewrites the
live stage for the rest of that turn.

# Usage

	eng, err := dialectic.New("./content")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := eng.StartDialogue(ctx, "kapoor-calibration"); err != nil {
		log.Fatal(err)
	}

	stage, _ := eng.CurrentNode()
	options, _ := eng.AvailableOptions()
	fmt.Println(stage.Text)
	for _, o := range options {
		fmt.Println("-", o.Option.Text)
	}

	if err := eng.SelectOption(ctx, options[0].Option.ID); err != nil {
		log.Fatal(err)
	}

Content is read from YAML or JSON graph files by default, or from markdown
stage documents with WithMarkdown. Any ports.ContentRegistry can be injected
with WithContentRegistry.

# Persistence

Engine.Snapshot and Engine.Restore capture and replace everything the engine
owns. The session package layers save slots with per-slot locking over any
ports.SnapshotStore; adapters exist for memory, files, Redis and SQLite, and
persistence/middleware adds AES-GCM encryption.
*/
package dialectic

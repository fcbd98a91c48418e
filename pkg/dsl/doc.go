/*
Package dsl provides a fluent Go builder for dialogue graphs.

It is an alternative to YAML or JSON content for generated graphs, tests and
anything that benefits from type checking.

	b := dsl.New("kapoor-calibration").Domain("dosimetry").Difficulty(2)

	intro := b.Stage("intro").Speaker("kapoor").Text("The chamber reading is ready.")
	intro.Option("go", "Let's begin.").To("basics").Insight(5).Critical()
	intro.Option("wander", "What's that poster?").To("side")

	b.Stage("basics").Speaker("kapoor").Text("Tell me about corrections.").
		Option("bye", "That's all.").End().Relationship(2)

	loader, err := b.Loader()

The first stage added is the start stage unless another calls Start.
*/
package dsl

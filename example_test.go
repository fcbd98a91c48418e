package dialectic_test

import (
	"context"
	"fmt"

	"github.com/aretw0/dialectic"
)

func Example() {
	eng, err := dialectic.New("content")
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	if err := eng.StartDialogue(ctx, "kapoor-calibration"); err != nil {
		fmt.Println(err)
		return
	}

	options, _ := eng.AvailableOptions()
	for _, o := range options {
		fmt.Println(o.Option.ID)
	}

	_ = eng.SelectOption(ctx, "absorbed-dose")
	stage, _ := eng.CurrentNode()
	fmt.Println("now at", stage.ID, "with insight", eng.Resources().Insight)

	// Output:
	// absorbed-dose
	// walk-me-through
	// charge
	// now at corrections with insight 5
}

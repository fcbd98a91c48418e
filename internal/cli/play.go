package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/dialectic"
	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/internal/presentation/tui"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/session"
	"github.com/aretw0/dialectic/pkg/strategy"
)

// ErrQuit is returned by a command that ends the play loop early.
var ErrQuit = errors.New("quit")

var actionKeys = map[string]strategy.Kind{
	"r": strategy.KindReframe,
	"e": strategy.KindExtrapolate,
	"b": strategy.KindBoast,
	"s": strategy.KindSynthesis,
}

const helpText = `commands:
  <n>           choose option n
  t             take the tangent
  r / e / b / s reframe, extrapolate, boast, synthesis
  r? / b? ...   preview the options with that action armed
  save [slot]   save to a slot (a new slot when omitted)
  load <slot>   resume a saved slot
  q             leave the dialogue`

// Player drives an interactive dialogue over a line-oriented terminal.
type Player struct {
	Engine  *dialectic.Engine
	Console *tui.Console
	Slots   *session.Manager
	Logger  *slog.Logger
}

// Play runs the dialogue until it concludes, the player quits, input ends or
// ctx is cancelled. The engine must already have an active dialogue.
func (p *Player) Play(ctx context.Context, in io.Reader) error {
	if p.Logger == nil {
		p.Logger = logging.NewNop()
	}
	lines := readLines(ctx, in)

	for {
		stage, ok := p.Engine.CurrentNode()
		if !ok {
			p.finish()
			return nil
		}
		options, err := p.Engine.AvailableOptions()
		if err != nil {
			return err
		}
		p.render(stage, options)

		if len(options) == 0 && stage.TangentStageID == "" {
			p.Console.Notice("The conversation has nowhere left to go.")
			if err := p.Engine.EndDialogue(ctx); err != nil {
				return err
			}
			p.finish()
			return nil
		}

		fmt.Fprint(p.Console.Out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.Console.Out)
			return ctx.Err()
		case l, open := <-lines:
			if !open {
				return nil
			}
			line = l
		}

		err = p.Execute(ctx, line, stage, options)
		switch {
		case errors.Is(err, ErrQuit):
			if endErr := p.Engine.EndDialogue(ctx); endErr != nil {
				return endErr
			}
			p.Console.Notice("Left the dialogue.")
			return nil
		case err != nil:
			p.Logger.Debug("command failed", "input", line, "err", err)
			p.Console.Error(err)
		}
	}
}

// Execute runs one player command against the current stage.
func (p *Player) Execute(ctx context.Context, line string, stage *domain.Stage, options []domain.AvailableOption) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd := strings.ToLower(fields[0])

	if n, err := strconv.Atoi(cmd); err == nil {
		if n < 1 || n > len(options) {
			return fmt.Errorf("%w: no option %d", domain.ErrInvalidArgument, n)
		}
		return p.Engine.SelectOption(ctx, options[n-1].Option.ID)
	}

	if key, ok := strings.CutSuffix(cmd, "?"); ok {
		if kind, ok := actionKeys[key]; ok {
			preview, err := p.Engine.EnhanceOptions(kind)
			if err != nil {
				return err
			}
			p.Console.Notice("%s armed; enter %s to commit.", kind, key)
			p.Console.Options(preview)
			return nil
		}
	}

	if kind, ok := actionKeys[cmd]; ok {
		if _, err := p.Engine.ApplyStrategicAction(ctx, kind, stage.SpeakerID, stage.ID); err != nil {
			return err
		}
		p.Console.Notice("%s applied.", kind)
		return nil
	}

	switch cmd {
	case "t", "tangent":
		return p.Engine.TakeTangent(ctx)
	case "q", "quit", "exit":
		return ErrQuit
	case "?", "h", "help":
		fmt.Fprintln(p.Console.Out, helpText)
		return nil
	case "save":
		if p.Slots == nil {
			return errors.New("saving is not configured")
		}
		slot := ""
		if len(fields) > 1 {
			slot = fields[1]
		}
		id, err := p.Slots.Checkpoint(ctx, slot, p.Engine)
		if err != nil {
			return err
		}
		p.Console.Notice("Saved to slot %s.", id)
		return nil
	case "load":
		if p.Slots == nil {
			return errors.New("saving is not configured")
		}
		if len(fields) < 2 {
			return fmt.Errorf("%w: load needs a slot", domain.ErrInvalidArgument)
		}
		if err := p.Slots.Resume(ctx, fields[1], p.Engine); err != nil {
			return err
		}
		p.Console.Notice("Resumed slot %s.", fields[1])
		return nil
	}
	return fmt.Errorf("%w: unknown command %q (try ?)", domain.ErrInvalidArgument, fields[0])
}

func (p *Player) render(stage *domain.Stage, options []domain.AvailableOption) {
	var mentor *domain.Mentor
	if m, err := p.Engine.Mentor(stage.SpeakerID); err == nil {
		mentor = &m
	}
	fmt.Fprintln(p.Console.Out)
	p.Console.Stage(stage, p.Console.SpeakerName(stage.SpeakerID, mentor))
	p.Console.Resources(p.Engine.Resources())
	p.Console.Options(options)
	if stage.TangentStageID != "" {
		p.Console.Notice("(t) a tangent is available")
	}
}

func (p *Player) finish() {
	grade, err := p.Engine.Grade()
	if err != nil {
		p.Logger.Debug("no grade available", "err", err)
		return
	}
	fmt.Fprintln(p.Console.Out)
	p.Console.Grade(grade)
}

// readLines feeds input lines to a channel until EOF or ctx is done.
// The reader goroutine may stay blocked on a terminal read after ctx ends.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

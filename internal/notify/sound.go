package notify

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	logx "petfeed/pkg/logx"
)

// CommandPlayer shells out to an audio player for the alarm file.
// Play failures are returned to the caller (the poller logs and continues).
type CommandPlayer struct {
	player string
	path   string
	log    logx.Logger
}

// NewCommandPlayer builds a player invoking `player <path>`.
// Default player is paplay; empty path disables playback.
func NewCommandPlayer(player, path string, log logx.Logger) *CommandPlayer {
	if strings.TrimSpace(player) == "" {
		player = "paplay"
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &CommandPlayer{player: player, path: strings.TrimSpace(path), log: log}
}

func (p *CommandPlayer) Play(ctx context.Context) error {
	if p.path == "" {
		return errors.New("no alarm sound configured")
	}
	// An alarm cue should be short; don't let a wedged player pile up processes.
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.player, p.path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		p.log.Debug("sound player failed", logx.String("player", p.player), logx.String("output", strings.TrimSpace(string(out))), logx.Err(err))
		return err
	}
	return nil
}

// NopPlayer satisfies SoundPlayer when sound is disabled.
type NopPlayer struct{}

func (NopPlayer) Play(context.Context) error { return nil }

// Package main plays one complete skirmish in the terminal, turn by turn.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/audit"
	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/narrative"
	"github.com/cory-johannsen/skirmish/internal/game/roster"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

// maxTurns stops a runaway simulation. No game with the built-in baselines
// lasts anywhere near this long.
const maxTurns = 10000

func main() {
	configPath := flag.String("config", "", "optional configuration file; built-in defaults when empty")
	name := flag.String("name", "", "player name")
	opponents := flag.Int("opponents", -1, "number of opponents; negative uses game.default_opponent_count")
	auditLog := flag.Bool("audit", false, "write combat events to audit.file_path")
	seed := flag.Uint64("seed", 0, "nonzero seeds the dice so a game can be replayed")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	count := *opponents
	if count < 0 {
		count = cfg.Game.DefaultOpponentCount
	}

	var emitter event.Emitter = event.Discard
	if *auditLog {
		fileLogger, err := observability.NewFileLogger(cfg.Audit.FilePath)
		if err != nil {
			logger.Fatal("opening audit log", zap.Error(err))
		}
		defer fileLogger.Sync()
		emitter = audit.NewLogSink(fileLogger)
	}

	var src dice.Source = dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
		logger.Info("dice seeded", zap.Uint64("seed", *seed))
	}
	roller := dice.NewLoggedRoller(src, logger)
	if err := run(context.Background(), os.Stdout, cfg, *name, count, roller, emitter, logger); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadFromViper(config.Defaults())
	}
	return config.Load(path)
}

// run plays a game to completion and writes a transcript to out.
//
// Postcondition: Returns nil once the session reaches a terminal status.
func run(
	ctx context.Context,
	out io.Writer,
	cfg config.Config,
	playerName string,
	opponentCount int,
	roller *dice.Roller,
	emitter event.Emitter,
	logger *zap.Logger,
) error {
	baselines, err := roster.LoadBaselines(cfg.Game.RosterFile)
	if err != nil {
		return err
	}
	factory, err := roster.NewFactory(baselines.WithPlayerName(cfg.Game.DefaultPlayerName), roller)
	if err != nil {
		return err
	}
	narrator, cleanup, err := narrative.NewFromConfig(cfg.Narrative, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := session.NewEngine(factory, roller, narrator, emitter, logger, cfg.Game.MaxOpponents)
	gs, err := engine.Create(ctx, playerName, opponentCount)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%d HP) faces %d opponent(s):\n", gs.Player.Name, gs.Player.Health, len(gs.Opponents))
	for i, o := range gs.Opponents {
		fmt.Fprintf(out, "  %d. %s (%d HP, %d ATK)\n", i+1, o.Name, o.Health, o.AttackPower)
	}

	for turns := 0; !gs.Status.Terminal(); turns++ {
		if turns >= maxTurns {
			return fmt.Errorf("no result after %d turns", maxTurns)
		}
		round := gs.RoundNumber
		res, err := engine.ResolveTurn(ctx, gs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n-- Round %d --\n", round)
		printLeg(out, res.PlayerOutcome, res.PlayerLine)
		if res.OpponentOutcome != nil {
			printLeg(out, *res.OpponentOutcome, res.OpponentLine)
		}
	}

	st := gs.Stats()
	fmt.Fprintf(out, "\n%s after %d round(s). %s has %d/%d HP; %d attack(s) resolved.\n",
		outcomeWord(st.Status), st.RoundNumber-1, gs.Player.Name,
		st.PlayerHealth, st.PlayerMaxHealth, st.AttacksResolved)
	return nil
}

func printLeg(out io.Writer, o combat.Outcome, line *narrative.Line) {
	fmt.Fprintf(out, "%s\n", combat.Situation(o))
	if o.Success {
		fmt.Fprintf(out, "  %s takes %d damage (%d HP left)\n", o.DefenderName, o.Damage, o.DefenderHealthAfter)
	}
	if line != nil {
		fmt.Fprintf(out, "  %s: \"%s\"\n", o.AttackerName, line.Text)
	}
	if o.DefenderDefeated {
		fmt.Fprintf(out, "  %s is defeated!\n", o.DefenderName)
	}
}

func outcomeWord(s session.Status) string {
	if s == session.StatusVictory {
		return "VICTORY"
	}
	return "DEFEAT"
}

package effectir

import "github.com/forgewright/mtgcore/internal/engine/zone"

// Run executes one Step against ctx, dispatching by concrete type. It
// returns a Result describing whether the step halted on a decision, was
// skipped (hints-only mode, player choice required), or applied.
func (x Executor) Run(ctx Context, step Step) Result {
	if x.HintsOnly {
		switch step.(type) {
		case StepScry, StepSurveil, StepSacrifice:
			return Result{Skipped: true, SkipReason: "player_choice_required"}
		}
	}
	switch s := step.(type) {
	case StepDraw:
		return x.runDraw(ctx, s)
	case StepMill:
		return x.runMill(ctx, s)
	case StepScry:
		return x.runScry(ctx, s)
	case StepSurveil:
		return x.runSurveil(ctx, s)
	case StepExileTop:
		return x.runExileTop(ctx, s)
	case StepImpulseExileTop:
		return x.runImpulseExileTop(ctx, s)
	case StepModifyPT:
		return x.runModifyPT(ctx, s)
	case StepAddMana:
		return x.runAddMana(ctx, s)
	case StepCreateToken:
		return x.runCreateToken(ctx, s)
	case StepDestroy:
		return x.runDestroy(ctx, s)
	case StepExile:
		return x.runExile(ctx, s)
	case StepBounce:
		return x.runBounce(ctx, s)
	case StepSacrifice:
		return x.runSacrifice(ctx, s)
	case StepGainLife:
		return x.runGainLife(ctx, s)
	case StepLoseLife:
		return x.runLoseLife(ctx, s)
	case StepDealDamage:
		return x.runDealDamage(ctx, s)
	case StepMoveZone:
		return x.runMoveZone(ctx, s)
	default:
		return Result{Skipped: true, SkipReason: "unknown_step_kind"}
	}
}

func (x Executor) runDraw(ctx Context, s StepDraw) Result {
	if x.Hooks.DrawCards == nil {
		return Result{Skipped: true, SkipReason: "no_draw_hook"}
	}
	for _, p := range ctx.ResolvePlayers(s.Who) {
		x.Hooks.DrawCards(p, s.Amount)
	}
	return Result{Applied: true}
}

func (x Executor) runMill(ctx Context, s StepMill) Result {
	if x.Hooks.MillCards == nil {
		return Result{Skipped: true, SkipReason: "no_mill_hook"}
	}
	for _, p := range ctx.ResolvePlayers(s.Who) {
		x.Hooks.MillCards(p, s.Amount)
	}
	return Result{Applied: true}
}

func (x Executor) runScry(ctx Context, s StepScry) Result {
	if x.Hooks.Scry == nil {
		return Result{Skipped: true, SkipReason: "no_scry_hook"}
	}
	players := ctx.ResolvePlayers(s.Who)
	if len(players) == 0 {
		return Result{Skipped: true, SkipReason: "no_players_resolved"}
	}
	// Only the first resolved player is offered the scry; any other
	// resolved players are not processed. The step halts on the decision the
	// hook registers, or counts as applied when the hook registers none.
	pending := x.Hooks.Scry(players[0], s.Amount)
	if pending == nil {
		return Result{Applied: true}
	}
	return Result{Decision: pending}
}

func (x Executor) runSurveil(ctx Context, s StepSurveil) Result {
	if x.Hooks.Surveil == nil {
		return Result{Skipped: true, SkipReason: "no_surveil_hook"}
	}
	players := ctx.ResolvePlayers(s.Who)
	if len(players) == 0 {
		return Result{Skipped: true, SkipReason: "no_players_resolved"}
	}
	pending := x.Hooks.Surveil(players[0], s.Amount)
	if pending == nil {
		return Result{Applied: true}
	}
	return Result{Decision: pending}
}

func (x Executor) runExileTop(ctx Context, s StepExileTop) Result {
	if x.Hooks.ExileFromTopOf == nil {
		return Result{Skipped: true, SkipReason: "no_exile_top_hook"}
	}
	for _, p := range ctx.ResolvePlayers(s.Who) {
		x.Hooks.ExileFromTopOf(p, s.Amount)
	}
	return Result{Applied: true}
}

func (x Executor) runImpulseExileTop(ctx Context, s StepImpulseExileTop) Result {
	if x.Hooks.ExileFromTopOf == nil {
		return Result{Skipped: true, SkipReason: "no_exile_top_hook"}
	}
	for _, p := range ctx.ResolvePlayers(s.Who) {
		x.Hooks.ExileFromTopOf(p, 1)
	}
	return Result{Applied: true}
}

func (x Executor) runModifyPT(ctx Context, s StepModifyPT) Result {
	if x.Hooks.ModifyPT == nil {
		return Result{Skipped: true, SkipReason: "no_modify_pt_hook"}
	}
	power, toughness := s.Power, s.Toughness
	if s.WhereX != nil {
		n := s.WhereX()
		power *= n
		toughness *= n
	}
	for _, t := range s.Targets {
		x.Hooks.ModifyPT(t, power, toughness)
	}
	return Result{Applied: true}
}

func (x Executor) runAddMana(ctx Context, s StepAddMana) Result {
	if x.Hooks.AddMana == nil {
		return Result{Skipped: true, SkipReason: "no_add_mana_hook"}
	}
	for _, p := range ctx.ResolvePlayers(s.Who) {
		x.Hooks.AddMana(p, s.Pool)
	}
	return Result{Applied: true}
}

func (x Executor) runCreateToken(ctx Context, s StepCreateToken) Result {
	if x.Hooks.CreateToken == nil {
		return Result{Skipped: true, SkipReason: "no_create_token_hook"}
	}
	owners := ctx.ResolvePlayers(s.Owner)
	if len(owners) == 0 {
		owners = []zone.PlayerID{ctx.Controller}
	}
	for _, o := range owners {
		x.Hooks.CreateToken(o, s.Base, s.Amount, s.Tapped, s.Counters)
	}
	return Result{Applied: true}
}

func (x Executor) runDestroy(ctx Context, s StepDestroy) Result {
	if x.Hooks.Destroy == nil {
		return Result{Skipped: true, SkipReason: "no_destroy_hook"}
	}
	for _, t := range s.Targets {
		x.Hooks.Destroy(t)
	}
	return Result{Applied: true}
}

func (x Executor) runExile(ctx Context, s StepExile) Result {
	if x.Hooks.ExileObject == nil {
		return Result{Skipped: true, SkipReason: "no_exile_hook"}
	}
	for _, t := range s.Targets {
		x.Hooks.ExileObject(t)
	}
	return Result{Applied: true}
}

func (x Executor) runBounce(ctx Context, s StepBounce) Result {
	if x.Hooks.Bounce == nil {
		return Result{Skipped: true, SkipReason: "no_bounce_hook"}
	}
	for _, t := range s.Targets {
		x.Hooks.Bounce(t)
	}
	return Result{Applied: true}
}

func (x Executor) runSacrifice(ctx Context, s StepSacrifice) Result {
	if x.Hooks.SacrificeOptions == nil {
		return Result{Skipped: true, SkipReason: "no_sacrifice_hook"}
	}
	players := ctx.ResolvePlayers(s.Who)
	if len(players) == 0 {
		return Result{Skipped: true, SkipReason: "no_players_resolved"}
	}
	pending := x.Hooks.SacrificeOptions(players[0], s.Matches)
	if pending == nil {
		return Result{Applied: true}
	}
	return Result{Decision: pending}
}

func (x Executor) runGainLife(ctx Context, s StepGainLife) Result {
	if x.Hooks.GainLife == nil {
		return Result{Skipped: true, SkipReason: "no_gain_life_hook"}
	}
	for _, p := range ctx.ResolvePlayers(s.Who) {
		x.Hooks.GainLife(p, s.Amount)
	}
	return Result{Applied: true}
}

func (x Executor) runLoseLife(ctx Context, s StepLoseLife) Result {
	if x.Hooks.LoseLife == nil {
		return Result{Skipped: true, SkipReason: "no_lose_life_hook"}
	}
	for _, p := range ctx.ResolvePlayers(s.Who) {
		x.Hooks.LoseLife(p, s.Amount)
	}
	return Result{Applied: true}
}

func (x Executor) runDealDamage(ctx Context, s StepDealDamage) Result {
	if x.Hooks.DealDamage == nil {
		return Result{Skipped: true, SkipReason: "no_deal_damage_hook"}
	}
	for _, t := range s.TargetObjects {
		x.Hooks.DealDamage(s.Source, t, "", s.Amount)
	}
	for _, p := range ctx.ResolvePlayers(s.TargetPlayers) {
		x.Hooks.DealDamage(s.Source, "", p, s.Amount)
	}
	return Result{Applied: true}
}

func (x Executor) runMoveZone(ctx Context, s StepMoveZone) Result {
	if x.Hooks.MoveZone == nil {
		return Result{Skipped: true, SkipReason: "no_move_zone_hook"}
	}
	x.Hooks.MoveZone(s.From, s.To, s.Matches, s.EntersTapped, s.NewController)
	return Result{Applied: true}
}

// ScanLibraryUntilMatch resolves an "until you exile/reveal a [type] card"
// unknown quantity deterministically by scanning the ordered library for
// the first matching card and counting cards up to and including it.
func (x Executor) ScanLibraryUntilMatch(player zone.PlayerID, matches func(zone.CardRecord) bool) (count int, found bool) {
	if x.Hooks.ScanLibraryUntil == nil {
		return 0, false
	}
	return x.Hooks.ScanLibraryUntil(player, matches)
}

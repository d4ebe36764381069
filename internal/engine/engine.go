package engine

import (
	gameerrors "github.com/backbay/imperium/internal/errors"
	"github.com/backbay/imperium/internal/ids"
)

// Engine owns the live GameState and is the only thing allowed to replace
// it. Every mutation goes through ApplyCommandChecked's scratch-clone-and-
// commit pattern (§5, §9): a command never sees a partially-mutated state
// survive a validation failure.
type Engine struct {
	state *GameState
}

func NewEngine(gs *GameState) *Engine { return &Engine{state: gs} }

// State returns the live, authoritative state. Callers must not mutate it
// directly; it is exposed for the Query* family and for snapshotting.
func (e *Engine) State() *GameState { return e.state }

// Fork returns a new Engine over a clone of the live state, for callers
// that need to apply a whole batch of commands atomically (a turn
// submission's multiple commands, none of which may partially land): run
// the batch against the fork, and only Commit it back if every command in
// the batch succeeded (§4.I Turn submission).
func (e *Engine) Fork() *Engine { return NewEngine(e.state.Clone()) }

// Commit replaces the live state with other's, which must be a fork of
// this engine that has since been mutated. Used after a turn submission's
// batch has applied cleanly end to end.
func (e *Engine) Commit(other *Engine) { e.state = other.state }

// ApplyCommandChecked validates and applies cmd on behalf of actor. On any
// error the scratch clone is discarded and e.state is untouched (§7).
func (e *Engine) ApplyCommandChecked(actor ids.PlayerId, cmd Command) ([]Event, error) {
	if _, isEndTurn := cmd.(EndTurn); !isEndTurn {
		if actor != e.state.CurrentPlayer() {
			return nil, gameerrors.NewGameError(gameerrors.ErrNotYourTurn, "")
		}
	}

	scratch := e.state.Clone()
	events, err := dispatch(scratch, actor, cmd)
	if err != nil {
		return nil, err
	}
	e.state = scratch
	return events, nil
}

func dispatch(gs *GameState, actor ids.PlayerId, cmd Command) ([]Event, error) {
	switch c := cmd.(type) {
	case MoveUnit:
		return handleMoveUnit(gs, actor, c)
	case AttackUnit:
		return handleAttackUnit(gs, actor, c)
	case Fortify:
		return handleFortify(gs, actor, c)
	case SetOrders:
		return handleSetOrders(gs, actor, c)
	case CancelOrders:
		return handleCancelOrders(gs, actor, c)
	case SetWorkerAutomation:
		return handleSetWorkerAutomation(gs, actor, c)
	case PillageImprovement:
		return handlePillageImprovement(gs, actor, c)
	case FoundCity:
		return handleFoundCity(gs, actor, c)
	case SetProduction:
		return handleSetProduction(gs, actor, c)
	case BuyProduction:
		return handleBuyProduction(gs, actor, c)
	case AssignCitizen:
		return handleAssignCitizen(gs, actor, c)
	case UnassignCitizen:
		return handleUnassignCitizen(gs, actor, c)
	case SetResearch:
		return handleSetResearch(gs, actor, c)
	case AdoptPolicy:
		return handleAdoptPolicy(gs, actor, c)
	case ReformGovernment:
		return handleReformGovernment(gs, actor, c)
	case EstablishTradeRoute:
		return handleEstablishTradeRoute(gs, actor, c)
	case CancelTradeRoute:
		return handleCancelTradeRoute(gs, actor, c)
	case DeclareWar:
		return handleDeclareWar(gs, actor, c)
	case DeclarePeace:
		return handleDeclarePeace(gs, actor, c)
	case ProposeDeal:
		return handleProposeDeal(gs, actor, c)
	case RespondToProposal:
		return handleRespondToProposal(gs, actor, c)
	case CancelTreaty:
		return handleCancelTreaty(gs, actor, c)
	case IssueDemand:
		return handleIssueDemand(gs, actor, c)
	case RespondToDemand:
		return handleRespondToDemand(gs, actor, c)
	case EndTurn:
		return handleEndTurn(gs, actor, c)
	default:
		return nil, gameerrors.NewGameError(gameerrors.ErrInvalidPath, "unknown command")
	}
}

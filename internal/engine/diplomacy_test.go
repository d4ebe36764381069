package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbay/imperium/internal/ids"
)

func TestHandleDeclareWarRejectsSelfTarget(t *testing.T) {
	gs := NewGame(newTestOpts())
	_, err := handleDeclareWar(gs, ids.PlayerId(0), DeclareWar{Target: ids.PlayerId(0)})
	require.Error(t, err)
}

func TestHandleDeclareWarIsIdempotent(t *testing.T) {
	gs := NewGame(newTestOpts())
	events, err := handleDeclareWar(gs, ids.PlayerId(0), DeclareWar{Target: ids.PlayerId(1)})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.True(t, gs.Diplomacy.AtWarBetween(ids.PlayerId(0), ids.PlayerId(1)))

	// A second declaration against an already-hostile target is a no-op,
	// not an error: it must not emit a duplicate WarDeclared.
	events, err = handleDeclareWar(gs, ids.PlayerId(0), DeclareWar{Target: ids.PlayerId(1)})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestHandleDeclarePeaceEndsWar(t *testing.T) {
	gs := NewGame(newTestOpts())
	_, err := handleDeclareWar(gs, ids.PlayerId(0), DeclareWar{Target: ids.PlayerId(1)})
	require.NoError(t, err)

	events, err := handleDeclarePeace(gs, ids.PlayerId(0), DeclarePeace{Target: ids.PlayerId(1)})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.False(t, gs.Diplomacy.AtWarBetween(ids.PlayerId(0), ids.PlayerId(1)))
}

func TestHandleProposeDealRejectsSelfTarget(t *testing.T) {
	gs := NewGame(newTestOpts())
	_, err := handleProposeDeal(gs, ids.PlayerId(0), ProposeDeal{To: ids.PlayerId(0)})
	require.Error(t, err)
}

func TestHandleProposeDealQueuesAProposal(t *testing.T) {
	gs := NewGame(newTestOpts())
	_, err := handleProposeDeal(gs, ids.PlayerId(0), ProposeDeal{To: ids.PlayerId(1), Offer: DealOffer{Gold: 50}})
	require.NoError(t, err)

	_, ok := findProposal(gs, ids.PlayerId(0), ids.PlayerId(1))
	assert.True(t, ok)
}

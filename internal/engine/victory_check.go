package engine

import "github.com/backbay/imperium/internal/ids"

func checkVictory(gs *GameState, events *[]Event) {
	if gs.Victory.GameEnded {
		return
	}

	checkElimination(gs, events)
	if declareIfOneLeft(gs, events) {
		return
	}
	if checkDomination(gs, events) {
		return
	}
	if checkScience(gs, events) {
		return
	}
	if checkCulture(gs, events) {
		return
	}
	checkTimeLimit(gs, events)
}

func checkElimination(gs *GameState, events *[]Event) {
	for pid, p := range gs.Players {
		if p.Eliminated {
			continue
		}
		hasCity := false
		gs.Cities.IterOrdered(func(_ uint64, c City) {
			if c.Owner == pid {
				hasCity = true
			}
		})
		hasUnit := false
		gs.Units.IterOrdered(func(_ uint64, u Unit) {
			if u.Owner == pid {
				hasUnit = true
			}
		})
		if !hasCity && !hasUnit {
			p.Eliminated = true
			gs.Victory.Eliminated[pid] = true
		}
	}
}

func alivePlayers(gs *GameState) []ids.PlayerId {
	var alive []ids.PlayerId
	for _, pid := range gs.PlayerOrder {
		if p, ok := gs.Players[pid]; ok && !p.Eliminated {
			alive = append(alive, pid)
		}
	}
	return alive
}

func declareIfOneLeft(gs *GameState, events *[]Event) bool {
	alive := alivePlayers(gs)
	if len(gs.PlayerOrder) > 1 && len(alive) == 1 {
		endGame(gs, events, &alive[0], "elimination")
		return true
	}
	return false
}

// checkDomination implements §4.D's domination victory: one surviving
// player holds every original capital, their own and every other
// player's conquered one.
func checkDomination(gs *GameState, events *[]Event) bool {
	capitals := gs.Victory.OriginalCapitals
	if len(capitals) == 0 {
		return false
	}
	var holder *ids.PlayerId
	for _, cap := range capitals {
		if cap.CurrentOwner == nil {
			return false
		}
		if holder == nil {
			owner := *cap.CurrentOwner
			holder = &owner
		} else if *holder != *cap.CurrentOwner {
			return false
		}
	}
	endGame(gs, events, holder, "domination")
	return true
}

func checkScience(gs *GameState, events *[]Event) bool {
	for pid, progress := range gs.Victory.ScienceProgress {
		allDone := len(progress) > 0
		for _, v := range progress {
			if !v {
				allDone = false
				break
			}
		}
		if allDone {
			winner := pid
			endGame(gs, events, &winner, "science")
			return true
		}
	}
	return false
}

func checkCulture(gs *GameState, events *[]Event) bool {
	for pid, tourism := range gs.Victory.Tourism {
		threshold := gs.Victory.LifetimeCulture[pid] * gs.Victory.CultureThresholdPct / 100
		if gs.Victory.CultureThresholdPct > 0 && tourism >= threshold && threshold > 0 {
			allOthersDominated := true
			for other, otherCulture := range gs.Victory.LifetimeCulture {
				if other == pid {
					continue
				}
				otherTourismFromUs := gs.Victory.Tourism[other]
				if otherTourismFromUs < otherCulture*gs.Victory.CultureThresholdPct/100 {
					allOthersDominated = false
					break
				}
			}
			if allOthersDominated {
				winner := pid
				endGame(gs, events, &winner, "culture")
				return true
			}
		}
	}
	return false
}

func checkTimeLimit(gs *GameState, events *[]Event) bool {
	if gs.Victory.TurnLimit > 0 && gs.Turn >= gs.Victory.TurnLimit {
		endGame(gs, events, highestCulturePlayer(gs), "time-limit")
		return true
	}
	return false
}

func highestCulturePlayer(gs *GameState) *ids.PlayerId {
	var best *ids.PlayerId
	bestCulture := -1
	for _, pid := range alivePlayers(gs) {
		if c := gs.Players[pid].Culture; c > bestCulture {
			bestCulture = c
			p := pid
			best = &p
		}
	}
	return best
}

func endGame(gs *GameState, events *[]Event, winner *ids.PlayerId, reason string) {
	gs.Victory.GameEnded = true
	gs.Victory.Winner = winner
	gs.Victory.Reason = reason
	var subject ids.PlayerId
	if winner != nil {
		subject = *winner
	}
	gs.Chronicle.Append(gs.Turn, ChronicleVictory, subject, nil, reason)
	*events = append(*events, GameEnded{Winner: winner, Reason: reason})
}

package bridge

// DealResult is the record produced when a deal with a contract completes.
// Points and GameWins are the cumulative match totals per seat, mirrored so
// each seat shows its pair total.
type DealResult struct {
	Points            [4]int `json:"points"`
	GameWins          [4]int `json:"game_wins"`
	ContractSucceeded bool   `json:"contract_succeeded"`
	Bidder            Player `json:"bidder"`
	NextDealBidder    Player `json:"next_deal_bidder"`

	// IsGameFinished is true when this deal ended the rubber. Signalled on
	// the wire by a separate game_finished notification.
	IsGameFinished bool `json:"-"`
}

// Match accumulates scores across deals under rubber conventions: trick
// scores build toward a 100-point game line, the first side to two games
// wins the rubber.
type Match struct {
	points         [4]int
	vulnerable     [4]bool
	gameWins       [4]int
	lineScore      [2]int // partial game-line trick points per side
	nextDealBidder Player
	finished       bool
}

// NewMatch creates a match; North opens the first auction.
func NewMatch() *Match {
	return &Match{nextDealBidder: North}
}

// NextDealBidder returns the seat that opens the next auction.
func (m *Match) NextDealBidder() Player { return m.nextDealBidder }

// Points returns the cumulative match points per seat.
func (m *Match) Points() [4]int { return m.points }

// GameWins returns the games won per seat.
func (m *Match) GameWins() [4]int { return m.gameWins }

// Vulnerable reports whether the given seat's side has won a game.
func (m *Match) Vulnerable(p Player) bool { return m.vulnerable[p] }

// IsFinished reports whether one side has won the rubber.
func (m *Match) IsFinished() bool { return m.finished }

// perTrickScore returns the trick-score value of each contracted trick and
// the extra value of the first trick (no trump only).
func perTrickScore(bt BidType) (per, firstExtra int) {
	if bt.IsNoTrump() {
		return 30, 10
	}
	if t, _ := bt.TrumpSuit(); t.IsMajor() {
		return 30, 0
	}
	return 20, 0
}

// undertrickPenalty returns the defenders' score for the given number of
// undertricks against a doubled contract.
func undertrickPenalty(down int, vulnerable bool) int {
	if vulnerable {
		// 200 for the first, 300 for each subsequent.
		return 200 + 300*(down-1)
	}
	// 100 for the first, 200 for the second and third, 300 beyond.
	pts := 100
	if down > 1 {
		extra := down - 1
		if extra > 2 {
			extra = 2
		}
		pts += 200 * extra
	}
	if down > 3 {
		pts += 300 * (down - 3)
	}
	return pts
}

// ApplyDeal scores a finished deal and folds it into the match totals. It
// returns the DealResult record broadcast to the room.
func (m *Match) ApplyDeal(res GameResult) DealResult {
	declarer := res.Declarer
	side := declarer.Side()
	defenderSide := 1 - side
	level := res.Contract.Level()
	mult := res.GameValue.multiplier()
	vulnerable := m.vulnerable[declarer]
	made := res.ContractMade()

	if made {
		per, firstExtra := perTrickScore(res.Contract.Type())
		trickScore := (level*per + firstExtra) * mult

		over := res.TricksWon - 6 - level
		overPts := 0
		switch res.GameValue {
		case Plain:
			overPts = over * per
		case Doubled:
			if vulnerable {
				overPts = over * 200
			} else {
				overPts = over * 100
			}
		case Redoubled:
			if vulnerable {
				overPts = over * 400
			} else {
				overPts = over * 200
			}
		}

		bonus := 0
		switch level {
		case 6:
			if vulnerable {
				bonus += 750
			} else {
				bonus += 500
			}
		case 7:
			if vulnerable {
				bonus += 1500
			} else {
				bonus += 1000
			}
		}
		switch res.GameValue {
		case Doubled:
			bonus += 50
		case Redoubled:
			bonus += 100
		}

		m.creditSide(side, trickScore+overPts+bonus)
		m.lineScore[side] += trickScore
		if m.lineScore[side] >= 100 {
			m.winGame(side)
		}
	} else {
		down := level + 6 - res.TricksWon
		pts := 0
		switch res.GameValue {
		case Plain:
			if vulnerable {
				pts = 100 * down
			} else {
				pts = 50 * down
			}
		case Doubled:
			pts = undertrickPenalty(down, vulnerable)
		case Redoubled:
			pts = 2 * undertrickPenalty(down, vulnerable)
		}
		m.creditSide(defenderSide, pts)
	}

	m.nextDealBidder = declarer.Next()

	return DealResult{
		Points:            m.points,
		GameWins:          m.gameWins,
		ContractSucceeded: made,
		Bidder:            declarer,
		NextDealBidder:    m.nextDealBidder,
		IsGameFinished:    m.finished,
	}
}

// creditSide adds points to both seats of a side.
func (m *Match) creditSide(side, pts int) {
	m.points[side] += pts
	m.points[side+2] += pts
}

// winGame records a game-line win for a side: both partners become
// vulnerable and both part-score lines reset. Two games end the rubber.
func (m *Match) winGame(side int) {
	m.gameWins[side]++
	m.gameWins[side+2]++
	m.vulnerable[side] = true
	m.vulnerable[side+2] = true
	m.lineScore[0] = 0
	m.lineScore[1] = 0

	if m.gameWins[side] >= 2 {
		rubber := 700
		if m.gameWins[1-side] > 0 {
			rubber = 500
		}
		m.creditSide(side, rubber)
		m.finished = true
	}
}

package bridge

import "testing"

func result(level int, bt BidType, declarer Player, gv GameValue, tricksWon int) GameResult {
	return GameResult{
		Contract:  Play(level, bt),
		Declarer:  declarer,
		GameValue: gv,
		TricksWon: tricksWon,
	}
}

func TestPartScoreMinorSuit(t *testing.T) {
	m := NewMatch()
	res := m.ApplyDeal(result(2, Trump(Clubs), North, Plain, 8))
	if !res.ContractSucceeded {
		t.Fatal("2C with 8 tricks should make")
	}
	// 2 * 20, below the game line.
	if res.Points[North] != 40 || res.Points[South] != 40 {
		t.Errorf("points = %v, want 40 for N/S", res.Points)
	}
	if res.GameWins[North] != 0 {
		t.Errorf("part score won a game: %v", res.GameWins)
	}
	if m.Vulnerable(North) {
		t.Error("vulnerable after a part score")
	}
	if res.NextDealBidder != East {
		t.Errorf("next bidder = %v, want East", res.NextDealBidder)
	}
}

func TestGameWinNoTrumpWithOvertrick(t *testing.T) {
	m := NewMatch()
	// 3NT + 1: trick score 40+30+30 = 100, overtrick 30.
	res := m.ApplyDeal(result(3, NoTrump(), South, Plain, 10))
	if res.Points[South] != 130 || res.Points[North] != 130 {
		t.Errorf("points = %v, want 130 for N/S", res.Points)
	}
	if res.GameWins[South] != 1 {
		t.Errorf("game wins = %v, want 1 for N/S", res.GameWins)
	}
	if !m.Vulnerable(South) || !m.Vulnerable(North) {
		t.Error("both partners should be vulnerable after a game")
	}
	if m.Vulnerable(East) || m.Vulnerable(West) {
		t.Error("opponents should not be vulnerable")
	}
}

func TestDoubledMajorMadeWithInsult(t *testing.T) {
	m := NewMatch()
	// 2S doubled, made exactly: trick score 120 (game), insult 50.
	res := m.ApplyDeal(result(2, Trump(Spades), East, Doubled, 8))
	if res.Points[East] != 170 || res.Points[West] != 170 {
		t.Errorf("points = %v, want 170 for E/W", res.Points)
	}
	if res.GameWins[East] != 1 {
		t.Errorf("doubled 2S should score a game: %v", res.GameWins)
	}
}

func TestDoubledOvertricksVulnerable(t *testing.T) {
	m := NewMatch()
	m.vulnerable = [4]bool{true, false, true, false}
	// 2H doubled +2 while vulnerable: 120 + 2*200 + 50.
	res := m.ApplyDeal(result(2, Trump(Hearts), North, Doubled, 10))
	if res.Points[North] != 570 {
		t.Errorf("points = %d, want 570", res.Points[North])
	}
}

func TestSmallSlamBonus(t *testing.T) {
	m := NewMatch()
	// 6H made, not vulnerable: 180 + 500.
	res := m.ApplyDeal(result(6, Trump(Hearts), West, Plain, 12))
	if res.Points[West] != 680 {
		t.Errorf("points = %d, want 680", res.Points[West])
	}
}

func TestGrandSlamVulnerable(t *testing.T) {
	m := NewMatch()
	m.vulnerable = [4]bool{false, true, false, true}
	// 7NT made while vulnerable: 220 + 1500.
	res := m.ApplyDeal(result(7, NoTrump(), East, Plain, 13))
	if res.Points[East] != 1720 {
		t.Errorf("points = %d, want 1720", res.Points[East])
	}
}

func TestUndertricks(t *testing.T) {
	tests := []struct {
		name string
		gv   GameValue
		vuln bool
		down int
		want int
	}{
		{"plain not vulnerable", Plain, false, 2, 100},
		{"plain vulnerable", Plain, true, 3, 300},
		{"doubled one off", Doubled, false, 1, 100},
		{"doubled two off", Doubled, false, 2, 300},
		{"doubled three off", Doubled, false, 3, 500},
		{"doubled four off", Doubled, false, 4, 800},
		{"doubled vulnerable three off", Doubled, true, 3, 800},
		{"redoubled two off", Redoubled, false, 2, 600},
		{"redoubled vulnerable one off", Redoubled, true, 1, 400},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatch()
			if tc.vuln {
				m.vulnerable = [4]bool{true, false, true, false}
			}
			// North declares and goes down; defenders E/W collect.
			res := m.ApplyDeal(result(3, Trump(Hearts), North, tc.gv, 9-tc.down))
			if res.ContractSucceeded {
				t.Fatal("contract reported made")
			}
			if res.Points[East] != tc.want || res.Points[West] != tc.want {
				t.Errorf("defender points = %v, want %d", res.Points, tc.want)
			}
			if res.Points[North] != 0 {
				t.Errorf("declarer scored %d on a defeat", res.Points[North])
			}
		})
	}
}

func TestGameLineAccumulates(t *testing.T) {
	m := NewMatch()
	// Two part scores of 60 reach 100 on the second deal.
	m.ApplyDeal(result(2, Trump(Spades), North, Plain, 8))
	res := m.ApplyDeal(result(2, Trump(Spades), North, Plain, 8))
	if res.GameWins[North] != 1 {
		t.Errorf("game wins = %v, want 1 after 60+60", res.GameWins)
	}
}

func TestGameLineResetsOnGame(t *testing.T) {
	m := NewMatch()
	// E/W book a part score, then N/S win a game: both lines reset.
	m.ApplyDeal(result(2, Trump(Clubs), East, Plain, 8))
	m.ApplyDeal(result(3, NoTrump(), North, Plain, 9))
	if m.lineScore[0] != 0 || m.lineScore[1] != 0 {
		t.Errorf("line scores = %v, want reset", m.lineScore)
	}
}

func TestRubberBonusCleanSweep(t *testing.T) {
	m := NewMatch()
	m.ApplyDeal(result(3, NoTrump(), North, Plain, 9))
	res := m.ApplyDeal(result(4, Trump(Spades), North, Plain, 10))
	if !res.IsGameFinished {
		t.Fatal("two games should end the rubber")
	}
	if !m.IsFinished() {
		t.Error("match not marked finished")
	}
	// 100 + 120 trick scores + 700 rubber bonus.
	if res.Points[North] != 920 {
		t.Errorf("points = %d, want 920", res.Points[North])
	}
}

func TestRubberBonusContested(t *testing.T) {
	m := NewMatch()
	m.ApplyDeal(result(3, NoTrump(), North, Plain, 9))
	m.ApplyDeal(result(3, NoTrump(), East, Plain, 9))
	res := m.ApplyDeal(result(4, Trump(Hearts), East, Plain, 10))
	if !res.IsGameFinished {
		t.Fatal("two games should end the rubber")
	}
	// E/W: 100 + 120 trick scores + 500 rubber (opponents hold one game).
	if res.Points[East] != 720 {
		t.Errorf("points = %d, want 720", res.Points[East])
	}
}

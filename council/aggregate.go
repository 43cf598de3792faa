package council

import (
	"fmt"
	"math"
	"strings"
)

// Aggregate folds the successful judgments into a consensus verdict.
// failedJudges is the number of judges that produced no judgment; it
// only affects the summary wording.
//
// The winner is the speaker with the most votes. Ties resolve to the
// speaker whose first vote appears earliest in the judgment slice,
// which keeps the outcome deterministic since the orchestrator passes
// judgments in roster order.
func Aggregate(judgments []IndividualJudgment, failedJudges int) *CouncilVerdict {
	votes := make(map[string]int, 2)
	var voteOrder []string
	for _, j := range judgments {
		w := j.Evaluation.Winner
		if _, seen := votes[w]; !seen {
			voteOrder = append(voteOrder, w)
		}
		votes[w]++
	}

	finalWinner := ""
	maxVotes := 0
	for _, speaker := range voteOrder {
		if votes[speaker] > maxVotes {
			maxVotes = votes[speaker]
			finalWinner = speaker
		}
	}

	// The runner-up is the non-winner with the most votes, first vote
	// breaking ties, so the summary compares the actual contenders
	// rather than whichever speaker happened to score highest.
	runnerUp := ""
	maxOther := 0
	for _, speaker := range voteOrder {
		if speaker != finalWinner && votes[speaker] > maxOther {
			maxOther = votes[speaker]
			runnerUp = speaker
		}
	}

	verdict := &CouncilVerdict{
		FinalWinner:         finalWinner,
		Unanimity:           len(votes) == 1,
		VoteCount:           votes,
		AverageScores:       averageScores(judgments),
		IndividualJudgments: judgments,
	}
	verdict.ConsensusSummary = consensusSummary(verdict, runnerUp, failedJudges)
	return verdict
}

// averageScores averages each dimension per speaker across the judges
// that scored that speaker, rounded to one decimal place.
func averageScores(judgments []IndividualJudgment) map[string]SpeakerScore {
	type accum struct {
		score SpeakerScore
		n     float64
	}
	sums := make(map[string]*accum)
	var order []string
	for _, j := range judgments {
		for speaker, s := range j.Evaluation.Scores {
			a, ok := sums[speaker]
			if !ok {
				a = &accum{score: SpeakerScore{SpeakerID: speaker}}
				sums[speaker] = a
				order = append(order, speaker)
			}
			a.score.Argumentation += s.Argumentation
			a.score.Evidence += s.Evidence
			a.score.Delivery += s.Delivery
			a.score.Rebuttal += s.Rebuttal
			a.score.Total += s.Total
			a.n++
		}
	}

	avg := make(map[string]SpeakerScore, len(sums))
	for _, speaker := range order {
		a := sums[speaker]
		avg[speaker] = SpeakerScore{
			SpeakerID:     speaker,
			Argumentation: round1(a.score.Argumentation / a.n),
			Evidence:      round1(a.score.Evidence / a.n),
			Delivery:      round1(a.score.Delivery / a.n),
			Rebuttal:      round1(a.score.Rebuttal / a.n),
			Total:         round1(a.score.Total / a.n),
		}
	}
	return avg
}

// round1 rounds half away from zero to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// consensusSummary renders a one-sentence human explanation of the
// outcome. On a split the winner's average argumentation is compared
// against the vote runner-up's; a speaker missing from AverageScores
// contributes a zero argumentation score on either side.
func consensusSummary(v *CouncilVerdict, runnerUp string, failedJudges int) string {
	var b strings.Builder
	if v.Unanimity {
		fmt.Fprintf(&b, "The council unanimously declared %s the winner", v.FinalWinner)
	} else {
		winnerVotes := v.VoteCount[v.FinalWinner]
		otherVotes := 0
		for speaker, n := range v.VoteCount {
			if speaker != v.FinalWinner {
				otherVotes += n
			}
		}
		fmt.Fprintf(&b, "The council split %d-%d in favor of %s", winnerVotes, otherVotes, v.FinalWinner)

		winnerArg := v.AverageScores[v.FinalWinner].Argumentation
		runnerUpArg := v.AverageScores[runnerUp].Argumentation
		if winnerArg > runnerUpArg {
			b.WriteString(", citing superior argumentation")
		} else {
			b.WriteString(", citing overall performance")
		}
	}
	if failedJudges > 0 {
		fmt.Fprintf(&b, " (%d judge(s) failed to report)", failedJudges)
	}
	b.WriteString(".")
	return b.String()
}

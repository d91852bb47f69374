// Package metrics exposes Prometheus counters for game activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/robalobadob/numguess/internal/game"
)

var (
	gamesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "numguess",
		Name:      "games_started_total",
		Help:      "Games started by difficulty and mode",
	}, []string{"difficulty", "mode"}) // mode=normal|replay|daily

	guessesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "numguess",
		Name:      "guesses_total",
		Help:      "Evaluated guesses by difficulty and result",
	}, []string{"difficulty", "result"}) // result=too_low|too_high|correct

	gamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "numguess",
		Name:      "games_finished_total",
		Help:      "Finished games by difficulty and status",
	}, []string{"difficulty", "status"})

	attemptsToFinish = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "numguess",
		Name:      "attempts_to_finish",
		Help:      "Attempts used by finished games",
		Buckets:   []float64{1, 2, 3, 5, 7, 10, 15, 25, 50},
	}, []string{"difficulty", "status"})

	rejectedGuesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "numguess",
		Name:      "guesses_rejected_total",
		Help:      "Guesses rejected before evaluation",
	}, []string{"reason"}) // reason=out_of_range|finished|not_found
)

// GameStarted records a new session.
func GameStarted(d game.Difficulty, mode string) {
	gamesStarted.WithLabelValues(string(d), mode).Inc()
}

// GuessEvaluated records one evaluated guess and, when it ended the game,
// the final result.
func GuessEvaluated(d game.Difficulty, out game.Outcome) {
	result := string(out.Hint)
	if out.Status == game.StatusWon {
		result = "correct"
	}
	guessesTotal.WithLabelValues(string(d), result).Inc()

	if out.Status.Terminal() {
		gamesFinished.WithLabelValues(string(d), string(out.Status)).Inc()
		attemptsToFinish.WithLabelValues(string(d), string(out.Status)).Observe(float64(out.Attempts))
	}
}

// GuessRejected records a guess that never reached the engine.
func GuessRejected(reason string) {
	rejectedGuesses.WithLabelValues(reason).Inc()
}

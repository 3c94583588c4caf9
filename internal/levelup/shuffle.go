package levelup

import "math/rand"

// shuffleQuestions applies a Fisher-Yates permutation to the question order
// and to each question's option order. Option slices are copied so callers'
// question values are never mutated in place.
func shuffleQuestions(rng *rand.Rand, questions []Question) {
	rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	for i := range questions {
		opts := make([]Option, len(questions[i].Options))
		copy(opts, questions[i].Options)
		rng.Shuffle(len(opts), func(a, b int) {
			opts[a], opts[b] = opts[b], opts[a]
		})
		questions[i].Options = opts
	}
}

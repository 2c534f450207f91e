package quiz

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/adsp-prep/backend/internal/models"
)

// VariationProbability is how often a cache-served question is varied rather
// than returned verbatim. Questions flagged for mandatory variation skip the
// roll entirely.
const VariationProbability = 0.7

// stemSwaps are meaning-preserving rewrites of common Korean question-stem
// phrasings. Only the first matching pair is applied.
var stemSwaps = [][2]string{
	{"다음 중 ", "아래 보기 중 "},
	{"옳지 않은 것은", "적절하지 않은 것은"},
	{"옳은 것은", "가장 적절한 것은"},
	{"해당하지 않는 것은", "포함되지 않는 것은"},
	{"무엇인가", "어느 것인가"},
}

// Varier produces surface variants of cached questions without spending
// generation calls. Deterministic for a given seed. One Varier is shared by
// all request goroutines; the mutex serializes draws from the rng, which is
// not safe for concurrent use on its own.
type Varier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewVarier(seed int64) *Varier {
	return &Varier{rng: rand.New(rand.NewSource(seed))}
}

// Vary permutes the option order, recomputes which index is correct, and
// lightly rewrites the stem when a known phrasing matches. The option text
// set and the correct option's text are always preserved.
func (v *Varier) Vary(q models.Question) models.Question {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vary(q)
}

func (v *Varier) vary(q models.Question) models.Question {
	out := q
	out.Options = make([]models.QuestionOption, len(q.Options))
	copy(out.Options, q.Options)

	if len(out.Options) > 1 {
		perm := v.rng.Perm(len(out.Options))
		if isIdentity(perm) {
			perm[0], perm[1] = perm[1], perm[0]
		}
		shuffled := make([]models.QuestionOption, len(out.Options))
		for newIdx, oldIdx := range perm {
			shuffled[newIdx] = out.Options[oldIdx]
			shuffled[newIdx].Index = newIdx
			if oldIdx == q.CorrectAnswer {
				out.CorrectAnswer = newIdx
			}
		}
		out.Options = shuffled
	}

	out.Question = rewriteStem(q.Question, v.rng)
	return out
}

// MaybeVary applies Vary with probability VariationProbability, or always
// when mandatory. The second return reports whether variation happened.
func (v *Varier) MaybeVary(q models.Question, mandatory bool) (models.Question, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if mandatory || v.rng.Float64() < VariationProbability {
		return v.vary(q), true
	}
	return q, false
}

func isIdentity(perm []int) bool {
	for i, p := range perm {
		if i != p {
			return false
		}
	}
	return true
}

// rewriteStem applies at most one phrase swap, in either direction, chosen
// by coin flip so repeated variations do not oscillate predictably.
func rewriteStem(stem string, rng *rand.Rand) string {
	for _, pair := range stemSwaps {
		from, to := pair[0], pair[1]
		if rng.Intn(2) == 1 {
			from, to = to, from
		}
		if strings.Contains(stem, from) {
			return strings.Replace(stem, from, to, 1)
		}
		if strings.Contains(stem, to) {
			return strings.Replace(stem, to, from, 1)
		}
	}
	return stem
}

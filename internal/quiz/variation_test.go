package quiz

import (
	"sort"
	"sync"
	"testing"

	"github.com/adsp-prep/backend/internal/models"
)

func sampleQuestion() models.Question {
	return models.Question{
		ID:       1,
		Question: "다음 중 데이터베이스의 특징으로 옳지 않은 것은?",
		Options: []models.QuestionOption{
			{Index: 0, Text: "통합된 데이터"},
			{Index: 1, Text: "저장된 데이터"},
			{Index: 2, Text: "공용 데이터"},
			{Index: 3, Text: "일회성 데이터"},
		},
		CorrectAnswer: 3,
		Explanation:   "데이터베이스는 일회성이 아닌 지속적으로 유지되는 데이터의 집합입니다.",
	}
}

func optionTexts(opts []models.QuestionOption) []string {
	texts := make([]string, len(opts))
	for i, o := range opts {
		texts[i] = o.Text
	}
	sort.Strings(texts)
	return texts
}

func TestVaryPreservesCorrectness(t *testing.T) {
	orig := sampleQuestion()
	correctText := orig.Options[orig.CorrectAnswer].Text

	for seed := int64(0); seed < 50; seed++ {
		v := NewVarier(seed)
		varied := v.Vary(orig)

		if varied.CorrectAnswer < 0 || varied.CorrectAnswer >= len(varied.Options) {
			t.Fatalf("seed %d: correct answer %d out of range", seed, varied.CorrectAnswer)
		}
		if got := varied.Options[varied.CorrectAnswer].Text; got != correctText {
			t.Errorf("seed %d: correct option text = %q, want %q", seed, got, correctText)
		}
	}
}

func TestVaryPreservesOptionSet(t *testing.T) {
	orig := sampleQuestion()
	want := optionTexts(orig.Options)

	v := NewVarier(7)
	varied := v.Vary(orig)

	got := optionTexts(varied.Options)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("option set changed: got %v, want %v", got, want)
		}
	}
}

func TestVaryReindexesSequentially(t *testing.T) {
	v := NewVarier(3)
	varied := v.Vary(sampleQuestion())
	for i, opt := range varied.Options {
		if opt.Index != i {
			t.Errorf("option %d has index %d", i, opt.Index)
		}
	}
}

func TestVaryChangesOptionOrder(t *testing.T) {
	orig := sampleQuestion()
	v := NewVarier(11)
	varied := v.Vary(orig)

	same := true
	for i := range orig.Options {
		if varied.Options[i].Text != orig.Options[i].Text {
			same = false
			break
		}
	}
	if same {
		t.Error("variation returned the original option order")
	}
}

func TestVaryDoesNotMutateInput(t *testing.T) {
	orig := sampleQuestion()
	origCorrect := orig.CorrectAnswer
	origFirst := orig.Options[0].Text

	NewVarier(5).Vary(orig)

	if orig.CorrectAnswer != origCorrect || orig.Options[0].Text != origFirst {
		t.Error("Vary mutated its input")
	}
}

func TestVaryDeterministicBySeed(t *testing.T) {
	a := NewVarier(42).Vary(sampleQuestion())
	b := NewVarier(42).Vary(sampleQuestion())

	if a.Question != b.Question || a.CorrectAnswer != b.CorrectAnswer {
		t.Error("same seed produced different variants")
	}
	for i := range a.Options {
		if a.Options[i] != b.Options[i] {
			t.Errorf("same seed produced different option order at %d", i)
		}
	}
}

func TestMaybeVaryMandatory(t *testing.T) {
	v := NewVarier(1)
	for i := 0; i < 20; i++ {
		_, varied := v.MaybeVary(sampleQuestion(), true)
		if !varied {
			t.Fatal("mandatory variation was skipped")
		}
	}
}

// One Varier is shared across request goroutines in production; this fails
// under the race detector if the rng is not serialized.
func TestVarierConcurrentUse(t *testing.T) {
	v := NewVarier(42)
	orig := sampleQuestion()
	correctText := orig.Options[orig.CorrectAnswer].Text

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				varied, _ := v.MaybeVary(orig, i%2 == 0)
				if varied.CorrectAnswer < 0 || varied.CorrectAnswer >= len(varied.Options) {
					t.Errorf("correct answer %d out of range", varied.CorrectAnswer)
					return
				}
				if got := varied.Options[varied.CorrectAnswer].Text; got != correctText {
					t.Errorf("correct option text = %q, want %q", got, correctText)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestMaybeVaryProbability(t *testing.T) {
	v := NewVarier(99)
	varied := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		if _, did := v.MaybeVary(sampleQuestion(), false); did {
			varied++
		}
	}
	rate := float64(varied) / float64(trials)
	if rate < 0.6 || rate > 0.8 {
		t.Errorf("variation rate = %.3f, want about 0.7", rate)
	}
}

func TestFingerprintDisambiguation(t *testing.T) {
	base := Fingerprint("core text", 3, 0, 0)
	if base == "" || len(base) != 32 {
		t.Fatalf("unexpected fingerprint %q", base)
	}

	seen := map[string]bool{base: true}
	for _, fp := range []string{
		Fingerprint("core text", 3, 1, 0),
		Fingerprint("core text", 3, 0, 1),
		Fingerprint("core text", 4, 0, 0),
		Fingerprint("other text", 3, 0, 0),
	} {
		if seen[fp] {
			t.Errorf("fingerprint collision: %q", fp)
		}
		seen[fp] = true
	}

	if again := Fingerprint("core text", 3, 0, 0); again != base {
		t.Errorf("fingerprint not stable: %q vs %q", again, base)
	}
}

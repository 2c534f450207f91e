package similarity

import "testing"

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical",
			a:    "what is a primary key",
			b:    "what is a primary key",
			want: 1.0,
		},
		{
			name: "identical ignoring case and punctuation",
			a:    "What is a primary key?",
			b:    "what is a primary key",
			want: 1.0,
		},
		{
			name: "three of five shared tokens",
			a:    "alpha beta gamma delta",
			b:    "alpha beta gamma epsilon",
			want: 3.0 / 5.0,
		},
		{
			name: "disjoint",
			a:    "completely different words here",
			b:    "nothing shared at all",
			want: 0.0,
		},
		{
			name: "empty side",
			a:    "",
			b:    "some text",
			want: 0.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			back := Jaccard(tt.b, tt.a)
			if !almostEqual(got, back) {
				t.Errorf("Jaccard not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestScore(t *testing.T) {
	t.Run("identical text scores 1.0", func(t *testing.T) {
		s := "데이터베이스의 특징으로 옳지 않은 것은?"
		if got := Score(s, s); !almostEqual(got, 1.0) {
			t.Errorf("Score(s, s) = %v, want 1.0", got)
		}
	})

	t.Run("single-rune text scores 1.0 against itself", func(t *testing.T) {
		for _, s := range []string{"가", "a", "7"} {
			if got := Score(s, s); !almostEqual(got, 1.0) {
				t.Errorf("Score(%q, %q) = %v, want 1.0", s, s, got)
			}
		}
	})

	t.Run("empty side scores 0.0", func(t *testing.T) {
		if got := Score("", "anything"); got != 0.0 {
			t.Errorf("Score with empty side = %v, want 0.0", got)
		}
	})

	t.Run("bounded in [0, 1]", func(t *testing.T) {
		pairs := [][2]string{
			{"what is normalization", "explain database normalization"},
			{"데이터 마이닝의 정의", "데이터 마이닝 기법의 종류"},
			{"a", "b"},
			{"shared shared shared", "shared"},
		}
		for _, p := range pairs {
			got := Score(p[0], p[1])
			if got < 0.0 || got > 1.0 {
				t.Errorf("Score(%q, %q) = %v, out of [0, 1]", p[0], p[1], got)
			}
		}
	})

	t.Run("rephrased question stays above threshold", func(t *testing.T) {
		a := "다음 중 데이터베이스의 특징으로 옳지 않은 것은?"
		b := "다음 중 데이터베이스의 특징으로 옳은 것은?"
		if got := Score(a, b); got < Threshold {
			t.Errorf("Score = %v, want >= %v for near-duplicate", got, Threshold)
		}
	})

	t.Run("unrelated question stays below threshold", func(t *testing.T) {
		a := "다음 중 데이터베이스의 특징으로 옳지 않은 것은?"
		b := "빅데이터의 3V에 해당하지 않는 것은?"
		if got := Score(a, b); got >= Threshold {
			t.Errorf("Score = %v, want < %v for unrelated questions", got, Threshold)
		}
	})
}

func TestSelectNonDuplicates(t *testing.T) {
	t.Run("drops near-duplicates keeping first occurrence", func(t *testing.T) {
		candidates := []string{
			"다음 중 데이터베이스의 특징으로 옳지 않은 것은?",
			"빅데이터의 3V에 해당하지 않는 것은?",
			"다음 중 데이터베이스의 특징으로 옳은 것은?",
		}
		got := SelectNonDuplicates(candidates, Threshold, 0)
		want := []int{0, 1}
		if len(got) != len(want) {
			t.Fatalf("selected %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("selected %v, want %v", got, want)
				break
			}
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		candidates := []string{"alpha one", "beta two", "gamma three"}
		got := SelectNonDuplicates(candidates, Threshold, 2)
		if len(got) != 2 {
			t.Errorf("selected %d candidates, want 2", len(got))
		}
	})

	t.Run("selected set is pairwise below threshold", func(t *testing.T) {
		candidates := []string{
			"what is a primary key in a relational database",
			"what is a primary key in a relational model",
			"explain the concept of data mining",
			"describe the concept of data mining",
			"name the three v characteristics of big data",
		}
		got := SelectNonDuplicates(candidates, Threshold, 0)
		for i := 0; i < len(got); i++ {
			for j := i + 1; j < len(got); j++ {
				a, b := candidates[got[i]], candidates[got[j]]
				if s := Score(a, b); s >= Threshold {
					t.Errorf("selected pair (%q, %q) scores %v, want < %v", a, b, s, Threshold)
				}
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := SelectNonDuplicates(nil, Threshold, 0); len(got) != 0 {
			t.Errorf("selected %v from empty input", got)
		}
	})
}

func TestBestMatch(t *testing.T) {
	t.Run("empty pool", func(t *testing.T) {
		idx, score := BestMatch("anything", nil)
		if idx != -1 || score != 0.0 {
			t.Errorf("BestMatch on empty pool = (%d, %v), want (-1, 0)", idx, score)
		}
	})

	t.Run("picks closest entry", func(t *testing.T) {
		pool := []string{
			"빅데이터의 3V에 해당하지 않는 것은?",
			"다음 중 데이터베이스의 특징으로 옳지 않은 것은?",
		}
		idx, score := BestMatch("다음 중 데이터베이스의 특징으로 옳은 것은?", pool)
		if idx != 1 {
			t.Errorf("BestMatch index = %d, want 1", idx)
		}
		if score <= 0.0 {
			t.Errorf("BestMatch score = %v, want > 0", score)
		}
	})
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

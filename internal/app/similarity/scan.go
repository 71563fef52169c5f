package similarity

import (
	"context"
	"log"
	"runtime"
	"sort"
	"strings"

	"contest_judge/internal/domain/model"

	"golang.org/x/sync/errgroup"
)

type Pair struct {
	A, B   model.Submission
	Result Result
}

type candidate struct {
	order int
	a, b  int
}

// Scan compares every pair of submissions to the same question by different users
// and returns the ones at or above threshold, most similar first.
func Scan(ctx context.Context, subs []model.Submission, threshold float64, parallelism int) ([]Pair, error) {
	var cands []candidate
	for i := 0; i < len(subs); i++ {
		for j := i + 1; j < len(subs); j++ {
			a, b := subs[i], subs[j]
			if a.QuestionID != b.QuestionID || a.UserID == b.UserID {
				continue
			}
			if strings.TrimSpace(a.Code) == "" || strings.TrimSpace(b.Code) == "" {
				log.Printf("WARN: skipping pair %s/%s with empty code", a.ID, b.ID)
				continue
			}
			cands = append(cands, candidate{order: len(cands), a: i, b: j})
		}
	}

	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	results := make([]Result, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, c := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[c.order] = Compare(subs[c.a].Code, subs[c.b].Code)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []Pair
	for _, c := range cands {
		if r := results[c.order]; r.Overall >= threshold {
			pairs = append(pairs, Pair{A: subs[c.a], B: subs[c.b], Result: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Result.Overall > pairs[j].Result.Overall
	})
	return pairs, nil
}

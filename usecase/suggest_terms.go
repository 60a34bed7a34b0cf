package usecase

import (
	"context"
	"strings"

	"catalog-search/domain"
	"catalog-search/port"
	"catalog-search/vocab"
)

const defaultSuggestLimit = 10

// SuggestTermsUsecase resolves fuzzy term suggestions from either the local
// trigram vocabulary or the mirror engine's typo-tolerant matcher. The two
// sources use different similarity models; scores are comparable only
// within one source.
type SuggestTermsUsecase struct {
	vocabulary *vocab.Engine
	mirror     port.MirrorEngine
}

func NewSuggestTermsUsecase(vocabulary *vocab.Engine, mirror port.MirrorEngine) *SuggestTermsUsecase {
	return &SuggestTermsUsecase{vocabulary: vocabulary, mirror: mirror}
}

func (u *SuggestTermsUsecase) Execute(ctx context.Context, term string, limit int, source domain.Source) ([]domain.Suggestion, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, &domain.ValidationError{Field: "term", Msg: "term must not be empty"}
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	if source == domain.SourceMirror {
		return u.mirror.SuggestTerms(ctx, term, limit)
	}
	return u.vocabulary.Suggest(term, 0, limit), nil
}

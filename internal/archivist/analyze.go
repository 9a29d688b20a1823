package archivist

import (
	"context"

	"github.com/dmitrijs2005/archivist/internal/anonymize"
	"github.com/dmitrijs2005/archivist/internal/metrics"
	"github.com/dmitrijs2005/archivist/internal/models"
	"github.com/dmitrijs2005/archivist/internal/scoring"
)

// HighlightPoints are awarded to the author of every highlight.
const HighlightPoints = 10

// UnknownChannelType labels messages whose adapter sent no channel type.
const UnknownChannelType = "unknown"

// Message is an inbound chat message as delivered by an adapter.
type Message struct {
	AuthorID    string `json:"author_id"`
	AuthorIsBot bool   `json:"author_is_bot"`
	Content     string `json:"content"`
	ChannelType string `json:"channel_type"`
	Reactions   int    `json:"reactions"`
}

type AnalyzeOptions struct {
	// BypassConsent analyzes and archives even without an opt-in.
	BypassConsent bool
}

// AnalysisResult is returned to the adapter and is never stored as is;
// Keywords in particular are computed from the raw text.
type AnalysisResult struct {
	HighlightScore float64  `json:"highlight_score"`
	IsHighlight    bool     `json:"is_highlight"`
	SentimentScore float64  `json:"sentiment_score"`
	ReactionCount  int      `json:"reaction_count"`
	Keywords       []string `json:"keywords"`
	// ArchiveID is the id of the stored row, zero when nothing was stored.
	ArchiveID int64 `json:"archive_id,omitempty"`
}

// NeutralResult is returned when a message is not analyzed.
func NeutralResult() AnalysisResult {
	return AnalysisResult{Keywords: []string{}}
}

// Analyze scores msg and archives an anonymized copy of it. Without consent
// (unless bypassed) or without content the neutral result is returned and
// storage is not touched. Consent is checked before the content is looked
// at.
func (s *Service) Analyze(ctx context.Context, msg Message, opts AnalyzeOptions) (AnalysisResult, error) {
	if !opts.BypassConsent {
		state, err := s.gate.Check(ctx, msg.AuthorID)
		if err != nil {
			metrics.MessagesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			return NeutralResult(), s.storageError("check_consent", err)
		}
		if !state.Allowed() {
			metrics.MessagesTotal.WithLabelValues(metrics.OutcomeNoConsent).Inc()
			return NeutralResult(), nil
		}
	}

	if msg.Content == "" {
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return NeutralResult(), nil
	}

	reactions := max(msg.Reactions, 0)
	res := s.scorer.Score(scoring.FeaturesFor(msg.Content, reactions))

	channelType := msg.ChannelType
	if channelType == "" {
		channelType = UnknownChannelType
	}

	h := &models.Highlight{
		HashedAuthorID:    s.hasher.Hash(msg.AuthorID),
		ChannelType:       channelType,
		AnonymizedContent: anonymize.Anonymize(msg.Content),
		SentimentScore:    res.SentimentScore,
		ReactionCount:     reactions,
		IsHighlight:       res.IsHighlight,
		CreatedAt:         s.clock.Now().UTC(),
	}

	id, err := s.repomanager.Highlights(s.db).Insert(ctx, h)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return NeutralResult(), s.storageError("insert_highlight", err)
	}

	metrics.MessagesTotal.WithLabelValues(metrics.OutcomeArchived).Inc()
	metrics.HighlightScore.Observe(res.HighlightScore)
	if res.IsHighlight {
		metrics.HighlightsTotal.Inc()
	}

	s.log.Debug(ctx, "message archived",
		"id", id,
		"channel_type", channelType,
		"score", res.HighlightScore,
		"highlight", res.IsHighlight,
	)

	return AnalysisResult{
		HighlightScore: res.HighlightScore,
		IsHighlight:    res.IsHighlight,
		SentimentScore: res.SentimentScore,
		ReactionCount:  reactions,
		Keywords:       res.Keywords,
		ArchiveID:      id,
	}, nil
}

// HandleMessage is the adapter entry point for live traffic: bot messages
// are ignored, everything else is analyzed and highlights earn their author
// HighlightPoints.
func (s *Service) HandleMessage(ctx context.Context, msg Message) (AnalysisResult, error) {
	if msg.AuthorIsBot || msg.AuthorID == "" {
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeBot).Inc()
		return NeutralResult(), nil
	}

	res, err := s.Analyze(ctx, msg, AnalyzeOptions{})
	if err != nil {
		return res, err
	}

	if res.IsHighlight {
		if _, err := s.AddPoints(ctx, msg.AuthorID, HighlightPoints, PointsOptions{IncrementHighlights: true}); err != nil {
			return res, err
		}
		s.log.Info(ctx, "highlight recorded", "id", res.ArchiveID, "score", res.HighlightScore)
	}
	return res, nil
}

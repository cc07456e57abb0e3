// Package extract turns scraped articles into structured event records via
// an LLM. The model's almost-JSON output is repaired, validated against the
// article text, and normalized into entity.EventData.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"event-scraper/internal/domain/entity"
	"event-scraper/internal/infra/llm"
	"event-scraper/internal/observability/metrics"
)

// Generation parameters for the extraction call. Low temperature keeps the
// model close to the article text.
const (
	extractionMaxTokens   = 500
	extractionTemperature = 0.2
	defaultConfidence     = 0.75
	minConfidence         = 0.3
)

// violenceKeywords must appear in the title or content opening for a violent
// event type to survive validation.
var violenceKeywords = []string{
	"bomb", "explosion", "attack", "shoot", "terror", "killed",
	"dead", "casualt", "injur", "blast", "kidnap", "abduct",
}

// violentTypeStrings are the raw event type values subject to the violence
// mismatch check.
var violentTypeStrings = map[string]bool{
	"bombing":            true,
	"explosion":          true,
	"attack":             true,
	"shooting":           true,
	"terrorist_activity": true,
	"kidnapping":         true,
}

// EntityHinter produces named-entity hints to steer the prompt.
type EntityHinter interface {
	Extract(title, content string) entity.Entities
}

// Extractor runs LLM event extraction over articles.
type Extractor struct {
	client llm.Client
	hinter EntityHinter
	logger *slog.Logger
}

// New creates an Extractor. hinter may be nil to skip entity hints.
func New(client llm.Client, hinter EntityHinter, logger *slog.Logger) *Extractor {
	return &Extractor{
		client: client,
		hinter: hinter,
		logger: logger,
	}
}

// ExtractEvent extracts an event from one article. A nil event with a nil
// error means the article was deliberately skipped (unreadable content, no
// extractable event, or confidence below threshold); a non-nil error means
// the LLM call itself failed.
func (x *Extractor) ExtractEvent(ctx context.Context, article entity.ArticleContent) (*entity.EventData, error) {
	logger := x.logger.With(slog.String("url", article.URL))

	content, ok := x.gateContent(article.Content, logger)
	if !ok {
		metrics.RecordArticleSkipped("low_quality")
		return nil, nil
	}

	var hints entity.Entities
	if x.hinter != nil {
		hints = x.hinter.Extract(article.Title, content)
	}

	prompt := buildPrompt(article.Title, content, hints)
	response, err := x.client.Generate(ctx, prompt, llm.Options{
		MaxTokens:   extractionMaxTokens,
		Temperature: extractionTemperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordArticleSkipped("timeout")
		} else {
			metrics.RecordArticleSkipped("llm_error")
		}
		return nil, fmt.Errorf("llm extraction: %w", err)
	}

	parsed, err := parseResponse(response)
	if err != nil {
		logger.Warn("unparseable llm response",
			slog.Int("response_length", len(response)),
			slog.Any("error", err))
		metrics.RecordArticleSkipped("llm_error")
		return nil, nil
	}

	// Some models answer with an explicit no-event indicator
	if truthy(parsed["error"]) || truthy(parsed["no_event"]) {
		logger.Debug("llm reported no extractable event")
		metrics.RecordArticleSkipped("no_event")
		return nil, nil
	}

	x.applyViolenceGuard(parsed, article.Title, content, logger)

	confidence := defaultConfidence
	if raw, ok := asFloat(parsed["confidence"]); ok {
		confidence = raw
	}
	if confidence < minConfidence {
		logger.Debug("extraction rejected, confidence too low",
			slog.Float64("confidence", confidence))
		metrics.RecordArticleSkipped("low_confidence")
		return nil, nil
	}

	event := x.buildEvent(parsed, article, content, confidence, hints)
	metrics.RecordArticleExtracted()

	logger.Info("event extracted",
		slog.String("event_type", event.EventType.String()),
		slog.Float64("confidence", event.Confidence))
	return event, nil
}

// gateContent checks that the article body is readable enough to spend an
// LLM call on. Marginal content is scrubbed of non-printable characters;
// badly corrupted content is skipped outright.
func (x *Extractor) gateContent(content string, logger *slog.Logger) (string, bool) {
	if content == "" {
		return "", false
	}

	sample := cutHead(content, 1000)
	readable := 0
	total := 0
	for _, r := range sample {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(`.,!?;:()-"'`, r) {
			readable++
		}
	}
	if total == 0 {
		return "", false
	}

	ratio := float64(readable) / float64(total)
	if ratio < 0.30 {
		logger.Warn("content quality too low for extraction",
			slog.Float64("readable_ratio", ratio))
		return "", false
	}
	if ratio < 0.50 {
		logger.Warn("content quality marginal, scrubbing",
			slog.Float64("readable_ratio", ratio))
		var b strings.Builder
		b.Grow(len(content))
		for _, r := range content {
			if unicode.IsPrint(r) || unicode.IsSpace(r) {
				b.WriteRune(r)
			}
		}
		content = b.String()
	}
	return content, true
}

// applyViolenceGuard downgrades violent event types to "other" when neither
// the title nor the content opening mentions violence, clearing perpetrator
// and casualty fields that no longer make sense.
func (x *Extractor) applyViolenceGuard(parsed map[string]any, title, content string, logger *slog.Logger) {
	eventType := strings.ToLower(asString(parsed["event_type"]))
	if !violentTypeStrings[eventType] {
		return
	}

	opening := content
	if len(opening) > 1000 {
		opening = opening[:1000]
	}
	haystack := strings.ToLower(title) + " " + strings.ToLower(opening)

	for _, kw := range violenceKeywords {
		if strings.Contains(haystack, kw) {
			return
		}
	}

	logger.Warn("violent event type without violence mentions, downgrading",
		slog.String("event_type", eventType))
	parsed["event_type"] = "other"
	parsed["perpetrator"] = nil
	parsed["perpetrator_type"] = nil
	parsed["casualties"] = nil
}

// buildEvent maps the repaired JSON onto the event record, filling gaps from
// the article metadata.
func (x *Extractor) buildEvent(parsed map[string]any, article entity.ArticleContent, content string, confidence float64, hints entity.Entities) *entity.EventData {
	summary := asString(parsed["summary"])
	if summary == "" {
		summary = asString(parsed["description"])
	}

	location := entity.Location{}
	if locData, ok := parsed["location"].(map[string]any); ok {
		location.City = joinedString(locData["city"])
		location.Region = asString(locData["region"])
		if location.Region == "" {
			location.Region = asString(locData["state"])
		}
		location.Country = joinedString(locData["country"])
		location.Venue = asString(locData["venue"])
	}

	var eventDate *time.Time
	if raw := asString(parsed["event_date"]); raw != "" {
		if t, err := entity.ParseDate(raw); err == nil {
			eventDate = &t
		} else {
			x.logger.Debug("unparseable event date", slog.String("value", raw))
		}
	}
	if eventDate == nil {
		eventDate = article.PublishedDate
	}

	participants := entity.MergeUnique(
		asStringSlice(parsed["individuals"]), capList(hints.Persons, 10)...)
	organizations := entity.MergeUnique(
		asStringSlice(parsed["organizations"]), capList(hints.Organizations, 10)...)

	var casualties *entity.Casualties
	if casData, ok := parsed["casualties"].(map[string]any); ok {
		c := entity.Casualties{
			Killed:  asIntPtr(casData["killed"]),
			Injured: asIntPtr(casData["injured"]),
		}
		// An explicit zero is information; a missing dict is not.
		if c.Killed != nil || c.Injured != nil {
			casualties = &c
		}
	}

	sourceName := article.SourceName
	if sourceName == "" {
		sourceName = sourceNameFromURL(article.URL)
	}

	articleDate := article.PublishedDate
	if articleDate == nil {
		articleDate = eventDate
	}

	// A perpetrator type is only meaningful when the model stated one;
	// folding an absent field into "unknown" would mislabel peaceful events.
	var perpType entity.PerpetratorType
	if raw := asString(parsed["perpetrator_type"]); raw != "" {
		perpType = entity.ParsePerpetratorType(raw)
	}

	event := &entity.EventData{
		EventType:    entity.ParseEventType(asString(parsed["event_type"])),
		EventSubType: asString(parsed["event_sub_type"]),
		Title:        article.Title,
		Summary:      summary,
		Confidence:   confidence,
		Perpetrator:  asString(parsed["perpetrator"]),
		PerpType:     perpType,

		Location:      location,
		Casualties:    casualties,
		Participants:  participants,
		Organizations: organizations,

		EventDate:            eventDate,
		EventTime:            asString(parsed["event_time"]),
		SourceName:           sourceName,
		SourceURL:            article.URL,
		ArticlePublishedDate: articleDate,
		Impact:               summary,
		FullContent:          content,

		CollectionTimestamp: time.Now().UTC(),
	}
	event.ClampConfidence()
	return event
}

func capList(list []string, limit int) []string {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}

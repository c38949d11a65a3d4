// Package panel implements the cross-view interaction services: the
// highlight coordinator that keeps document highlights and card navigation
// in lockstep, swipe gesture recognition, and document change detection.
package panel

import (
	"github.com/docsight/docsight/internal/domain/analysis"
	"github.com/docsight/docsight/internal/domain/annotation"
)

// Collection names one navigable card collection.
type Collection string

const (
	CollectionInsights      Collection = "insights"
	CollectionRisks         Collection = "risks"
	CollectionStrengths     Collection = "swot-strengths"
	CollectionWeaknesses    Collection = "swot-weaknesses"
	CollectionOpportunities Collection = "swot-opportunities"
	CollectionThreats       Collection = "swot-threats"
)

// IsValid reports whether c names a known collection.
func (c Collection) IsValid() bool {
	switch c {
	case CollectionInsights, CollectionRisks,
		CollectionStrengths, CollectionWeaknesses,
		CollectionOpportunities, CollectionThreats:
		return true
	}
	return false
}

// Item is one navigable card.  AnnotationID is empty for collections whose
// items have no document highlight, such as the SWOT quadrants.
type Item struct {
	AnnotationID string `json:"annotation_id,omitempty"`
	Text         string `json:"text"`
}

// BuildCollections derives the card collections for a document from its
// annotations and analysis payload.  Insight and risk cards are backed by
// annotations; SWOT quadrant cards are text-only.
func BuildCollections(payload *analysis.Payload, anns []annotation.Annotation) map[Collection][]Item {
	out := map[Collection][]Item{
		CollectionInsights: {},
		CollectionRisks:    {},
	}
	for _, a := range anns {
		item := Item{AnnotationID: a.ID, Text: a.DisplayText}
		switch a.Kind {
		case annotation.KindInsight:
			out[CollectionInsights] = append(out[CollectionInsights], item)
		case annotation.KindRisk:
			out[CollectionRisks] = append(out[CollectionRisks], item)
		}
	}
	if payload != nil {
		out[CollectionStrengths] = textItems(payload.SWOT.Strengths)
		out[CollectionWeaknesses] = textItems(payload.SWOT.Weaknesses)
		out[CollectionOpportunities] = textItems(payload.SWOT.Opportunities)
		out[CollectionThreats] = textItems(payload.SWOT.Threats)
	}
	return out
}

func textItems(texts []string) []Item {
	items := make([]Item, 0, len(texts))
	for _, t := range texts {
		items = append(items, Item{Text: t})
	}
	return items
}

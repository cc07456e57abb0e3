package extract

import (
	"strings"
	"unicode/utf8"

	"event-scraper/internal/domain/entity"
)

// Content truncation bounds. Long articles keep their opening (context) and
// closing (conclusion) sections; the middle is elided.
const (
	promptMaxContent   = 2000
	promptHeadContent  = 1500
	promptTailContent  = 500
	promptMaxHintNames = 10
)

// buildPrompt assembles the extraction prompt: article text, optional entity
// hints, then the fixed instruction block with few-shot examples.
func buildPrompt(title, content string, hints entity.Entities) string {
	truncated := content
	if len(content) > promptMaxContent {
		truncated = cutHead(content, promptHeadContent) + "\n...\n" + cutTail(content, promptTailContent)
	}

	var b strings.Builder
	b.WriteString("You are a military intelligence analyst extracting structured event data from news articles.\n\n")
	b.WriteString("ARTICLE TITLE: ")
	b.WriteString(title)
	b.WriteString("\n\nARTICLE CONTENT:\n")
	b.WriteString(truncated)
	b.WriteString("\n\n")

	if !hints.IsEmpty() {
		b.WriteString("DETECTED ENTITIES:\n")
		if len(hints.Persons) > 0 {
			b.WriteString("- People: ")
			b.WriteString(joinCapped(hints.Persons, promptMaxHintNames))
			b.WriteString("\n")
		}
		if len(hints.Organizations) > 0 {
			b.WriteString("- Organizations: ")
			b.WriteString(joinCapped(hints.Organizations, promptMaxHintNames))
			b.WriteString("\n")
		}
		if len(hints.Locations) > 0 {
			b.WriteString("- Locations: ")
			b.WriteString(joinCapped(hints.Locations, promptMaxHintNames))
			b.WriteString("\n")
		}
		if len(hints.Dates) > 0 {
			b.WriteString("- Dates: ")
			b.WriteString(joinCapped(hints.Dates, promptMaxHintNames))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(extractionInstructions)
	return b.String()
}

func joinCapped(names []string, limit int) string {
	if len(names) > limit {
		names = names[:limit]
	}
	return strings.Join(names, ", ")
}

// cutHead returns the longest prefix of s within n bytes that ends on a
// rune boundary, so a multi-byte character is never split.
func cutHead(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// cutTail returns the longest suffix of s within n bytes that starts on a
// rune boundary.
func cutTail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}

const extractionInstructions = `EXTRACTION TASK:
Read the article carefully and extract ONLY information that is explicitly stated. Do NOT make up or assume information.

STEP 1: Determine the MAIN event type from this article
STEP 2: Extract ONLY facts that are clearly stated in the article
STEP 3: Use null for ANY field where information is not explicitly mentioned
STEP 4: Write a concise summary (3-4 sentences maximum, capturing the key points)

EVENT TYPES (choose the ONE that best matches THIS article):
- meeting, summit, conference: Diplomatic meetings, trade talks, official visits, state visits
- political_event, election: Political activities, campaigns, government actions
- bombing, explosion, shooting, attack: Violent incidents (ONLY if this article is about such an incident)
- terrorist_activity: Terror-related acts
- protest, demonstration, civil_unrest: Public protests or unrest
- natural_disaster, accident: Natural catastrophes or accidents
- cyber_attack, data_breach: Cyber security incidents
- kidnapping, theft: Crimes
- military_operation: Military actions
- other: If none of the above fit

CRITICAL RULES - READ CAREFULLY:
1. ONLY extract event_type that matches THIS article's main topic
2. Extract perpetrator/casualties if mentioned OR claimed in THIS article (including claims by groups)
3. Do NOT mix information from different articles or examples
4. If a field is not mentioned in the article, use null
5. Summary must be 3-4 sentences maximum, concise and factual
6. Perpetrator is for violent events where someone carried out or claimed an attack
7. Casualties: Extract if deaths/injuries are mentioned, claimed, or reported in THIS article
8. Location should be where THIS event takes place
9. Date should be when THIS event happened (not the article date)
10. If event doesn't clearly fit a category, use "other"
11. Individuals: List ONLY actual person names (e.g., "Narendra Modi", "Vladimir Putin") - exclude place names, abbreviations, or non-person entities

PERPETRATOR TYPES (ONLY if this is a violent attack with identified perpetrator):
- terrorist_group, state_actor, criminal_organization, individual, multiple_parties, unknown, not_applicable

INDIVIDUALS FIELD INSTRUCTIONS:
- Include ONLY actual human names (first name + last name or full names)
- EXCLUDE: Place names (Tamil Nadu, Tai Po), abbreviations (RADS, DMU), organization names, medical terms
- EXCLUDE: Single-word names without context (Kurnool, Vishnu without surname could be a place)
- Include: Political leaders, officials, victims with full names, witnesses with full names
- Examples of VALID individuals: "Narendra Modi", "Revanth Reddy", "Vladimir Putin", "M Lakshmaiah"
- Examples of INVALID (do not include): "Tamil Nadu", "RADS", "Kurnool", "Tai Po", "DMU"

EXAMPLE - Meeting/Summit Article:
{
    "event_type": "meeting",
    "event_sub_type": "bilateral summit",
    "summary": "Russian President Putin visited India for the 23rd Russia-India Summit. He held talks with PM Modi focusing on economic cooperation and energy ties. The two leaders agreed to boost bilateral trade to $100 billion by 2030.",
    "perpetrator": null,
    "perpetrator_type": null,
    "location": {
        "city": "New Delhi",
        "region": null,
        "country": "India"
    },
    "event_date": "2025-12-05",
    "event_time": null,
    "individuals": ["Vladimir Putin", "Narendra Modi"],
    "organizations": ["Kremlin", "Indian Government"],
    "casualties": null,
    "confidence": 0.9
}

EXAMPLE - Attack Article:
{
    "event_type": "bombing",
    "event_sub_type": "suicide bombing",
    "summary": "A suicide bomber attacked a checkpoint in Kabul. The Islamic State claimed responsibility for the attack, claiming to have killed 20 people and injured 30. Taliban authorities disputed the casualty figures.",
    "perpetrator": "Islamic State",
    "perpetrator_type": "terrorist_group",
    "location": {
        "city": "Kabul",
        "region": null,
        "country": "Afghanistan"
    },
    "event_date": "2023-01-01",
    "event_time": null,
    "individuals": [],
    "organizations": ["Islamic State", "Taliban"],
    "casualties": {
        "killed": 20,
        "injured": 30
    },
    "confidence": 0.85
}

JSON FORMATTING RULES:
- Output ONLY valid JSON - no explanations before or after
- Use null for missing/unavailable information
- All strings in double quotes
- Numbers without quotes
- event_date format: YYYY-MM-DD (null if not mentioned)
- confidence: 0.9+ very clear, 0.7-0.9 mostly clear, 0.5-0.7 uncertain, <0.5 very uncertain

JSON OUTPUT (extract from THIS article):`

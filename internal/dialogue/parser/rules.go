package parser

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"drivethru-dialogue/internal/models"
)

// Rule-based strategies parse with lexicons and light pattern matching.
// They always succeed and run with full confidence since the intent was
// already classified upstream.
const ruleConfidence = 1.0

var (
	lineRefPattern  = regexp.MustCompile(`(?i)\bline\s*#?\s*(\d+)`)
	quantityPattern = regexp.MustCompile(`\b(\d+)\b`)
)

var quantityWords = map[string]int{
	"one": 1, "a": 1, "an": 1,
	"two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"dozen": 12,
}

func newDescriptor(intent models.IntentType, utterance string, slots map[string]interface{}) models.CommandDescriptor {
	slots[models.SlotRawInput] = utterance
	return models.CommandDescriptor{
		Intent:     intent,
		Confidence: ruleConfidence,
		Slots:      slots,
		UserInput:  utterance,
	}
}

// extractLineRef finds an explicit "line N" reference or a positional cue
// ("last", "first"). Empty string means the utterance names no target.
func extractLineRef(utterance string) string {
	if m := lineRefPattern.FindStringSubmatch(utterance); m != nil {
		return "line:" + m[1]
	}
	lower := strings.ToLower(utterance)
	switch {
	case strings.Contains(lower, "last"):
		return "last_item"
	case strings.Contains(lower, "first"):
		return "line:1"
	}
	return ""
}

// extractQuantity pulls the first numeric or spelled-out quantity. Zero
// means none was found.
func extractQuantity(utterance string) int {
	if m := quantityPattern.FindStringSubmatch(utterance); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	for _, word := range strings.Fields(strings.ToLower(utterance)) {
		if n, ok := quantityWords[strings.Trim(word, ".,!?")]; ok {
			return n
		}
	}
	return 0
}

// ===== CLEAR_ORDER =====

type clearOrderStrategy struct{}

func (s *clearOrderStrategy) Parse(_ context.Context, utterance string, _ models.SessionContext) ([]models.CommandDescriptor, error) {
	return []models.CommandDescriptor{
		newDescriptor(models.IntentClearOrder, utterance, map[string]interface{}{
			models.SlotScope: "full_order",
		}),
	}, nil
}

// ===== CONFIRM_ORDER =====

type confirmOrderStrategy struct{}

func (s *confirmOrderStrategy) Parse(_ context.Context, utterance string, _ models.SessionContext) ([]models.CommandDescriptor, error) {
	return []models.CommandDescriptor{
		newDescriptor(models.IntentConfirmOrder, utterance, map[string]interface{}{}),
	}, nil
}

// ===== REPEAT =====

type repeatStrategy struct{}

func (s *repeatStrategy) Parse(_ context.Context, utterance string, _ models.SessionContext) ([]models.CommandDescriptor, error) {
	slots := map[string]interface{}{models.SlotScope: "full_order"}
	if ref := extractLineRef(utterance); ref != "" {
		if ref == "last_item" {
			slots[models.SlotScope] = "last_item"
		} else {
			slots[models.SlotScope] = "line"
			slots[models.SlotTargetRef] = ref
		}
	}
	return []models.CommandDescriptor{
		newDescriptor(models.IntentRepeat, utterance, slots),
	}, nil
}

// ===== QUESTION =====

// questionBuckets keyword lists decide the question category, checked in
// order. First bucket with a hit wins; no hit means "general".
var questionBuckets = []struct {
	category string
	keywords []string
}{
	{"pricing", []string{"price", "cost", "how much", "dollar", "expensive", "cheap"}},
	{"hours", []string{"open", "close", "hours", "what time", "until when"}},
	{"location", []string{"where", "location", "address", "directions", "near"}},
	{"ingredients", []string{"ingredient", "contain", "allerg", "gluten", "dairy", "nut", "vegan", "vegetarian", "calorie"}},
	{"menu", []string{"menu", "have", "options", "serve", "sell", "offer", "available"}},
}

type questionStrategy struct{}

func (s *questionStrategy) Parse(_ context.Context, utterance string, _ models.SessionContext) ([]models.CommandDescriptor, error) {
	lower := strings.ToLower(utterance)
	category := "general"
	for _, bucket := range questionBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				category = bucket.category
				break
			}
		}
		if category != "general" {
			break
		}
	}
	return []models.CommandDescriptor{
		newDescriptor(models.IntentQuestion, utterance, map[string]interface{}{
			models.SlotQuestion: utterance,
			models.SlotCategory: category,
		}),
	}, nil
}

// ===== SMALL_TALK =====

var smallTalkLexicons = []struct {
	responseType string
	keywords     []string
}{
	{"greeting", []string{"hello", "hi ", "hi!", "hey", "good morning", "good afternoon", "good evening", "howdy"}},
	{"thanks", []string{"thank", "thanks", "appreciate"}},
	{"goodbye", []string{"bye", "goodbye", "see you", "later", "take care"}},
	{"compliment", []string{"great", "awesome", "delicious", "love", "amazing", "best"}},
}

type smallTalkStrategy struct{}

func (s *smallTalkStrategy) Parse(_ context.Context, utterance string, _ models.SessionContext) ([]models.CommandDescriptor, error) {
	lower := strings.ToLower(utterance)
	responseType := "chitchat"
	for _, lex := range smallTalkLexicons {
		for _, kw := range lex.keywords {
			if strings.Contains(lower, kw) {
				responseType = lex.responseType
				break
			}
		}
		if responseType != "chitchat" {
			break
		}
	}
	return []models.CommandDescriptor{
		newDescriptor(models.IntentSmallTalk, utterance, map[string]interface{}{
			models.SlotResponseType: responseType,
		}),
	}, nil
}

// ===== UNKNOWN =====

type unknownStrategy struct{}

func (s *unknownStrategy) Parse(_ context.Context, utterance string, _ models.SessionContext) ([]models.CommandDescriptor, error) {
	return []models.CommandDescriptor{
		newDescriptor(models.IntentUnknown, utterance, map[string]interface{}{}),
	}, nil
}

// ===== MODIFY_ITEM / SET_QUANTITY =====

// lineTargetStrategy covers the intents that reference an existing order
// line, optionally with a new quantity. A missing target defaults to the
// most recent line, matching how customers actually speak.
type lineTargetStrategy struct {
	intent models.IntentType
}

func (s *lineTargetStrategy) Parse(_ context.Context, utterance string, _ models.SessionContext) ([]models.CommandDescriptor, error) {
	slots := map[string]interface{}{}

	ref := extractLineRef(utterance)
	if ref == "" {
		ref = "last_item"
	}
	slots[models.SlotTargetRef] = ref

	// Strip the line reference first so its number is not mistaken for a
	// quantity ("set line 2 to 3" means qty 3, not 2).
	remainder := lineRefPattern.ReplaceAllString(utterance, "")
	if qty := extractQuantity(remainder); qty > 0 {
		slots[models.SlotQuantity] = qty
	}

	return []models.CommandDescriptor{
		newDescriptor(s.intent, utterance, slots),
	}, nil
}

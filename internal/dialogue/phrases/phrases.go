// Package phrases holds the canned response catalog. A canned response is
// selected by key and needs no dynamic text generation.
package phrases

import "strings"

// Key identifies one canned phrase.
type Key string

const (
	Greeting              Key = "GREETING"
	ComeAgain             Key = "COME_AGAIN"
	DidntUnderstand       Key = "DIDNT_UNDERSTAND"
	ThankYou              Key = "THANK_YOU"
	WelcomeMenu           Key = "WELCOME_MENU"
	ContinueOrdering      Key = "CONTINUE_ORDERING"
	HowCanIHelp           Key = "HOW_CAN_I_HELP"
	OrderSummary          Key = "ORDER_SUMMARY"
	OrderComplete         Key = "ORDER_COMPLETE"
	OrderRepeat           Key = "ORDER_REPEAT"
	NothingToRepeat       Key = "NOTHING_TO_REPEAT"
	NoOrderYet            Key = "NO_ORDER_YET"
	AddItemsFirst         Key = "ADD_ITEMS_FIRST"
	OrderBeingPrepared    Key = "ORDER_BEING_PREPARED"
	OrderAlreadyConfirmed Key = "ORDER_ALREADY_CONFIRMED"
	SystemErrorRetry      Key = "SYSTEM_ERROR_RETRY"
	Upsell                Key = "UPSELL"
	ItemAddedSuccess      Key = "ITEM_ADDED_SUCCESS"
	ItemRemovedSuccess    Key = "ITEM_REMOVED_SUCCESS"
	ItemUpdatedSuccess    Key = "ITEM_UPDATED_SUCCESS"
	OrderClearedSuccess   Key = "ORDER_CLEARED_SUCCESS"
)

// The {restaurant} placeholder is substituted at render time.
var texts = map[Key]string{
	Greeting:              "Welcome to {restaurant}, may I take your order?",
	ComeAgain:             "I'm sorry, I didn't catch that. Could you please repeat your order?",
	DidntUnderstand:       "I'm sorry, I didn't understand. Could you please try again?",
	ThankYou:              "Thank you! Please pull forward to the window.",
	WelcomeMenu:           "Welcome to {restaurant}! Take your time looking at our menu, and let me know when you're ready.",
	ContinueOrdering:      "Happy to help! What else can I get for you?",
	HowCanIHelp:           "How can I help you?",
	OrderSummary:          "Here's what I have so far. Is that correct?",
	OrderComplete:         "Perfect! Your order is ready. Please pull forward.",
	OrderRepeat:           "Sure, let me repeat your order.",
	NothingToRepeat:       "There's nothing to repeat yet.",
	NoOrderYet:            "You don't have an order yet. What would you like?",
	AddItemsFirst:         "Let's add some items to your order first.",
	OrderBeingPrepared:    "Your order is already being prepared.",
	OrderAlreadyConfirmed: "Your order has already been confirmed.",
	SystemErrorRetry:      "I'm sorry, I'm having some technical difficulties. Please try again.",
	Upsell:                "Would you like anything else?",
	ItemAddedSuccess:      "Added that to your order. Would you like anything else?",
	ItemRemovedSuccess:    "Removed that from your order. Would you like anything else?",
	ItemUpdatedSuccess:    "Updated your item. Would you like anything else?",
	OrderClearedSuccess:   "Your order has been cleared.",
}

// Text resolves a key to its phrase text, substituting the restaurant name.
// Unknown keys map to the generic fallback so the caller always gets a
// non-empty response.
func Text(key Key, restaurantName string) string {
	text, ok := texts[key]
	if !ok {
		text = texts[DidntUnderstand]
	}
	if restaurantName == "" {
		restaurantName = "our restaurant"
	}
	return strings.ReplaceAll(text, "{restaurant}", restaurantName)
}

// AllKeys returns every defined phrase key.
func AllKeys() []Key {
	keys := make([]Key, 0, len(texts))
	for k := range texts {
		keys = append(keys, k)
	}
	return keys
}

package phrases

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_SubstitutesRestaurantName(t *testing.T) {
	text := Text(Greeting, "Burger Drive")
	assert.Equal(t, "Welcome to Burger Drive, may I take your order?", text)
}

func TestText_EmptyRestaurantNameHasFallback(t *testing.T) {
	text := Text(WelcomeMenu, "")
	assert.Contains(t, text, "our restaurant")
	assert.NotContains(t, text, "{restaurant}")
}

func TestText_UnknownKeyFallsBack(t *testing.T) {
	text := Text(Key("NO_SUCH_PHRASE"), "Burger Drive")
	assert.Equal(t, "I'm sorry, I didn't understand. Could you please try again?", text)
}

func TestText_NeverEmpty(t *testing.T) {
	for _, key := range AllKeys() {
		text := Text(key, "Burger Drive")
		assert.NotEmpty(t, text, "key %s", key)
		assert.False(t, strings.Contains(text, "{restaurant}"), "key %s leaked its placeholder", key)
	}
}

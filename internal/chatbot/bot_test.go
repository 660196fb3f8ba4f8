package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedIntn(i int) func(int) int { return func(int) int { return i } }

func TestHorarioAnyCasing(t *testing.T) {
	b := New(DefaultKnowledge(), fixedIntn(0))

	for _, msg := range []string{
		"horario",
		"¿Cuál es su HORARIO de atención?",
		"hola, qué Horarios tienen los sábados",
		"quería saber el horario!!",
	} {
		r := b.Reply(msg)
		assert.Equal(t, "horarios", r.Topic, msg)
		assert.Contains(t, r.Text, "Lunes a Sábado de 08:00 a 20:00 hs", msg)
	}
}

func TestFirstTopicWins(t *testing.T) {
	b := New(DefaultKnowledge(), fixedIntn(0))

	// "usado" belongs to the first topic even though "precio" also matches.
	assert.Equal(t, "nuevo-usado", b.Reply("precio de un casco usado").Topic)
	assert.Equal(t, "precios", b.Reply("¿Cuánto cuesta?").Topic)
	assert.Equal(t, "pagos", b.Reply("aceptan Mercado Pago").Topic)
	assert.Equal(t, "envios", b.Reply("envían con via cargo?").Topic)
}

func TestShortKeywordsMatchWholeWords(t *testing.T) {
	b := New(DefaultKnowledge(), fixedIntn(0))

	assert.Equal(t, "tallas", b.Reply("tienen en XL?").Topic)
	assert.Equal(t, "tallas", b.Reply("busco uno talle m").Topic)
	assert.Empty(t, b.Reply("buenas tardes").Topic, "letters inside words are not sizes")
}

func TestDefaultReplyUsesInjectedRandom(t *testing.T) {
	kb := DefaultKnowledge()
	require.Len(t, kb.Defaults, 4)

	for i := range kb.Defaults {
		b := New(kb, fixedIntn(i))
		r := b.Reply("qwerty")
		assert.Empty(t, r.Topic)
		assert.Equal(t, kb.Defaults[i], r.Text)
	}

	b := New(kb, fixedIntn(99))
	assert.Equal(t, kb.Defaults[0], b.Reply("qwerty").Text, "out of range picks fall back")
}

func TestSuggest(t *testing.T) {
	b := New(DefaultKnowledge(), nil)

	r, ok := b.Suggest("envios")
	require.True(t, ok)
	assert.Contains(t, r.Text, "Andreani")
	assert.NotEmpty(t, b.Label("envios"))

	_, ok = b.Suggest("nope")
	assert.False(t, ok)

	keys := make([]string, 0, 8)
	for _, tp := range b.Topics() {
		keys = append(keys, tp.Key)
	}
	assert.Equal(t, []string{"nuevo-usado", "tallas", "horarios", "envios", "marcas", "productos", "precios", "pagos"}, keys)
}

func TestParseKnowledgeRejectsBadTables(t *testing.T) {
	_, err := ParseKnowledge([]byte("topics: []\n"))
	assert.Error(t, err)

	_, err = ParseKnowledge([]byte("topics:\n  - key: a\n    response: x\n  - key: a\n    response: y\ndefaults: [hi]\n"))
	assert.Error(t, err)

	kb, err := ParseKnowledge([]byte("topics:\n  - key: a\n    keywords: [' HOLA ']\n    response: x\ndefaults: [hi]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hola"}, kb.Topics[0].Keywords)
}

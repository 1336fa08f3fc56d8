package domain

import "strings"

// PreviewPlaceholder is replaced by the preview text in Copy.WebPreview.
const PreviewPlaceholder = "{preview}"

// Copy holds every user-facing string the controller appends to the transcript.
type Copy struct {
	Disambiguation     string   `yaml:"disambiguation" mapstructure:"disambiguation"`
	WebPreview         string   `yaml:"web_preview" mapstructure:"web_preview"`
	WebNothingFound    string   `yaml:"web_nothing_found" mapstructure:"web_nothing_found"`
	WebSaved           string   `yaml:"web_saved" mapstructure:"web_saved"`
	WebSaveFailed      string   `yaml:"web_save_failed" mapstructure:"web_save_failed"`
	WebDeclined        string   `yaml:"web_declined" mapstructure:"web_declined"`
	ManualAnswerSaved  string   `yaml:"manual_answer_saved" mapstructure:"manual_answer_saved"`
	ManualAnswerFailed string   `yaml:"manual_answer_failed" mapstructure:"manual_answer_failed"`
	TransportFallback  string   `yaml:"transport_fallback" mapstructure:"transport_fallback"`
	OptionFallback     string   `yaml:"option_fallback" mapstructure:"option_fallback"`
	ConfirmFallback    string   `yaml:"confirm_fallback" mapstructure:"confirm_fallback"`
	EmptyQuestion      string   `yaml:"empty_question" mapstructure:"empty_question"`
	EmptyAnswer        string   `yaml:"empty_answer" mapstructure:"empty_answer"`
	Dismissed          string   `yaml:"dismissed" mapstructure:"dismissed"`
	JokeRequest        string   `yaml:"joke_request" mapstructure:"joke_request"`
	JokeMarkers        []string `yaml:"joke_markers" mapstructure:"joke_markers"`
}

// DefaultCopy returns the English copy.
func DefaultCopy() Copy {
	return Copy{
		Disambiguation:     "I don't have an answer for that. What would you like to do?",
		WebPreview:         "Found on the web: " + PreviewPlaceholder + ". Do you want to save this answer?",
		WebNothingFound:    "Nothing was found on the web.",
		WebSaved:           "Answer saved.",
		WebSaveFailed:      "The answer could not be saved.",
		WebDeclined:        "Okay, the answer was not saved.",
		ManualAnswerSaved:  "Thanks! I'll remember that.",
		ManualAnswerFailed: "Your answer could not be saved. Please try again.",
		TransportFallback:  "Error processing the message.",
		OptionFallback:     "Error processing the option.",
		ConfirmFallback:    "Error confirming the answer.",
		EmptyQuestion:      "Write a message",
		EmptyAnswer:        "Write an answer",
		Dismissed:          "Okay, let's move on.",
		JokeRequest:        "tell me another joke",
		JokeMarkers:        []string{"another joke?"},
	}
}

// SpanishCopy returns the copy used by the Spanish front-end.
func SpanishCopy() Copy {
	return Copy{
		Disambiguation:     "No tengo una respuesta para eso. ¿Qué quieres hacer?",
		WebPreview:         "Encontrado en la web: " + PreviewPlaceholder + ". ¿Quieres guardar esta respuesta?",
		WebNothingFound:    "No se encontró respuesta en la web",
		WebSaved:           "Respuesta guardada.",
		WebSaveFailed:      "No se pudo guardar la respuesta.",
		WebDeclined:        "De acuerdo, no se guardó la respuesta.",
		ManualAnswerSaved:  "¡Gracias! Lo recordaré.",
		ManualAnswerFailed: "No se pudo guardar tu respuesta. Intenta de nuevo.",
		TransportFallback:  "Error al procesar el mensaje",
		OptionFallback:     "Error al procesar la opción",
		ConfirmFallback:    "Error al confirmar la respuesta",
		EmptyQuestion:      "Escribe un mensaje",
		EmptyAnswer:        "Escribe una respuesta",
		Dismissed:          "De acuerdo, sigamos.",
		JokeRequest:        "cuéntame otro chiste",
		JokeMarkers:        []string{"¿quieres otro chiste?", "otro chiste?"},
	}
}

// CopyForLocale returns the preset for a locale, falling back to English.
func CopyForLocale(locale string) Copy {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "es", "es-es", "es_es", "spanish":
		return SpanishCopy()
	}
	return DefaultCopy()
}

// Merge returns c with every non-empty field of override applied on top.
func (c Copy) Merge(override Copy) Copy {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&c.Disambiguation, override.Disambiguation)
	pick(&c.WebPreview, override.WebPreview)
	pick(&c.WebNothingFound, override.WebNothingFound)
	pick(&c.WebSaved, override.WebSaved)
	pick(&c.WebSaveFailed, override.WebSaveFailed)
	pick(&c.WebDeclined, override.WebDeclined)
	pick(&c.ManualAnswerSaved, override.ManualAnswerSaved)
	pick(&c.ManualAnswerFailed, override.ManualAnswerFailed)
	pick(&c.TransportFallback, override.TransportFallback)
	pick(&c.OptionFallback, override.OptionFallback)
	pick(&c.ConfirmFallback, override.ConfirmFallback)
	pick(&c.EmptyQuestion, override.EmptyQuestion)
	pick(&c.EmptyAnswer, override.EmptyAnswer)
	pick(&c.Dismissed, override.Dismissed)
	pick(&c.JokeRequest, override.JokeRequest)
	if len(override.JokeMarkers) > 0 {
		c.JokeMarkers = append([]string(nil), override.JokeMarkers...)
	}
	return c
}

// FormatWebPreview renders the web preview prompt for preview.
func (c Copy) FormatWebPreview(preview string) string {
	if !strings.Contains(c.WebPreview, PreviewPlaceholder) {
		return c.WebPreview + " " + preview
	}
	return strings.ReplaceAll(c.WebPreview, PreviewPlaceholder, preview)
}

// IsJokeContinuation reports whether text invites the user to ask for another joke.
func (c Copy) IsJokeContinuation(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range c.JokeMarkers {
		m := strings.ToLower(strings.TrimSpace(marker))
		if m != "" && strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

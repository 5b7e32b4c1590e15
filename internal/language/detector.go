// Package language provides heuristic language identification for shopper
// messages.
package language

import (
	"regexp"
	"strings"
)

// Language is a two-letter language code supported by the engine.
type Language string

const (
	English    Language = "en"
	French     Language = "fr"
	Spanish    Language = "es"
	German     Language = "de"
	Portuguese Language = "pt"
	Italian    Language = "it"
)

// Supported lists every language the engine localizes, English first.
var Supported = []Language{English, French, Spanish, German, Portuguese, Italian}

// rule pairs a language with the pattern that identifies it. Rules are
// checked in order; the first match wins.
type rule struct {
	lang    Language
	pattern *regexp.Regexp
}

// Detector identifies the language of a message from keyword heuristics.
// Detection is intentionally cheap: no statistical model, just fixed word
// sets that are distinctive for each language in a shopping context.
type Detector struct {
	rules []rule
}

// NewDetector creates a detector with the built-in rule set. Priority order
// is French, Spanish, German, Portuguese, Italian; anything else is English.
func NewDetector() *Detector {
	return &Detector{
		rules: []rule{
			{French, regexp.MustCompile(`(?i)\b(bonjour|salut|merci|produits?|montrez|cherche|livraison|retour|prix|combien|je veux|vous avez|s'il vous pla[iî]t|acheter)\b`)},
			{Spanish, regexp.MustCompile(`(?i)\b(hola|gracias|productos?|busco|quiero|env[ií]o|devoluci[oó]n|precio|cu[aá]nto|tienen|mu[eé]strame|comprar|por favor)\b`)},
			{German, regexp.MustCompile(`(?i)\b(hallo|danke|produkte?|suche|ich m[oö]chte|versand|r[uü]ckgabe|preis|wie viel|haben sie|zeigen|kaufen|bitte)\b`)},
			{Portuguese, regexp.MustCompile(`(?i)\b(ol[aá]|obrigad[oa]|produtos?|procuro|quero|envio|devolu[cç][aã]o|pre[cç]o|quanto custa|voc[eê]s t[eê]m|mostre|comprar)\b`)},
			{Italian, regexp.MustCompile(`(?i)\b(ciao|grazie|prodotti|cerco|voglio|spedizione|reso|prezzo|quanto costa|avete|mostrami|comprare|per favore)\b`)},
		},
	}
}

// Detect identifies the language of message. An explicit locale hint always
// wins and short-circuits text heuristics.
func (d *Detector) Detect(message, localeHint string) Language {
	if lang, ok := FromLocale(localeHint); ok {
		return lang
	}

	for _, r := range d.rules {
		if r.pattern.MatchString(message) {
			return r.lang
		}
	}

	return English
}

// FromLocale maps a BCP 47 locale tag such as "fr-CA" to a supported
// language. Unknown or empty locales report ok=false.
func FromLocale(locale string) (Language, bool) {
	if locale == "" {
		return English, false
	}

	code := strings.ToLower(locale)
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}

	for _, lang := range Supported {
		if code == string(lang) {
			return lang, true
		}
	}

	return English, false
}

// IsSupported reports whether lang is one of the localized languages.
func IsSupported(lang Language) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

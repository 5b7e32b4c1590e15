// Package templates provides localized, policy-aware response templates for
// composed assistant messages.
package templates

import (
	"fmt"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/language"
)

// Key identifies one message template.
type Key string

const (
	// Recommendation tiers, chosen by the top relevance score.
	KeyExcellentMatch Key = "excellent_match"
	KeyGoodMatch      Key = "good_match"
	KeyPossibleMatch  Key = "possible_match"

	// Intent-specific replies used when no recommendations exist.
	KeyPrice        Key = "price"
	KeySize         Key = "size"
	KeySupport      Key = "support"
	KeyGreeting     Key = "greeting"
	KeyThanks       Key = "thanks"
	KeyComparison   Key = "comparison"
	KeyAvailability Key = "availability"
	KeyDefault      Key = "default"

	// Policy-aware replies. The intro keys are prepended to a truncated
	// policy preview; the missing keys are used when no policy text exists.
	KeyShippingIntro   Key = "shipping_intro"
	KeyShippingMissing Key = "shipping_missing"
	KeyReturnsIntro    Key = "returns_intro"
	KeyReturnsMissing  Key = "returns_missing"

	// Degenerate cases.
	KeyNoProducts      Key = "no_products"
	KeyMinimalGreeting Key = "minimal_greeting"
)

// allKeys is the completeness contract: every language must define every key.
var allKeys = []Key{
	KeyExcellentMatch, KeyGoodMatch, KeyPossibleMatch,
	KeyPrice, KeySize, KeySupport, KeyGreeting, KeyThanks,
	KeyComparison, KeyAvailability, KeyDefault,
	KeyShippingIntro, KeyShippingMissing, KeyReturnsIntro, KeyReturnsMissing,
	KeyNoProducts, KeyMinimalGreeting,
}

// Store resolves (language, key) pairs to message text. English is the
// mandatory fallback for any gap, but NewStore refuses incomplete tables so
// gaps only occur if a caller asks for an unsupported language.
type Store struct {
	messages map[language.Language]map[Key]string
}

// NewStore builds the template store and validates completeness across all
// supported languages.
func NewStore() (*Store, error) {
	s := &Store{messages: builtinMessages()}

	for _, lang := range language.Supported {
		table, ok := s.messages[lang]
		if !ok {
			return nil, fmt.Errorf("templates: language %q has no message table", lang)
		}
		for _, key := range allKeys {
			if _, ok := table[key]; !ok {
				return nil, fmt.Errorf("templates: language %q missing key %q", lang, key)
			}
		}
	}

	return s, nil
}

// MustNewStore is NewStore for wiring paths where the built-in tables are
// known complete.
func MustNewStore() *Store {
	s, err := NewStore()
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the template for (lang, key), falling back to English for
// unsupported languages.
func (s *Store) Lookup(lang language.Language, key Key) string {
	if table, ok := s.messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return s.messages[language.English][key]
}

// RecommendationKey picks the tiered phrasing for a top relevance score.
func RecommendationKey(topScore int) Key {
	switch {
	case topScore > 85:
		return KeyExcellentMatch
	case topScore > 70:
		return KeyGoodMatch
	default:
		return KeyPossibleMatch
	}
}

// QuickReplies derives quick reply chips from the response language and
// whether products were recommended.
func (s *Store) QuickReplies(lang language.Language, hasProducts bool) []string {
	table, ok := quickReplies[lang]
	if !ok {
		table = quickReplies[language.English]
	}
	if hasProducts {
		return append([]string(nil), table.withProducts...)
	}
	return append([]string(nil), table.withoutProducts...)
}

// SuggestedActions derives structured follow-up actions from the response
// language and whether products were recommended.
func (s *Store) SuggestedActions(lang language.Language, hasProducts bool) []Action {
	table, ok := quickReplies[lang]
	if !ok {
		table = quickReplies[language.English]
	}
	if hasProducts {
		return []Action{
			{Type: "view_products", Label: table.viewLabel},
			{Type: "ask_question", Label: table.askLabel},
		}
	}
	return []Action{
		{Type: "browse_catalog", Label: table.browseLabel},
		{Type: "contact_support", Label: table.contactLabel},
	}
}

// Action is a language-localized suggested action.
type Action struct {
	Type  string
	Label string
}

type replySet struct {
	withProducts    []string
	withoutProducts []string
	viewLabel       string
	askLabel        string
	browseLabel     string
	contactLabel    string
}

var quickReplies = map[language.Language]replySet{
	language.English: {
		withProducts:    []string{"Show me more", "Shipping info", "Something cheaper"},
		withoutProducts: []string{"Browse products", "Shipping info", "Talk to support"},
		viewLabel:       "View products",
		askLabel:        "Ask a question",
		browseLabel:     "Browse the catalog",
		contactLabel:    "Contact support",
	},
	language.French: {
		withProducts:    []string{"Montrez-m'en plus", "Infos livraison", "Moins cher"},
		withoutProducts: []string{"Parcourir les produits", "Infos livraison", "Contacter le support"},
		viewLabel:       "Voir les produits",
		askLabel:        "Poser une question",
		browseLabel:     "Parcourir le catalogue",
		contactLabel:    "Contacter le support",
	},
	language.Spanish: {
		withProducts:    []string{"Muéstrame más", "Información de envío", "Algo más barato"},
		withoutProducts: []string{"Ver productos", "Información de envío", "Hablar con soporte"},
		viewLabel:       "Ver productos",
		askLabel:        "Hacer una pregunta",
		browseLabel:     "Explorar el catálogo",
		contactLabel:    "Contactar soporte",
	},
	language.German: {
		withProducts:    []string{"Mehr anzeigen", "Versandinfos", "Etwas Günstigeres"},
		withoutProducts: []string{"Produkte durchsuchen", "Versandinfos", "Support kontaktieren"},
		viewLabel:       "Produkte ansehen",
		askLabel:        "Frage stellen",
		browseLabel:     "Katalog durchsuchen",
		contactLabel:    "Support kontaktieren",
	},
	language.Portuguese: {
		withProducts:    []string{"Mostre mais", "Informações de envio", "Algo mais barato"},
		withoutProducts: []string{"Ver produtos", "Informações de envio", "Falar com o suporte"},
		viewLabel:       "Ver produtos",
		askLabel:        "Fazer uma pergunta",
		browseLabel:     "Explorar o catálogo",
		contactLabel:    "Contactar o suporte",
	},
	language.Italian: {
		withProducts:    []string{"Mostrami altro", "Info spedizione", "Qualcosa di più economico"},
		withoutProducts: []string{"Sfoglia i prodotti", "Info spedizione", "Parla con il supporto"},
		viewLabel:       "Vedi i prodotti",
		askLabel:        "Fai una domanda",
		browseLabel:     "Sfoglia il catalogo",
		contactLabel:    "Contatta il supporto",
	},
}

func builtinMessages() map[language.Language]map[Key]string {
	return map[language.Language]map[Key]string{
		language.English: {
			KeyExcellentMatch:  "I found exactly what you're looking for! Here are my top picks:",
			KeyGoodMatch:       "Here are some great matches for you:",
			KeyPossibleMatch:   "These products might interest you:",
			KeyPrice:           "Prices are shown on each product page. Is there a budget I should keep in mind?",
			KeySize:            "Sizing details are listed on each product page. Tell me what you need and I'll help you find the right fit.",
			KeySupport:         "I'm sorry you're running into trouble. Our support team is happy to help with your order.",
			KeyGreeting:        "Hello! Welcome to our store. How can I help you today?",
			KeyThanks:          "You're welcome! Let me know if there's anything else I can help with.",
			KeyComparison:      "Happy to help you compare. Which products are you deciding between?",
			KeyAvailability:    "Availability is shown on each product page. Which item are you interested in?",
			KeyDefault:         "I'm here to help you find the right product. What are you looking for?",
			KeyShippingIntro:   "Here's our shipping policy:",
			KeyShippingMissing: "Shipping details aren't configured for this store yet. Please contact support for shipping information.",
			KeyReturnsIntro:    "Here's our returns policy:",
			KeyReturnsMissing:  "Return details aren't configured for this store yet. Please contact support about returns.",
			KeyNoProducts:      "No products are available right now. Please check back soon!",
			KeyMinimalGreeting: "Hello! How can I help you today?",
		},
		language.French: {
			KeyExcellentMatch:  "J'ai trouvé exactement ce que vous cherchez ! Voici mes meilleures suggestions :",
			KeyGoodMatch:       "Voici de très bonnes correspondances pour vous :",
			KeyPossibleMatch:   "Ces produits pourraient vous intéresser :",
			KeyPrice:           "Les prix sont indiqués sur chaque fiche produit. Avez-vous un budget en tête ?",
			KeySize:            "Les tailles sont indiquées sur chaque fiche produit. Dites-moi ce qu'il vous faut et je vous aiderai.",
			KeySupport:         "Désolé pour ce désagrément. Notre équipe de support se fera un plaisir de vous aider.",
			KeyGreeting:        "Bonjour ! Bienvenue dans notre boutique. Comment puis-je vous aider ?",
			KeyThanks:          "Avec plaisir ! N'hésitez pas si vous avez d'autres questions.",
			KeyComparison:      "Je peux vous aider à comparer. Entre quels produits hésitez-vous ?",
			KeyAvailability:    "La disponibilité est indiquée sur chaque fiche produit. Quel article vous intéresse ?",
			KeyDefault:         "Je suis là pour vous aider à trouver le bon produit. Que cherchez-vous ?",
			KeyShippingIntro:   "Voici notre politique de livraison :",
			KeyShippingMissing: "Les informations de livraison ne sont pas encore configurées. Veuillez contacter le support.",
			KeyReturnsIntro:    "Voici notre politique de retour :",
			KeyReturnsMissing:  "Les informations de retour ne sont pas encore configurées. Veuillez contacter le support.",
			KeyNoProducts:      "Aucun produit n'est disponible pour le moment. Revenez bientôt !",
			KeyMinimalGreeting: "Bonjour ! Comment puis-je vous aider ?",
		},
		language.Spanish: {
			KeyExcellentMatch:  "¡Encontré exactamente lo que buscas! Estas son mis mejores opciones:",
			KeyGoodMatch:       "Aquí tienes muy buenas opciones:",
			KeyPossibleMatch:   "Estos productos podrían interesarte:",
			KeyPrice:           "Los precios aparecen en cada página de producto. ¿Tienes un presupuesto en mente?",
			KeySize:            "Las tallas aparecen en cada página de producto. Dime qué necesitas y te ayudaré.",
			KeySupport:         "Lamento el inconveniente. Nuestro equipo de soporte estará encantado de ayudarte.",
			KeyGreeting:        "¡Hola! Bienvenido a nuestra tienda. ¿En qué puedo ayudarte?",
			KeyThanks:          "¡De nada! Avísame si puedo ayudarte con algo más.",
			KeyComparison:      "Con gusto te ayudo a comparar. ¿Entre qué productos estás decidiendo?",
			KeyAvailability:    "La disponibilidad aparece en cada página de producto. ¿Qué artículo te interesa?",
			KeyDefault:         "Estoy aquí para ayudarte a encontrar el producto adecuado. ¿Qué buscas?",
			KeyShippingIntro:   "Esta es nuestra política de envío:",
			KeyShippingMissing: "Los detalles de envío aún no están configurados. Por favor contacta a soporte.",
			KeyReturnsIntro:    "Esta es nuestra política de devoluciones:",
			KeyReturnsMissing:  "Los detalles de devolución aún no están configurados. Por favor contacta a soporte.",
			KeyNoProducts:      "No hay productos disponibles en este momento. ¡Vuelve pronto!",
			KeyMinimalGreeting: "¡Hola! ¿En qué puedo ayudarte?",
		},
		language.German: {
			KeyExcellentMatch:  "Ich habe genau das Richtige gefunden! Hier sind meine Top-Empfehlungen:",
			KeyGoodMatch:       "Hier sind einige passende Produkte für Sie:",
			KeyPossibleMatch:   "Diese Produkte könnten Sie interessieren:",
			KeyPrice:           "Die Preise finden Sie auf den Produktseiten. Haben Sie ein Budget im Kopf?",
			KeySize:            "Größenangaben finden Sie auf den Produktseiten. Sagen Sie mir, was Sie brauchen.",
			KeySupport:         "Das tut mir leid. Unser Support-Team hilft Ihnen gerne weiter.",
			KeyGreeting:        "Hallo! Willkommen in unserem Shop. Wie kann ich Ihnen helfen?",
			KeyThanks:          "Gern geschehen! Melden Sie sich, wenn Sie noch Fragen haben.",
			KeyComparison:      "Gerne helfe ich beim Vergleichen. Zwischen welchen Produkten schwanken Sie?",
			KeyAvailability:    "Die Verfügbarkeit sehen Sie auf den Produktseiten. Welcher Artikel interessiert Sie?",
			KeyDefault:         "Ich helfe Ihnen gerne, das richtige Produkt zu finden. Wonach suchen Sie?",
			KeyShippingIntro:   "Hier sind unsere Versandbedingungen:",
			KeyShippingMissing: "Versandinformationen sind noch nicht hinterlegt. Bitte wenden Sie sich an den Support.",
			KeyReturnsIntro:    "Hier sind unsere Rückgabebedingungen:",
			KeyReturnsMissing:  "Rückgabeinformationen sind noch nicht hinterlegt. Bitte wenden Sie sich an den Support.",
			KeyNoProducts:      "Derzeit sind keine Produkte verfügbar. Schauen Sie bald wieder vorbei!",
			KeyMinimalGreeting: "Hallo! Wie kann ich Ihnen helfen?",
		},
		language.Portuguese: {
			KeyExcellentMatch:  "Encontrei exatamente o que você procura! Estas são as minhas melhores sugestões:",
			KeyGoodMatch:       "Aqui estão ótimas opções para você:",
			KeyPossibleMatch:   "Estes produtos podem interessar você:",
			KeyPrice:           "Os preços estão em cada página de produto. Tem um orçamento em mente?",
			KeySize:            "Os tamanhos estão em cada página de produto. Diga o que precisa e eu ajudo.",
			KeySupport:         "Lamento o transtorno. Nossa equipe de suporte terá prazer em ajudar.",
			KeyGreeting:        "Olá! Bem-vindo à nossa loja. Como posso ajudar?",
			KeyThanks:          "De nada! Avise se puder ajudar em mais alguma coisa.",
			KeyComparison:      "Posso ajudar a comparar. Entre quais produtos você está em dúvida?",
			KeyAvailability:    "A disponibilidade está em cada página de produto. Qual item interessa você?",
			KeyDefault:         "Estou aqui para ajudar a encontrar o produto certo. O que você procura?",
			KeyShippingIntro:   "Esta é a nossa política de envio:",
			KeyShippingMissing: "Os detalhes de envio ainda não foram configurados. Contacte o suporte.",
			KeyReturnsIntro:    "Esta é a nossa política de devolução:",
			KeyReturnsMissing:  "Os detalhes de devolução ainda não foram configurados. Contacte o suporte.",
			KeyNoProducts:      "Nenhum produto disponível no momento. Volte em breve!",
			KeyMinimalGreeting: "Olá! Como posso ajudar?",
		},
		language.Italian: {
			KeyExcellentMatch:  "Ho trovato esattamente quello che cerchi! Ecco i miei migliori suggerimenti:",
			KeyGoodMatch:       "Ecco alcune ottime corrispondenze per te:",
			KeyPossibleMatch:   "Questi prodotti potrebbero interessarti:",
			KeyPrice:           "I prezzi sono indicati su ogni pagina prodotto. Hai un budget in mente?",
			KeySize:            "Le taglie sono indicate su ogni pagina prodotto. Dimmi cosa ti serve e ti aiuterò.",
			KeySupport:         "Mi dispiace per il problema. Il nostro team di supporto sarà felice di aiutarti.",
			KeyGreeting:        "Ciao! Benvenuto nel nostro negozio. Come posso aiutarti?",
			KeyThanks:          "Prego! Fammi sapere se posso aiutarti con altro.",
			KeyComparison:      "Posso aiutarti a confrontare. Tra quali prodotti sei indeciso?",
			KeyAvailability:    "La disponibilità è indicata su ogni pagina prodotto. Quale articolo ti interessa?",
			KeyDefault:         "Sono qui per aiutarti a trovare il prodotto giusto. Cosa cerchi?",
			KeyShippingIntro:   "Ecco la nostra politica di spedizione:",
			KeyShippingMissing: "I dettagli di spedizione non sono ancora configurati. Contatta il supporto.",
			KeyReturnsIntro:    "Ecco la nostra politica di reso:",
			KeyReturnsMissing:  "I dettagli di reso non sono ancora configurati. Contatta il supporto.",
			KeyNoProducts:      "Nessun prodotto disponibile al momento. Torna presto!",
			KeyMinimalGreeting: "Ciao! Come posso aiutarti?",
		},
	}
}

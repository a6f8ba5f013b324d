package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"smartshop_back_end/internal/models"
)

const (
	defaultAIEndpoint = "https://api.anthropic.com/v1/messages"
	defaultAIModel    = "claude-3-haiku-20240307"

	imageAnalysisAttempts = 3
)

// AIClient appelle l'API d'analyse en langage naturel. L'appel est sur le
// chemin critique du chat : timeout court, circuit breaker, et repli sur le
// parseur local quand l'API est lente ou indisponible : la recherche dégrade,
// elle ne bloque jamais la requête.
type AIClient struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	apiKey  string
	model   string
}

func NewAIClient() *AIClient {
	endpoint := os.Getenv("AI_API_URL")
	if endpoint == "" {
		endpoint = defaultAIEndpoint
	}
	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = defaultAIModel
	}

	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", "2023-06-01")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ai-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️ Circuit %s: %s → %s", name, from, to)
		},
	})

	return &AIClient{
		http:    client,
		breaker: breaker,
		apiKey:  os.Getenv("AI_API_KEY"),
		model:   model,
	}
}

type aiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type aiRequest struct {
	Model     string      `json:"model"`
	MaxTokens int         `json:"max_tokens"`
	Messages  []aiMessage `json:"messages"`
}

type aiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// jsonBlock extrait le premier objet JSON du texte renvoyé : le modèle
// entoure parfois sa réponse de prose malgré la consigne.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// AnalyzeQuery analyse une requête client. En cas d'échec de l'API
// (timeout, circuit ouvert, réponse inexploitable), le parseur local
// répond à la place, jamais d'erreur remontée à l'appelant.
func (c *AIClient) AnalyzeQuery(ctx context.Context, message string) models.QueryAnalysis {
	if c.apiKey == "" {
		return FallbackParseQuery(message)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.callAnalysis(ctx, message)
	})
	if err != nil {
		log.Printf("⚠️ Analyse IA indisponible, repli local: %v", err)
		return FallbackParseQuery(message)
	}

	analysis := result.(models.QueryAnalysis)
	analysis.UsedAI = true
	log.Printf("✅ Analyse IA: intent=%s brand=%s", analysis.Intent, analysis.Brand)
	return analysis
}

func (c *AIClient) callAnalysis(ctx context.Context, message string) (models.QueryAnalysis, error) {
	var parsed aiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(aiRequest{
			Model:     c.model,
			MaxTokens: 1500,
			Messages:  []aiMessage{{Role: "user", Content: analysisPrompt(message)}},
		}).
		SetResult(&parsed).
		Post("")
	if err != nil {
		return models.QueryAnalysis{}, err
	}
	if resp.IsError() {
		return models.QueryAnalysis{}, fmt.Errorf("API IA: HTTP %d", resp.StatusCode())
	}
	if len(parsed.Content) == 0 {
		return models.QueryAnalysis{}, fmt.Errorf("réponse IA vide")
	}

	raw := jsonBlock.FindString(parsed.Content[0].Text)
	if raw == "" {
		return models.QueryAnalysis{}, fmt.Errorf("pas de JSON dans la réponse IA")
	}

	var analysis models.QueryAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return models.QueryAnalysis{}, fmt.Errorf("JSON IA invalide: %w", err)
	}
	return analysis, nil
}

// analysisPrompt construit la consigne d'analyse : intents, marques connues,
// fourchettes de prix, sortie JSON strict.
func analysisPrompt(message string) string {
	return fmt.Sprintf(`Analyse cette requête d'un client de boutique électronique: %q

Intents possibles: "buy" (chercher/acheter), "exclude" (rejet d'une marque),
"compare_mode", "add_to_compare", "question".
Marques connues: Apple (iPhone, MacBook, iPad), Samsung (Galaxy), Xiaomi
(Redmi, POCO), OPPO (OnePlus), Vivo (iQOO), Realme, Nokia.
Prix en VND: "5 triệu" = 5000000, "500k" = 500000. dưới = max, trên = min,
tầm/khoảng = fourchette. price_range: budget < 8M <= mid-range <= 20M < flagship.

Réponds UNIQUEMENT avec un objet JSON:
{"intent": "...", "brand": "...", "min_price": 0, "max_price": 0,
"price_range": "...", "features": [], "keywords": [], "product_type": "...",
"confidence": 0.0}`, message)
}

// AnalyzeImage identifie un produit sur une photo (base64). L'API signale sa
// surcharge en HTTP 529 : on retente jusqu'à 3 fois avec une attente
// linéaire (2s, 4s), puis on rend un résultat vide plutôt qu'une erreur.
func (c *AIClient) AnalyzeImage(ctx context.Context, imageBase64, mediaType string) models.ImageAnalysis {
	if c.apiKey == "" {
		return models.ImageAnalysis{}
	}

	for attempt := 1; attempt <= imageAnalysisAttempts; attempt++ {
		log.Printf("🤖 Analyse d'image (tentative %d/%d)", attempt, imageAnalysisAttempts)

		analysis, status, err := c.callImageAnalysis(ctx, imageBase64, mediaType)
		if err == nil {
			analysis.UsedAI = true
			return analysis
		}

		if status == 529 && attempt < imageAnalysisAttempts {
			wait := time.Duration(attempt) * 2 * time.Second
			log.Printf("⏳ API surchargée, nouvelle tentative dans %s", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return models.ImageAnalysis{}
			}
			continue
		}

		log.Printf("❌ Analyse d'image échouée: %v", err)
		break
	}
	return models.ImageAnalysis{}
}

func (c *AIClient) callImageAnalysis(ctx context.Context, imageBase64, mediaType string) (models.ImageAnalysis, int, error) {
	content := []map[string]any{
		{
			"type": "image",
			"source": map[string]string{
				"type":       "base64",
				"media_type": mediaType,
				"data":       imageBase64,
			},
		},
		{
			"type": "text",
			"text": `Identifie le produit sur cette photo. Réponds UNIQUEMENT en JSON:
{"product_type": "...", "brand": "...", "model": "...", "colors": [],
"keywords": [], "confidence": 0.0}`,
		},
	}

	var parsed aiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(aiRequest{
			Model:     c.model,
			MaxTokens: 1000,
			Messages:  []aiMessage{{Role: "user", Content: content}},
		}).
		SetResult(&parsed).
		Post("")
	if err != nil {
		return models.ImageAnalysis{}, 0, err
	}
	if resp.IsError() {
		return models.ImageAnalysis{}, resp.StatusCode(), fmt.Errorf("API IA: HTTP %d", resp.StatusCode())
	}
	if len(parsed.Content) == 0 {
		return models.ImageAnalysis{}, 0, fmt.Errorf("réponse IA vide")
	}

	raw := jsonBlock.FindString(parsed.Content[0].Text)
	if raw == "" {
		return models.ImageAnalysis{}, 0, fmt.Errorf("pas de JSON dans la réponse IA")
	}

	var analysis models.ImageAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return models.ImageAnalysis{}, 0, fmt.Errorf("JSON IA invalide: %w", err)
	}
	return analysis, 0, nil
}

// CompareProducts demande à l'IA une analyse comparative de 2 ou 3
// produits. Même politique que l'analyse de requête : circuit breaker,
// et comparaison locale de secours en cas d'échec.
func (c *AIClient) CompareProducts(ctx context.Context, products []models.Product, preferences string) models.ComparisonAnalysis {
	if c.apiKey == "" {
		return FallbackCompare(products)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.callComparison(ctx, products, preferences)
	})
	if err != nil {
		log.Printf("⚠️ Comparaison IA indisponible, repli local: %v", err)
		return FallbackCompare(products)
	}

	analysis := result.(models.ComparisonAnalysis)
	analysis.UsedAI = true
	log.Printf("✅ Comparaison IA: %d produits", len(products))
	return analysis
}

func (c *AIClient) callComparison(ctx context.Context, products []models.Product, preferences string) (models.ComparisonAnalysis, error) {
	var parsed aiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(aiRequest{
			Model:     c.model,
			MaxTokens: 2000,
			Messages:  []aiMessage{{Role: "user", Content: comparisonPrompt(products, preferences)}},
		}).
		SetResult(&parsed).
		Post("")
	if err != nil {
		return models.ComparisonAnalysis{}, err
	}
	if resp.IsError() {
		return models.ComparisonAnalysis{}, fmt.Errorf("API IA: HTTP %d", resp.StatusCode())
	}
	if len(parsed.Content) == 0 {
		return models.ComparisonAnalysis{}, fmt.Errorf("réponse IA vide")
	}

	raw := jsonBlock.FindString(parsed.Content[0].Text)
	if raw == "" {
		return models.ComparisonAnalysis{}, fmt.Errorf("pas de JSON dans la réponse IA")
	}

	var analysis models.ComparisonAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return models.ComparisonAnalysis{}, fmt.Errorf("JSON IA invalide: %w", err)
	}
	return analysis, nil
}

func comparisonPrompt(products []models.Product, preferences string) string {
	var b strings.Builder
	b.WriteString("Tu es conseiller en électronique. Compare ces produits:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "\nPRODUIT %d: %s\n- Prix: %.0f\n- Description: %s\n- Mis en avant: %t\n",
			i+1, p.Name, p.Price, p.Description, p.IsFeatured)
	}
	if preferences != "" {
		fmt.Fprintf(&b, "\nBESOINS DU CLIENT: %s\n", preferences)
	}
	b.WriteString(`
Réponds UNIQUEMENT avec un objet JSON:
{"strengths": [{"product_id": "...", "product_name": "...", "strengths": []}],
"differences": [{"category": "...", "entries": [{"product_id": "...",
"product_name": "...", "value": "...", "is_best": false}]}],
"similarities": [], "best_value": "...", "recommendations": []}`)
	return b.String()
}

// FallbackCompare produit une comparaison minimale sans IA : points forts
// déduits du prix et de la mise en avant, critère prix avec le moins cher
// marqué meilleur choix.
func FallbackCompare(products []models.Product) models.ComparisonAnalysis {
	cheapest := 0
	for i, p := range products {
		if p.Price < products[cheapest].Price {
			cheapest = i
		}
	}

	analysis := models.ComparisonAnalysis{
		BestValue:    products[cheapest].Name,
		Similarities: []string{"Produits de la même gamme"},
		Recommendations: []string{
			"Comparer les caractéristiques détaillées (camera, batterie)",
			"Consulter les avis clients avant de choisir",
		},
	}

	priceDiff := models.ComparisonDifference{Category: "Prix"}
	for i, p := range products {
		strengths := []string{}
		if i == cheapest {
			strengths = append(strengths, "Prix le plus avantageux")
		}
		if p.IsFeatured {
			strengths = append(strengths, "Produit mis en avant")
		}
		if len(strengths) == 0 {
			strengths = append(strengths, "Bon rapport qualité/prix")
		}
		analysis.Strengths = append(analysis.Strengths, models.ProductStrengths{
			ProductID:   p.ID.Hex(),
			ProductName: p.Name,
			Strengths:   strengths,
		})
		priceDiff.Entries = append(priceDiff.Entries, models.ComparisonEntry{
			ProductID:   p.ID.Hex(),
			ProductName: p.Name,
			Value:       fmt.Sprintf("%.0f", p.Price),
			IsBest:      i == cheapest,
		})
	}
	analysis.Differences = []models.ComparisonDifference{priceDiff}
	return analysis
}

//
// --- PARSEUR LOCAL DE SECOURS ---
//

// priceToken capture "5 triệu", "12tr", "500k" avec décimales à virgule.
var priceToken = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(trieu|tr|k)`)

var brandKeywords = []struct {
	brand string
	terms []string
}{
	{"Apple", []string{"iphone", "apple", "macbook", "ipad"}},
	{"Samsung", []string{"samsung", "sam sung", "galaxy"}},
	{"Xiaomi", []string{"xiaomi", "redmi", "poco"}},
	{"OPPO", []string{"oppo", "oneplus"}},
	{"Vivo", []string{"vivo", "iqoo"}},
	{"Realme", []string{"realme"}},
	{"Nokia", []string{"nokia"}},
}

var featureKeywords = []struct {
	feature string
	terms   []string
}{
	{"camera", []string{"chup anh", "camera"}},
	{"selfie", []string{"selfie", "tu suong"}},
	{"pin trau", []string{"pin trau", "pin lau", "pin khoe"}},
	{"sac nhanh", []string{"sac nhanh", "fast charge"}},
	{"gaming", []string{"gaming", "choi game", "game"}},
	{"zoom", []string{"zoom", "tele"}},
}

// FallbackParseQuery est le parseur déterministe utilisé quand l'API IA ne
// répond pas : détection de marque par mots-clés, extraction de prix
// vietnamiens (triệu/tr/k avec qualificatifs dưới/trên/tầm) et fourchettes
// budget / mid-range / flagship.
func FallbackParseQuery(query string) models.QueryAnalysis {
	q := stripDiacritics(strings.ToLower(query))

	analysis := models.QueryAnalysis{
		Intent:     "buy",
		Confidence: 0.5,
		UsedAI:     false,
	}

	for _, negative := range []string{"ghet", "khong thich", "te ", "do ", "kem"} {
		if strings.Contains(q, negative) {
			analysis.Intent = "exclude"
			break
		}
	}
	if strings.Contains(q, "so sanh") || strings.Contains(q, "compare") {
		analysis.Intent = "compare_mode"
	}

	for _, b := range brandKeywords {
		for _, term := range b.terms {
			if strings.Contains(q, term) {
				analysis.Brand = b.brand
				break
			}
		}
		if analysis.Brand != "" {
			break
		}
	}

	prices := extractPrices(q)
	if len(prices) > 0 {
		minOf, maxOf := prices[0], prices[0]
		for _, p := range prices[1:] {
			if p < minOf {
				minOf = p
			}
			if p > maxOf {
				maxOf = p
			}
		}

		switch {
		case strings.Contains(q, "duoi") || strings.Contains(q, "toi da"):
			analysis.MaxPrice = maxOf
		case strings.Contains(q, "tren") || strings.Contains(q, "toi thieu"):
			analysis.MinPrice = minOf
		case strings.Contains(q, "tam") || strings.Contains(q, "khoang"):
			if len(prices) >= 2 {
				analysis.MinPrice = minOf
				analysis.MaxPrice = maxOf
			} else {
				analysis.MinPrice = prices[0] * 0.8
				analysis.MaxPrice = prices[0] * 1.2
			}
		default:
			// Prix isolé : fourchette ±10%
			analysis.MinPrice = prices[0] * 0.9
			analysis.MaxPrice = prices[0] * 1.1
		}

		pivot := analysis.MaxPrice
		if pivot == 0 {
			pivot = analysis.MinPrice
		}
		switch {
		case pivot < 8_000_000:
			analysis.PriceRange = "budget"
		case pivot <= 20_000_000:
			analysis.PriceRange = "mid-range"
		default:
			analysis.PriceRange = "flagship"
		}
	}

	// Les mots-clés de gamme priment sur la fourchette déduite des montants
	switch {
	case strings.Contains(q, "gia re") || strings.Contains(q, "sinh vien") || strings.Contains(q, "hoc sinh"):
		analysis.PriceRange = "budget"
		if analysis.MaxPrice == 0 {
			analysis.MaxPrice = 8_000_000
		}
	case strings.Contains(q, "tam trung") || strings.Contains(q, "trung cap"):
		analysis.PriceRange = "mid-range"
		if analysis.MinPrice == 0 {
			analysis.MinPrice = 8_000_000
		}
		if analysis.MaxPrice == 0 {
			analysis.MaxPrice = 20_000_000
		}
	case strings.Contains(q, "cao cap") || strings.Contains(q, "premium") || strings.Contains(q, "flagship"):
		analysis.PriceRange = "flagship"
		if analysis.MinPrice == 0 {
			analysis.MinPrice = 20_000_000
		}
	}

	for _, f := range featureKeywords {
		for _, term := range f.terms {
			if strings.Contains(q, term) {
				analysis.Features = append(analysis.Features, f.feature)
				analysis.Keywords = append(analysis.Keywords, f.feature)
				break
			}
		}
	}

	return analysis
}

// extractPrices convertit les montants "5 triệu" / "12tr" / "500k" en VND.
func extractPrices(q string) []float64 {
	var prices []float64
	for _, m := range priceToken.FindAllStringSubmatch(q, -1) {
		num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}
		if m[2] == "k" {
			prices = append(prices, num*1_000)
		} else {
			prices = append(prices, num*1_000_000)
		}
	}
	return prices
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	// đ/Đ ne portent pas de signe combinant, NFD ne les décompose pas
	out = strings.ReplaceAll(out, "đ", "d")
	return strings.ReplaceAll(out, "Đ", "D")
}

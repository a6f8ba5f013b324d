package models

// QueryAnalysis est la sortie structurée de l'analyse d'une requête
// client, qu'elle vienne de l'API IA ou du parseur local de secours.
type QueryAnalysis struct {
	Intent      string   `json:"intent"` // "buy", "exclude", "compare_mode", "add_to_compare", "question"
	Brand       string   `json:"brand,omitempty"`
	MinPrice    float64  `json:"min_price,omitempty"`
	MaxPrice    float64  `json:"max_price,omitempty"`
	PriceRange  string   `json:"price_range,omitempty"` // "budget", "mid-range", "flagship"
	Features    []string `json:"features,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	ProductType string   `json:"product_type,omitempty"`
	Confidence  float64  `json:"confidence"`
	UsedAI      bool     `json:"used_ai"` // false si le fallback local a répondu
}

// ChatResponse associe l'analyse aux produits recommandés.
type ChatResponse struct {
	Message  string        `json:"message"`
	Analysis QueryAnalysis `json:"analysis"`
	Products []Product     `json:"products"`
}

// ProductStrengths liste les points forts d'un produit dans une comparaison.
type ProductStrengths struct {
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name"`
	Strengths   []string `json:"strengths"`
}

// ComparisonEntry est la valeur d'un produit pour un critère donné.
type ComparisonEntry struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Value       string `json:"value"`
	IsBest      bool   `json:"is_best"`
}

// ComparisonDifference regroupe les valeurs d'un critère pour tous les
// produits comparés.
type ComparisonDifference struct {
	Category string            `json:"category"`
	Entries  []ComparisonEntry `json:"entries"`
}

// ComparisonAnalysis est la sortie de la comparaison, IA ou secours local.
type ComparisonAnalysis struct {
	Strengths       []ProductStrengths     `json:"strengths"`
	Differences     []ComparisonDifference `json:"differences"`
	Similarities    []string               `json:"similarities"`
	BestValue       string                 `json:"best_value"`
	Recommendations []string               `json:"recommendations"`
	UsedAI          bool                   `json:"used_ai"`
}

// ProductComparison associe les produits comparés à leur analyse.
type ProductComparison struct {
	Products []Product          `json:"products"`
	Analysis ComparisonAnalysis `json:"analysis"`
}

// ImageAnalysis est le résultat de l'analyse d'une photo de produit.
type ImageAnalysis struct {
	ProductType string   `json:"product_type,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Model       string   `json:"model,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Confidence  float64  `json:"confidence"`
	UsedAI      bool     `json:"used_ai"`
}

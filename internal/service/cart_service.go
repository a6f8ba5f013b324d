package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/store"
)

// CartService gère les lignes de panier. Le prix unitaire est capturé à
// l'ajout et fait foi au checkout (price lock) ; Validate signale la dérive
// de prix sans invalider la ligne.
type CartService struct {
	carts    store.CartStore
	products store.ProductStore
}

func NewCartService(carts store.CartStore, products store.ProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

// AddItem crée une ligne avec le prix courant du produit.
// ErrDuplicateCartItem si la ligne existe déjà : l'appelant doit passer
// par UpdateQuantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantité invalide: %d", quantity)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("produit %s indisponible", product.Name)
	}

	return s.carts.Insert(ctx, models.CartItem{
		UserID:      userID,
		ProductID:   productID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
	})
}

// UpdateQuantity remplace la quantité d'une ligne existante.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantité invalide: %d", quantity)
	}
	return s.carts.UpdateQuantity(ctx, userID, productID, quantity)
}

// RemoveItem est idempotent : retirer une ligne absente n'est pas une erreur.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	return s.carts.Remove(ctx, userID, productID)
}

// Clear ne faillit jamais sur un panier déjà vide.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.carts.ClearByUser(ctx, userID)
}

func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	return s.carts.GetByUser(ctx, userID)
}

func (s *CartService) ItemCount(ctx context.Context, userID primitive.ObjectID) (int, error) {
	return s.carts.ItemCount(ctx, userID)
}

// Validate fait le pré-check du panier avant checkout, sans rien muter :
// existence du produit, disponibilité, stock suffisant, puis dérive de prix.
// La dérive de prix est signalée mais n'invalide pas la ligne, la
// re-validation qui fait foi a lieu dans la transaction de commande.
func (s *CartService) Validate(ctx context.Context, userID primitive.ObjectID) (*models.CartValidation, error) {
	items, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lecture du panier: %w", err)
	}

	result := &models.CartValidation{ValidItems: []models.CartItem{}, Errors: []string{}}

	for _, line := range items {
		product, ok := line.Product.Deref()
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s n'existe plus", line.ProductName))
			continue
		}
		if !product.IsActive {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s n'est plus disponible", line.ProductName))
			continue
		}
		if product.Stock < line.Quantity {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s : seulement %d en stock (%d dans le panier)",
					line.ProductName, product.Stock, line.Quantity))
			continue
		}
		if line.UnitPrice != product.Price {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s : prix passé de %.2f à %.2f",
					line.ProductName, line.UnitPrice, product.Price))
		}
		result.ValidItems = append(result.ValidItems, line)
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

package store

import (
	"errors"
	"fmt"
)

// Erreurs métier typées, testées via errors.Is / errors.As côté handlers.
var (
	ErrEmptyCart            = errors.New("le panier est vide")
	ErrProductMissing       = errors.New("produit introuvable")
	ErrInsufficientStock    = errors.New("stock insuffisant")
	ErrOrderNotFound        = errors.New("commande introuvable")
	ErrCartItemNotFound     = errors.New("article de panier introuvable")
	ErrDuplicateCartItem    = errors.New("article déjà présent dans le panier")
	ErrDuplicateOrderNumber = errors.New("numéro de commande déjà utilisé")
	ErrDuplicateReview      = errors.New("avis déjà déposé pour ce produit")
	ErrDuplicateWishlist    = errors.New("produit déjà dans la wishlist")
	ErrWishlistItemNotFound = errors.New("élément de wishlist introuvable")
	ErrUserNotFound         = errors.New("utilisateur introuvable")
	ErrReviewNotFound       = errors.New("avis introuvable")
	ErrDuplicateEmail       = errors.New("email déjà utilisé")
	ErrInvalidTransition    = errors.New("transition de statut non autorisée")
)

// StockError porte le détail d'un refus de stock : le client doit savoir
// quelle ligne du panier pose problème pour pouvoir la corriger.
type StockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuffisant pour %s : disponible %d, demandé %d",
		e.ProductName, e.Available, e.Requested)
}

// Unwrap permet errors.Is(err, ErrInsufficientStock) sur un *StockError.
func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// MissingProductError : référence de panier pendante (produit supprimé).
type MissingProductError struct {
	ProductID   string
	ProductName string
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("produit introuvable : %s (%s)", e.ProductName, e.ProductID)
}

func (e *MissingProductError) Unwrap() error { return ErrProductMissing }

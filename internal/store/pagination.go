package store

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Page : pagination first/offset à la façon des connexions GraphQL.
type Page struct {
	First   int
	Offset  int
	OrderBy string // ex: "CREATED_DESC", "PRICE_ASC", "DATE_DESC"
}

// Normalize applique les bornes par défaut.
func (p Page) Normalize() Page {
	if p.First <= 0 {
		p.First = 10
	}
	if p.First > 100 {
		p.First = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// SortOptions convertit un enum "CHAMP_DIRECTION" en tri Mongo, via la
// table de correspondance champ logique → champ BSON du document.
func SortOptions(orderBy string, columnMapping map[string]string) bson.D {
	if orderBy == "" {
		return bson.D{{Key: "created_at", Value: -1}}
	}

	idx := strings.LastIndex(orderBy, "_")
	if idx < 0 {
		return bson.D{{Key: "created_at", Value: -1}}
	}

	field := orderBy[:idx]
	direction := orderBy[idx+1:]

	name, ok := columnMapping[field]
	if !ok {
		name = "created_at"
	}

	dir := -1
	if direction == "ASC" {
		dir = 1
	}

	return bson.D{{Key: name, Value: dir}}
}

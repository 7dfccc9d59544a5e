package normalize

import "github.com/radieske/fantasy-sportsbook/internal/shared/model"

// Catalog é a tabela de mercados locais, carregada uma vez e injetada (somente leitura)
type Catalog struct {
	byKey map[string]model.MarketType
}

func NewCatalog(types []model.MarketType) Catalog {
	c := Catalog{byKey: make(map[string]model.MarketType, len(types))}
	for _, t := range types {
		c.byKey[t.MarketKey] = t
	}
	return c
}

func (c Catalog) Lookup(key string) (model.MarketType, bool) {
	t, ok := c.byKey[key]
	return t, ok
}

func (c Catalog) Len() int { return len(c.byKey) }

// Package catalog предоставляет доступ к меню ресторана только для чтения.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/mmeshcher/restobill-system/internal/model"
)

//go:embed menu.json
var seedMenu []byte

// ErrItemNotFound возвращается, если позиция меню с указанным идентификатором не найдена.
var ErrItemNotFound = errors.New("menu item not found")

// Catalog хранит позиции меню в памяти. Содержимое неизменно после создания.
type Catalog struct {
	items map[string]model.MenuItem
}

// New создаёт каталог из встроенного меню.
func New() (*Catalog, error) {
	return newFromJSON(seedMenu)
}

// NewFromFile создаёт каталог из JSON-файла с позициями меню.
func NewFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	return newFromJSON(data)
}

func newFromJSON(data []byte) (*Catalog, error) {
	var items []model.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}

	m := make(map[string]model.MenuItem, len(items))
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("menu item %q has empty id", it.Name)
		}
		if it.PricePaise < 0 {
			return nil, fmt.Errorf("menu item %q has negative price", it.ID)
		}
		if _, ok := m[it.ID]; ok {
			return nil, fmt.Errorf("duplicate menu item id %q", it.ID)
		}
		m[it.ID] = it
	}

	return &Catalog{items: m}, nil
}

// Get возвращает позицию меню по идентификатору.
func (c *Catalog) Get(id string) (model.MenuItem, error) {
	it, ok := c.items[id]
	if !ok {
		return model.MenuItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return it, nil
}

// List возвращает все позиции меню, отсортированные по разделу и названию.
func (c *Catalog) List() []model.MenuItem {
	res := make([]model.MenuItem, 0, len(c.items))
	for _, it := range c.items {
		res = append(res, it)
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Category != res[j].Category {
			return res[i].Category < res[j].Category
		}
		return res[i].Name < res[j].Name
	})

	return res
}

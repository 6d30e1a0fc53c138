package lunchbox

// FoodItem is a single item in a lunchbox. It is a value type: items have no
// identity beyond their position in the list they belong to.
type FoodItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Icon     string `json:"icon"`
}

// CategoryOther is the fallback category for manually added items and for
// items the vision model could not classify.
const CategoryOther = "אחר"

// DefaultIcon is the glyph used for manually added items.
const DefaultIcon = "🍱"

// Categories is the vocabulary the vision model is instructed to pick from.
var Categories = []string{
	"פירות",
	"ירקות",
	"חלבונים",
	"פחמימות",
	"חטיפים",
	"משקאות",
}

// ItemList is the editable, ordered collection of food items for a scan in
// progress. Insertion order is preserved and duplicates are allowed. The only
// correction path is remove-and-re-add; items are never edited in place.
type ItemList struct {
	items []FoodItem
}

// NewItemList creates an item list seeded with the given items (may be empty
// or nil).
func NewItemList(seed []FoodItem) *ItemList {
	items := make([]FoodItem, len(seed))
	copy(items, seed)
	return &ItemList{items: items}
}

// Add appends a manually entered item with the fallback category and icon.
// The name is free text; validating that it is non-empty is the caller's job.
func (l *ItemList) Add(name string) {
	l.items = append(l.items, FoodItem{
		Name:     name,
		Category: CategoryOther,
		Icon:     DefaultIcon,
	})
}

// Remove deletes the item at index. The index must come from the rendered
// list, so an out-of-bounds index is a programming error and panics.
func (l *ItemList) Remove(index int) {
	if index < 0 || index >= len(l.items) {
		panic("lunchbox: item index out of range")
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
}

// Items returns a copy of the current items in insertion order.
func (l *ItemList) Items() []FoodItem {
	items := make([]FoodItem, len(l.items))
	copy(items, l.items)
	return items
}

// Len returns the number of items.
func (l *ItemList) Len() int {
	return len(l.items)
}

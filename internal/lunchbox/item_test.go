package lunchbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation(DateFormat, s, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestItemListAddRemoveAreInverse(t *testing.T) {
	list := NewItemList(nil)
	list.Add("אגס")
	assert.Equal(t, 1, list.Len())

	list.Remove(0)
	assert.Equal(t, 0, list.Len())
	assert.Empty(t, list.Items())
}

func TestItemListAddDefaults(t *testing.T) {
	list := NewItemList(nil)
	list.Add("כריך")

	items := list.Items()
	assert.Equal(t, FoodItem{Name: "כריך", Category: CategoryOther, Icon: DefaultIcon}, items[0])
}

func TestItemListAllowsDuplicates(t *testing.T) {
	list := NewItemList(nil)
	list.Add("תפוח")
	list.Add("תפוח")
	assert.Equal(t, 2, list.Len())
}

func TestItemListPreservesSeedOrder(t *testing.T) {
	seed := []FoodItem{
		{Name: "תפוח", Category: "פירות", Icon: "🍎"},
		{Name: "מים", Category: "משקאות", Icon: "💧"},
	}
	list := NewItemList(seed)
	list.Add("חטיף")

	items := list.Items()
	assert.Equal(t, []string{"תפוח", "מים", "חטיף"}, []string{items[0].Name, items[1].Name, items[2].Name})

	// The seed slice is copied, not aliased.
	seed[0].Name = "בננה"
	assert.Equal(t, "תפוח", list.Items()[0].Name)
}

func TestItemListRemoveMiddle(t *testing.T) {
	list := NewItemList([]FoodItem{
		{Name: "א", Category: CategoryOther, Icon: DefaultIcon},
		{Name: "ב", Category: CategoryOther, Icon: DefaultIcon},
		{Name: "ג", Category: CategoryOther, Icon: DefaultIcon},
	})
	list.Remove(1)

	items := list.Items()
	assert.Equal(t, 2, len(items))
	assert.Equal(t, "א", items[0].Name)
	assert.Equal(t, "ג", items[1].Name)
}

func TestItemListRemoveOutOfBoundsPanics(t *testing.T) {
	list := NewItemList(nil)
	assert.Panics(t, func() { list.Remove(0) })
	assert.Panics(t, func() { list.Remove(-1) })
}

func TestLocalDate(t *testing.T) {
	assert.Len(t, LocalDate(mustParseDate(t, "2026-03-09")), 10)
	assert.Equal(t, "2026-03-09", LocalDate(mustParseDate(t, "2026-03-09")))
}

func TestValidGrade(t *testing.T) {
	assert.True(t, ValidGrade("א"))
	assert.True(t, ValidGrade("ו"))
	assert.False(t, ValidGrade("ז"))
	assert.False(t, ValidGrade(""))
}

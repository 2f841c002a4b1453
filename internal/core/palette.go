package core

// Palette is the ordered list of category color hints. A new category takes
// Palette[count % len(Palette)] where count is the registry size before insert.
var Palette = []string{
	"#8B5CF6",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#3B82F6",
	"#EC4899",
	"#06B6D4",
	"#84CC16",
	"#F97316",
	"#8B5A2B",
}

// DefaultCategory is a seed entry for an empty registry.
type DefaultCategory struct {
	Name  string
	Color string
}

var DefaultCategories = []DefaultCategory{
	{Name: "Food & Dining", Color: "#8B5CF6"},
	{Name: "Transportation", Color: "#10B981"},
	{Name: "Shopping", Color: "#F59E0B"},
	{Name: "Entertainment", Color: "#EF4444"},
	{Name: "Bills & Utilities", Color: "#3B82F6"},
	{Name: "Healthcare", Color: "#EC4899"},
}

// PaletteColor returns the color for the n-th category.
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

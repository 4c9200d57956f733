package catalog

var categories = []string{
	"headers", "navigation", "heroes", "features", "pricing", "testimonials",
	"teams", "forms", "inputs", "buttons", "cards", "galleries", "footers",
	"cta", "blog", "ecommerce", "stats", "timelines", "tabs", "accordions",
	"modals", "alerts", "badges", "breadcrumbs", "pagination", "progress",
	"tooltips", "dropdowns", "sidebars", "tables", "lists", "text", "images",
	"videos", "dividers", "maps", "social", "contact", "login", "register",
	"dashboard", "charts", "calendars", "timepickers", "sliders", "toggles",
	"checkboxes", "radios", "selects", "textareas",
}

var categorySet = func() map[string]bool {
	m := make(map[string]bool, len(categories))
	for _, c := range categories {
		m[c] = true
	}
	return m
}()

// Categories returns the closed set of category tags in display order.
func Categories() []string {
	return append([]string(nil), categories...)
}

// IsCategory reports whether tag belongs to the closed category set.
func IsCategory(tag string) bool {
	return categorySet[tag]
}

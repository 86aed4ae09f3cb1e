package layouts

// AppName is shown in the browser title of every page.
const AppName = "Semantic Search"

// CalculateTitle handles the conditional logic for the page title.
func CalculateTitle(title string) string {
	if title != "" && title != AppName {
		return title + " - " + AppName
	}
	return AppName
}

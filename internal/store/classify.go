// ABOUTME: Drink name classification into the category taxonomy
// ABOUTME: Case-insensitive fixed mapping; unknown names stay unclassified

package store

import "strings"

// drinkCategories maps known drink names to their category. Lookup is
// exact on the lowercased, trimmed name.
var drinkCategories = map[string]Category{
	"beer":       CategoryBeer,
	"ipa":        CategoryBeer,
	"lager":      CategoryBeer,
	"stout":      CategoryBeer,
	"pilsner":    CategoryBeer,
	"ale":        CategoryBeer,
	"porter":     CategoryBeer,
	"hefeweizen": CategoryBeer,

	"wine":       CategoryWine,
	"merlot":     CategoryWine,
	"riesling":   CategoryWine,
	"chardonnay": CategoryWine,
	"cabernet":   CategoryWine,
	"prosecco":   CategoryWine,
	"champagne":  CategoryWine,

	"shot":         CategoryShot,
	"tequila":      CategoryShot,
	"vodka":        CategoryShot,
	"whiskey":      CategoryShot,
	"whisky":       CategoryShot,
	"rum":          CategoryShot,
	"jagermeister": CategoryShot,
	"sambuca":      CategoryShot,

	"cocktail":     CategoryCocktail,
	"margarita":    CategoryCocktail,
	"mojito":       CategoryCocktail,
	"negroni":      CategoryCocktail,
	"martini":      CategoryCocktail,
	"daiquiri":     CategoryCocktail,
	"cosmopolitan": CategoryCocktail,
	"spritz":       CategoryCocktail,
}

// Classify maps a free-text drink name to a category. Unrecognized names
// return CategoryUnset, never an error.
func Classify(drinkName string) Category {
	return drinkCategories[strings.ToLower(strings.TrimSpace(drinkName))]
}

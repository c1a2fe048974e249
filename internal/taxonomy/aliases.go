package taxonomy

// builtinAliases maps common variations returned by image analysis to
// canonical values. Keys are folded. Nodes may add more via Node.Aliases.
var builtinAliases = [3]map[string]string{
	LevelType: {
		"cardapio":     "menu",
		"comida":       "menu",
		"food":         "menu",
		"gastronomia":  "menu",
		"gastronomy":   "menu",
		"clothing":     "vestuario",
		"roupa":        "vestuario",
		"roupas":       "vestuario",
		"apparel":      "vestuario",
		"lembrancinha": "souvenir",
		"gift":         "souvenir",
	},
	LevelClassification: {
		"handcraft":     "artesanato",
		"handicraft":    "artesanato",
		"collectible":   "colecionavel",
		"collectibles":  "colecionavel",
		"colecionaveis": "colecionavel",
		"starter":       "entrada",
		"appetizer":     "entrada",
		"main_course":   "prato_principal",
		"prato":         "prato_principal",
		"drink":         "bebida",
		"beverage":      "bebida",
		"bebidas":       "bebida",
		"t_shirt":       "camiseta",
		"tshirt":        "camiseta",
		"camisa":        "camiseta",
		"cap":           "bone",
		"hat":           "bone",
		"hoodie":        "moletom",
		"sweatshirt":    "moletom",
	},
	LevelCategory: {
		"wood":              "madeira",
		"ceramic":           "ceramica",
		"fabric":            "tecido",
		"coin":              "moeda",
		"stamp":             "selo",
		"postcard":          "cartao_postal",
		"magnet":            "imas",
		"imas_de_geladeira": "imas",
		"ima":               "imas",
		"salad":             "salada",
		"soup":              "sopa",
		"snack":             "petisco",
		"meat":              "carne",
		"fish":              "peixe",
		"vegetarian":        "vegetariano",
		"vegano":            "vegetariano",
		"juice":             "suco",
		"soda":              "refrigerante",
		"refri":             "refrigerante",
		"alcoholic":         "alcoolica",
		"short_sleeve":      "manga_curta",
		"long_sleeve":       "manga_longa",
		"tank_top":          "regata",
		"flat_brim":         "aba_reta",
		"curved_brim":       "aba_curva",
		"hooded":            "com_capuz",
		"zip":               "ziper",
		"com_ziper":         "ziper",
	},
}

func builtinAlias(level Level, folded string) (string, bool) {
	v, ok := builtinAliases[level][folded]
	return v, ok
}

package taxonomy

import "github.com/vitrinelab/vitrine/internal/domain"

// DefaultSeed returns the built-in taxonomy used when no file is configured.
// IDs are stable: classifications map to idcl and categories to idca.
func DefaultSeed() *Seed {
	return &Seed{
		Types: []Node{
			{
				ID: 1, Value: "souvenir", Label: "Souvenir",
				Children: []Node{
					{
						ID: 1, Value: "artesanato", Label: "Artesanato",
						Children: []Node{
							{ID: 1, Value: "madeira", Label: "Madeira"},
							{ID: 2, Value: "ceramica", Label: "Cerâmica"},
							{ID: 3, Value: "tecido", Label: "Tecido"},
						},
					},
					{
						ID: 2, Value: "colecionavel", Label: "Colecionável",
						Children: []Node{
							{ID: 4, Value: "moeda", Label: "Moeda"},
							{ID: 5, Value: "selo", Label: "Selo"},
							{ID: 6, Value: "miniatura", Label: "Miniatura"},
						},
					},
					{
						ID: 3, Value: "local", Label: "Local",
						Children: []Node{
							{ID: 7, Value: "lembranca", Label: "Lembrança"},
							{ID: 8, Value: "cartao_postal", Label: "Cartão Postal"},
							{ID: 9, Value: "imas", Label: "Ímãs"},
						},
					},
				},
			},
			{
				ID: 2, Value: "menu", Label: "Menu",
				Children: []Node{
					{
						ID: 4, Value: "entrada", Label: "Entrada",
						Children: []Node{
							{ID: 10, Value: "salada", Label: "Salada"},
							{ID: 11, Value: "sopa", Label: "Sopa"},
							{ID: 12, Value: "petisco", Label: "Petisco"},
						},
					},
					{
						ID: 5, Value: "prato_principal", Label: "Prato Principal",
						Children: []Node{
							{ID: 13, Value: "carne", Label: "Carne"},
							{ID: 14, Value: "peixe", Label: "Peixe"},
							{ID: 15, Value: "vegetariano", Label: "Vegetariano"},
						},
					},
					{
						ID: 6, Value: "bebida", Label: "Bebida",
						Children: []Node{
							{ID: 16, Value: "suco", Label: "Suco"},
							{ID: 17, Value: "refrigerante", Label: "Refrigerante"},
							{ID: 18, Value: "alcoolica", Label: "Alcoólica"},
						},
					},
				},
			},
			{
				ID: 3, Value: "vestuario", Label: "Vestuário",
				Children: []Node{
					{
						ID: 7, Value: "camiseta", Label: "Camiseta",
						Children: []Node{
							{ID: 19, Value: "manga_curta", Label: "Manga Curta"},
							{ID: 20, Value: "manga_longa", Label: "Manga Longa"},
							{ID: 21, Value: "regata", Label: "Regata"},
						},
					},
					{
						ID: 8, Value: "bone", Label: "Boné",
						Children: []Node{
							{ID: 22, Value: "aba_reta", Label: "Aba Reta"},
							{ID: 23, Value: "aba_curva", Label: "Aba Curva"},
							{ID: 24, Value: "trucker", Label: "Trucker"},
						},
					},
					{
						ID: 9, Value: "moletom", Label: "Moletom",
						Children: []Node{
							{ID: 25, Value: "com_capuz", Label: "Com Capuz"},
							{ID: 26, Value: "sem_capuz", Label: "Sem Capuz"},
							{ID: 27, Value: "ziper", Label: "Com Zíper"},
						},
					},
				},
			},
		},
		Partners: []domain.Option{
			{ID: 1, Value: "1", Label: "Parceiro A"},
			{ID: 2, Value: "2", Label: "Parceiro B"},
			{ID: 3, Value: "3", Label: "Parceiro C"},
			{ID: 4, Value: "4", Label: "Parceiro D"},
		},
		Printers: []domain.Option{
			{ID: 1, Value: "1", Label: "Impressora 3D A"},
			{ID: 2, Value: "2", Label: "Impressora 3D B"},
			{ID: 3, Value: "3", Label: "Impressora 3D C"},
		},
		MeasureUnits: []domain.Option{
			{Value: "g", Label: "Gramas (g)"},
			{Value: "kg", Label: "Quilogramas (kg)"},
			{Value: "un", Label: "Unidades (un)"},
			{Value: "par", Label: "Pares"},
		},
		Statuses: []domain.Option{
			{Value: string(domain.StatusPending), Label: "Pendente"},
			{Value: string(domain.StatusReleased), Label: "Liberado"},
			{Value: string(domain.StatusInactive), Label: "Inativo"},
		},
	}
}

// Package catalog holds the static list of product search terms queried
// upstream for every market.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, lower-cases and collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Terms returns the normalized, de-duplicated search terms in catalog order.
func Terms() []string {
	return Prepare(rawTerms)
}

// Prepare normalizes terms, dropping blanks and duplicates.
func Prepare(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

var rawTerms = []string{
	// mercearia
	"arroz", "arroz tipo 1", "arroz tipo 2", "arroz integral", "arroz parboilizado",
	"arroz agulhinha", "arroz branco", "feijao", "feijao carioca", "feijao preto", "feijao branco",
	"feijao fradinho", "feijao verde", "acucar", "acucar cristal", "acucar refinado",
	"acucar mascavo", "acucar demerara", "adocante", "adocante em po", "adocante liquido", "sal",
	"sal refinado", "sal grosso", "sal light", "oleo", "oleo de soja", "oleo de girassol",
	"oleo de milho", "oleo de canola", "azeite", "azeite de oliva", "azeite extra virgem",
	"vinagre", "vinagre de alcool", "vinagre de maca", "cafe", "cafe em po", "cafe torrado",
	"cafe moido", "cafe soluvel", "cafe descafeinado", "filtro de cafe", "farinha de trigo",
	"farinha de mandioca", "farinha de rosca", "farinha de milho", "fubá", "amido de milho",
	"moreira", "macarrao", "macarrao espaguete", "macarrao parafuso", "macarrao pena",
	"macarrao ninho", "massa para lasanha", "massa para pastel", "massa para pizza",
	"molho de tomate", "extrato de tomate", "polpa de tomate", "milho", "milho verde", "ervilha",
	"seleta de legumes", "palmito", "azeitona", "conserva", "atum", "sardinha", "sardinha em lata",
	"maionese", "ketchup", "mostarda", "catchup", "caldo de carne", "caldo de galinha",
	"caldo de legumes", "tempero", "tempero completo", "alho e sal", "cebola e sal", "pimenta",
	"pimenta do reino", "cominho", "acafrao", "paprica", "orégano", "manjericao", "salsa",
	"cebolinha", "azeite de dende", "leite de coco", "fermento", "fermento em po",
	"fermento biologico", "gelatina", "gelatina em po", "massa para bolo", "massa pronta",
	"farinha lactea", "nisso", "maizena", "creme de arroz", "flocao", "canjica", "rapadura",
	"melado", "mel", "geleia", "geleia de mocoto", "mocoto", "paçoca", "pacoquinha", "amendoim",
	"castanha", "castanha de caju", "castanha do para", "amendoa", "nozes", "passas", "damasco",
	"ameixa", "figo", "tamara", "bala", "bombom", "chocolate", "chocolate em po", "achocolatado",
	"nescau", "toddy", "ovomaltine",

	// hortifruti
	"alho", "cebola", "cebola roxa", "cebola branca", "batata", "batata inglesa", "batata doce",
	"batata baroa", "batata salsa", "mandioca", "aipim", "macaxeira", "cará", "inhame", "tomate",
	"tomate italiano", "tomate cereja", "tomate caqui", "cenoura", "beterraba", "chuchu", "pepino",
	"pimentao", "pimentao verde", "pimentao amarelo", "pimentao vermelho", "abobora", "abobrinha",
	"abobrinha italiana", "berinjela", "jilo", "maxixe", "quiabo", "vagem", "ervilha torta",
	"brocolis", "couve flor", "repolho", "repolho roxo", "couve", "couve manteiga", "alface",
	"alface crespa", "alface americana", "alface roxa", "rucula", "agriao", "espinafre", "acelga",
	"salsa", "cebolinha", "coentro", "manjericao", "hortela", "alecrim", "tomilho", "louro",
	"gengibre", "cebolinha verde", "salsinha", "banana", "banana prata", "banana nanica",
	"banana da terra", "banana ouro", "banana maçã", "maca", "maca argentina", "maca fuji",
	"maca gala", "pera", "pera williams", "pera portuguesa", "uva", "uva italiana", "uva rubi",
	"uva thompson", "uva branca", "uva preta", "mamao", "mamao formosa", "mamao papaia", "melancia",
	"melao", "melao amarelo", "melao pele de sapo", "melao cantaloupe", "melao galia", "abacaxi",
	"abacaxi perola", "abacaxi havaí", "manga", "manga tommy", "manga palmer", "manga espada",
	"manga rosa", "limao", "limao taiti", "limao cravo", "limao siciliano", "laranja",
	"laranja pera", "laranja bahia", "laranja lima", "laranja da terra", "tangerina",
	"tangerina ponkan", "tangerina murcott", "bergamota", "mexerica", "caju", "goiaba",
	"goiaba branca", "goiaba vermelha", "maracuja", "maracuja doce", "maracuja azedo", "caqui",
	"caqui fuyu", "caqui rama forte", "kiwi", "kiwi verde", "kiwi gold", "ameixa",
	"ameixa vermelha", "ameixa preta", "ameixa seca", "figo", "figo fresco", "figo seco",
	"carambola", "jabuticaba", "pitanga", "seriguela", "coco", "coco verde", "coco seco",
	"agua de coco", "ovos", "ovo branco", "ovo vermelho", "ovo caipira", "ovo de codorna",

	// açougue
	"carne bovina", "bife", "bife ancho", "bife de chorizo", "contra file", "file mignon",
	"picanha", "alcatra", "coxao mole", "coxao duro", "patinho", "maminha", "cupim", "costela",
	"costela de vaca", "paleta", "acém", "musculo", "carne moída", "carne de sol", "carne seca",
	"jabá", "carna seca", "hamburguer", "hamburguer bovino", "linguica", "linguica toscana",
	"linguica calabresa", "linguica portuguesa", "linguica de frango", "linguica de pernil",
	"salsicha", "salsicha hot dog", "salsicha viena", "salsichao", "paio", "salame", "presunto cru",
	"prosciutto", "carne suina", "bisteca suina", "lombo suino", "pernil", "pernil suino",
	"panceta", "toucinho", "bacon", "carneiro", "cordeiro", "frango", "frango inteiro",
	"frango cortado", "peito de frango", "coxa de frango", "sobrecoxa de frango", "asa de frango",
	"file de frango", "coracao de frango", "figado de frango", "moela de frango", "peru", "chester",
	"faisao", "codorna", "coelho", "carne de avestruz",

	// frios e laticínios
	"presunto", "presunto defumado", "presunto cozido", "presunto parma", "presunto pernil",
	"queijo", "queijo mussarela", "queijo prato", "queijo minas", "queijo minas frescal",
	"queijo minas padrao", "queijo coalho", "queijo provolone", "queijo parmesao",
	"queijo gorgonzola", "queijo brie", "queijo camembert", "queijo cheddar", "queijo cream cheese",
	"queijo cottage", "queijo ricota", "queijo requeijao", "requeijao cremoso",
	"requeijao tradicional", "mortadela", "mortadela comum", "mortadela premium",
	"mortadela com azeitona", "salame", "salame italiano", "salame milano", "salame tipo copa",
	"apresuntado", "peito de peru", "peito de frango defumado", "blanquet de peru", "leite",
	"leite integral", "leite desnatado", "leite semidesnatado", "leite longa vida", "leite em po",
	"leite condensado", "leite fermentado", "creme de leite", "creme de leite fresco",
	"creme de leite uht", "nata", "chantilly", "iogurte", "iogurte natural", "iogurte grego",
	"iogurte com frutas", "iogurte bebivel", "coalhada", "bebida lactea", "achocolatado lacteo",
	"manteiga", "manteiga com sal", "manteiga sem sal", "margarina", "margarina com sal",
	"margarina sem sal", "margarina light", "creme vegetal",

	// padaria e matinais
	"pao", "pao frances", "pao de forma", "pao integral", "pao doce", "pao de queijo",
	"pao de batata", "pao de hot dog", "pao de hamburguer", "pao sirio", "pao italiano",
	"pao australiano", "bisnaguinha", "croissant", "baguete", "focaccia", "ciabatta", "torrada",
	"torrada integral", "torrada doce", "bolo", "bolo de chocolate", "bolo de fuba",
	"bolo de laranja", "bolo de cenoura", "bolo de milho", "bolo formigueiro", "bolo simples",
	"bolo decorado", "bolo de aniversario", "bolo de casamento", "rosquinha", "donuts", "sonho",
	"croissant", "pastel", "pastel de carne", "pastel de queijo", "pastel de frango",
	"pastel de palmito", "pastel de pizza", "empada", "empada de frango", "empada de camarão",
	"empada de palmito", "torta", "torta de frango", "torta de palmito", "torta de camarão",
	"torta doce", "torta de limao", "torta de chocolate", "torta holandesa", "cereal",
	"cereal matinal", "granola", "aveia", "aveia em flocos", "aveia instantanea", "musli",
	"corn flakes", "sucrilhos", "nescau cereal", "achocolatado", "nescau", "toddy", "ovomaltine",
	"biscoito", "bolacha", "biscoito doce", "biscoito salgado", "biscoito cream cracker",
	"biscoito agua e sal", "biscoito maisena", "biscoito recheado", "biscoito wafer",
	"biscoito de polvilho", "biscoito de queijo", "biscoito de goiaba", "biscoito de chocolate",

	// bebidas
	"refrigerante", "coca cola", "guarana", "fanta", "sprite", "pepsi", "soda", "agua tonica",
	"agua com gas", "agua mineral", "agua sem gas", "agua de coco", "suco", "suco de laranja",
	"suco de uva", "suco de maca", "suco de goiaba", "suco de caju", "suco de manga",
	"suco de pessego", "suco de maracuja", "suco de abacaxi", "suco de limao", "suco de acerola",
	"suco integral", "suco concentrado", "suco em po", "suco pronto", "néctar", "bebida isotonica",
	"gatorade", "powerade", "energetico", "red bull", "monster", "burn", "cafe", "cafe soluvel",
	"cafe moido", "cafe em capsula", "cha", "cha verde", "cha preto", "cha de camomila",
	"cha de hortela", "cha de boldo", "cha de erva doce", "cha mate", "erva mate", "chimarrão",
	"terere", "cerveja", "cerveja pilsen", "cerveja lager", "cerveja weiss", "cerveja stout",
	"cerveja artesanal", "vinho", "vinho tinto", "vinho branco", "vinho rose", "vinho seco",
	"vinho suave", "vinho espumante", "champagne", "prosecco", "whisky", "vodka", "rum", "cachaca",
	"gin", "tequila", "conhaque", "licor", "aperitivo", "vermute",

	// higiene pessoal
	"sabonete", "sabonete liquido", "sabonete em barra", "sabonete intimo", "sabonete facial",
	"shampoo", "condicionador", "creme para cabelos", "mascara para cabelos",
	"finalizador para cabelos", "gel para cabelos", "pomada para cabelos", "spray para cabelos",
	"creme dental", "pasta de dente", "escova de dente", "fio dental", "enxaguante bucal",
	"protese dentaria", "aparelho dental", "desodorante", "desodorante roll on",
	"desodorante aerosol", "desodorante cream", "antitranspirante", "perfume", "colonia",
	"agua de colonia", "desodorante corporal", "creme para o corpo", "loção hidratante",
	"oleo corporal", "protetor solar", "bronzeador", "pos sol", "creme para as maos",
	"creme para os pes", "sabao para rosto", "demaquilante", "tonico facial", "creme facial",
	"serum facial", "maquiagem", "base", "po", "blush", "batom", "lapis para olhos", "rimel",
	"delineador", "sombra", "corretivo", "iluminador", "pincel de maquiagem",
	"esponja de maquiagem", "algodao", "cotonete", "lenco umedecido", "lenco demaquilante",
	"papel higienico", "papel higienico dupla face", "papel higienico neutro",
	"papel higienico perfumado", "toalha de papel", "guardanapo", "fralda", "fralda descartavel",
	"fralda p", "fralda m", "fralda g", "fralda xg", "fralda xxg", "fralda geriatrica",
	"pomada para assaduras", "absorvente", "absorvente interno", "absorvente externo",
	"protetor diario", "coletor menstrual", "calcinha absorvente",

	// limpeza
	"sabao em po", "sabao liquido", "sabao em barra", "sabao para roupa", "amaciante",
	"amaciante concentrado", "alvejante", "agua sanitária", "agua oxigenada", "alcool",
	"alcool em gel", "alcool liquido", "detergente", "detergente liquido", "detergente em po",
	"sabao para louça", "limpa vidros", "multiuso", "desinfetante", "desinfetante em po",
	"desinfetante liquido", "lustra moveis", "cera para moveis", "polidor", "limpa carpetes",
	"shampoo para tapetes", "tira manchas", "limpa forno", "limpa piso", "limpa banheiro",
	"limpa vaso sanitario", "saca po", "desentupidor", "inseticida", "repelente", "aromatizador",
	"desodorizador", "spray aromatico", "difusor de ambiente", "vela aromatica", "incenso", "sache",
	"esponja", "esponja de aço", "esponja multiuso", "palha de aço", "bucha vegetal",
	"bucha sintetica", "luvas de borracha", "saco de lixo", "saco para lixo", "saco plastico",
	"saco biodegradavel", "papel toalha", "papel toalha interfolhado", "papel toalha simples",
	"rodo", "vassoura", "pá", "balde", "esfregão", "pano de chão", "pano de prato", "pano multiuso",
	"flanela", "microfibra",

	// pet shop
	"racao para caes", "racao para gatos", "racao seca", "racao umida", "racao premium",
	"racao super premium", "racao veterinary", "racao filhote", "racao adulto", "racao idoso",
	"racao para porte pequeno", "racao para porte grande", "racao light", "racao hipoalergenica",
	"petisco", "biscoito para caes", "biscoito para gatos", "ossinho", "palito dental", "brinquedo",
	"brinquedo interativo", "bola", "pelucia", "arranhador", "arranhador para gatos",
	"caixa de transporte", "guia", "coleira", "peitoral", "cama", "caminha", "casinha",
	"tapete higienico", "fralda para caes", "areia para gatos", "areia sanitária",
	"areia aglomerante", "areia silica", "pá para areia", "caixa de areia", "shampoo para pets",
	"condicionador para pets", "perfume para pets", "antipulgas", "carrapaticida", "vermifugo",
	"vitamina", "suplemento", "medicamento veterinary", "seringa", "curativo", "algodao veterinary",
	"tapete higienico", "fralda geriatrica",

	// outros
	"pilha", "pilha alcalina", "pilha recarregavel", "carregador", "carregador de pilha", "lampada",
	"lampada led", "lampada fluorescente", "lampada incandescente", "vela", "isqueiro", "fosforo",
	"fita adesiva", "fita crepe", "fita dupla face", "cola", "cola branca", "cola quente",
	"super bonder", "adesivo", "envelope", "papel carta", "caderno", "agenda", "caneta", "lapis",
	"borracha", "apontador", "tesoura", "estilete", "furador", "grampeador", "clips", "elastico",
	"pasta", "arquivo", "organizador", "caixa organizadora", "saco plastico", "filme pvc",
	"papel aluminio", "forma de alumínio", "forma descartavel", "pote plastico", "tampa", "vasilha",
	"tupperware", "garrafa termica", "isopor", "prato descartavel", "copo descartavel",
	"talher descartavel", "guardanapo descartavel", "toalha de mesa", "rolo de plastico", "sacola",
	"sacola plastica", "sacola biodegradavel", "sacola retornavel",
}

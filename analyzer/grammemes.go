package analyzer

// Grammeme - граммема или грамматическая категория из таблицы OpenCorpora.
// Значения нумеруются при компиляции, поэтому множество граммем тега
// хранится битовой маской фиксированного размера.
type Grammeme uint8

// NoGrammeme - отсутствие граммемы.
const NoGrammeme Grammeme = 0

// Категории и граммемы. Категория (PartOfSpeech, Case, ...) является
// родителем своих граммем; некоторые граммемы (voct, gen2, ...) уточняют
// другие граммемы и наследуют их категорию.
const (
	PartOfSpeech Grammeme = iota + 1
	NOUN
	ADJF
	ADJS
	COMP
	VERB
	INFN
	PRTF
	PRTS
	GRND
	NUMR
	ADVB
	NPRO
	PRED
	PREP
	CONJ
	PRCL
	INTJ
	NUMB
	ROMN
	LATN
	PNCT
	UNKN
	Animacy
	Anim
	Inan
	Gender
	Masc
	Femn
	Neut
	MsF
	Number
	Sing
	Plur
	Sgtm
	Pltm
	Fixd
	Case
	Nomn
	Gent
	Datv
	Accs
	Ablt
	Loct
	Voct
	Gen1
	Gen2
	Acc2
	Loc1
	Loc2
	Abbr
	Name
	Surn
	Patr
	Geox
	Orgn
	Trad
	Subx
	Supr
	Qual
	Apro
	Anum
	Poss
	VEy
	VOy
	Cmp2
	VEj
	Aspect
	Perf
	Impf
	Transitivity
	Tran
	Intr
	Impe
	Impx
	Mult
	Refl
	Person
	Per1
	Per2
	Per3
	Tense
	Pres
	Past
	Futr
	Mood
	Indc
	Impr
	Involvement
	Incl
	Excl
	Voice
	Actv
	Pssv
	Infr
	Slng
	Arch
	Litr
	Erro
	Dist
	Ques
	Dmns
	Prnt
	VBe
	VEn
	VIe
	VBi
	Fimp
	Prdx
	Coun
	Coll
	VSh
	AfP
	Inmx
	Vpre
	Anph
	Init
	Adjx
	Intg
	Real

	numGrammemes = iota + 1
)

type grammemeInfo struct {
	name   string
	parent Grammeme
	short  string
}

var grammemeTable = [numGrammemes]grammemeInfo{
	PartOfSpeech: {"POST", NoGrammeme, "ЧР"},
	NOUN: {"NOUN", PartOfSpeech, "СУЩ"},
	ADJF: {"ADJF", PartOfSpeech, "ПРИЛ"},
	ADJS: {"ADJS", PartOfSpeech, "КР_ПРИЛ"},
	COMP: {"COMP", PartOfSpeech, "КОМП"},
	VERB: {"VERB", PartOfSpeech, "ГЛ"},
	INFN: {"INFN", PartOfSpeech, "ИНФ"},
	PRTF: {"PRTF", PartOfSpeech, "ПРИЧ"},
	PRTS: {"PRTS", PartOfSpeech, "КР_ПРИЧ"},
	GRND: {"GRND", PartOfSpeech, "ДЕЕПР"},
	NUMR: {"NUMR", PartOfSpeech, "ЧИСЛ"},
	ADVB: {"ADVB", PartOfSpeech, "Н"},
	NPRO: {"NPRO", PartOfSpeech, "МС"},
	PRED: {"PRED", PartOfSpeech, "ПРЕДК"},
	PREP: {"PREP", PartOfSpeech, "ПР"},
	CONJ: {"CONJ", PartOfSpeech, "СОЮЗ"},
	PRCL: {"PRCL", PartOfSpeech, "ЧАСТ"},
	INTJ: {"INTJ", PartOfSpeech, "МЕЖД"},
	NUMB: {"NUMB", PartOfSpeech, "ЧИСЛО"},
	ROMN: {"ROMN", PartOfSpeech, "РИМ"},
	LATN: {"LATN", PartOfSpeech, "ЛАТ"},
	PNCT: {"PNCT", PartOfSpeech, "ЗПР"},
	UNKN: {"UNKN", PartOfSpeech, "НЕИЗВ"},
	Animacy: {"ANim", NoGrammeme, "Од-неод"},
	Anim: {"anim", Animacy, "од"},
	Inan: {"inan", Animacy, "неод"},
	Gender: {"GNdr", NoGrammeme, "хр"},
	Masc: {"masc", Gender, "мр"},
	Femn: {"femn", Gender, "жр"},
	Neut: {"neut", Gender, "ср"},
	MsF: {"Ms-f", NoGrammeme, "ор"},
	Number: {"NMbr", NoGrammeme, "Число"},
	Sing: {"sing", Number, "ед"},
	Plur: {"plur", Number, "мн"},
	Sgtm: {"Sgtm", NoGrammeme, "sg"},
	Pltm: {"Pltm", NoGrammeme, "pl"},
	Fixd: {"Fixd", NoGrammeme, "0"},
	Case: {"CAse", NoGrammeme, "Падеж"},
	Nomn: {"nomn", Case, "им"},
	Gent: {"gent", Case, "рд"},
	Datv: {"datv", Case, "дт"},
	Accs: {"accs", Case, "вн"},
	Ablt: {"ablt", Case, "тв"},
	Loct: {"loct", Case, "пр"},
	Voct: {"voct", Nomn, "зв"},
	Gen1: {"gen1", Gent, "рд1"},
	Gen2: {"gen2", Gent, "рд2"},
	Acc2: {"acc2", Accs, "вн2"},
	Loc1: {"loc1", Loct, "пр1"},
	Loc2: {"loc2", Loct, "пр2"},
	Abbr: {"Abbr", NoGrammeme, "аббр"},
	Name: {"Name", NoGrammeme, "имя"},
	Surn: {"Surn", NoGrammeme, "фам"},
	Patr: {"Patr", NoGrammeme, "отч"},
	Geox: {"Geox", NoGrammeme, "гео"},
	Orgn: {"Orgn", NoGrammeme, "орг"},
	Trad: {"Trad", NoGrammeme, "tm"},
	Subx: {"Subx", NoGrammeme, "субст?"},
	Supr: {"Supr", NoGrammeme, "превосх"},
	Qual: {"Qual", NoGrammeme, "кач"},
	Apro: {"Apro", NoGrammeme, "мест-п"},
	Anum: {"Anum", NoGrammeme, "числ-п"},
	Poss: {"Poss", NoGrammeme, "притяж"},
	VEy: {"V-ey", NoGrammeme, "*ею"},
	VOy: {"V-oy", NoGrammeme, "*ою"},
	Cmp2: {"Cmp2", NoGrammeme, "сравн2"},
	VEj: {"V-ej", NoGrammeme, "*ей"},
	Aspect: {"ASpc", NoGrammeme, "Вид"},
	Perf: {"perf", Aspect, "сов"},
	Impf: {"impf", Aspect, "несов"},
	Transitivity: {"TRns", NoGrammeme, "Перех"},
	Tran: {"tran", Transitivity, "перех"},
	Intr: {"intr", Transitivity, "неперех"},
	Impe: {"Impe", NoGrammeme, "безл"},
	Impx: {"Impx", NoGrammeme, "безл?"},
	Mult: {"Mult", NoGrammeme, "мног"},
	Refl: {"Refl", NoGrammeme, "возвр"},
	Person: {"PErs", NoGrammeme, "Лицо"},
	Per1: {"1per", Person, "1л"},
	Per2: {"2per", Person, "2л"},
	Per3: {"3per", Person, "3л"},
	Tense: {"TEns", NoGrammeme, "Время"},
	Pres: {"pres", Tense, "наст"},
	Past: {"past", Tense, "прош"},
	Futr: {"futr", Tense, "буд"},
	Mood: {"MOod", NoGrammeme, "Накл"},
	Indc: {"indc", Mood, "изъяв"},
	Impr: {"impr", Mood, "повел"},
	Involvement: {"INvl", NoGrammeme, "Совм"},
	Incl: {"incl", Involvement, "вкл"},
	Excl: {"excl", Involvement, "выкл"},
	Voice: {"VOic", NoGrammeme, "Залог"},
	Actv: {"actv", Voice, "действ"},
	Pssv: {"pssv", Voice, "страд"},
	Infr: {"Infr", NoGrammeme, "разг"},
	Slng: {"Slng", NoGrammeme, "жарг"},
	Arch: {"Arch", NoGrammeme, "арх"},
	Litr: {"Litr", NoGrammeme, "лит"},
	Erro: {"Erro", NoGrammeme, "опеч"},
	Dist: {"Dist", NoGrammeme, "искаж"},
	Ques: {"Ques", NoGrammeme, "вопр"},
	Dmns: {"Dmns", NoGrammeme, "указ"},
	Prnt: {"Prnt", NoGrammeme, "вводн"},
	VBe: {"V-be", NoGrammeme, "*ье"},
	VEn: {"V-en", NoGrammeme, "*енен"},
	VIe: {"V-ie", NoGrammeme, "*ие"},
	VBi: {"V-bi", NoGrammeme, "*ьи"},
	Fimp: {"Fimp", NoGrammeme, "*несов"},
	Prdx: {"Prdx", NoGrammeme, "предк?"},
	Coun: {"Coun", NoGrammeme, "счетн"},
	Coll: {"Coll", NoGrammeme, "собир"},
	VSh: {"V-sh", NoGrammeme, "*ши"},
	AfP: {"Af-p", NoGrammeme, "*предл"},
	Inmx: {"Inmx", NoGrammeme, "не/одуш?"},
	Vpre: {"Vpre", NoGrammeme, "в_предл"},
	Anph: {"Anph", NoGrammeme, "Анаф"},
	Init: {"Init", NoGrammeme, "иниц"},
	Adjx: {"Adjx", NoGrammeme, "прил?"},
	Intg: {"intg", NoGrammeme, "цел"},
	Real: {"real", NoGrammeme, "вещ"},
}

// Индексы строятся в инициализаторах переменных, а не в init(): теги
// на уровне пакета (например, теги аббревиатур) создаются раньше init().
var (
	grammemesByName = indexGrammemes()
	// ancestors[g] - цепочка родителей граммемы, от ближайшего к корню.
	ancestors = collectAncestors()
)

func indexGrammemes() map[string]Grammeme {
	byName := make(map[string]Grammeme, 2*numGrammemes)
	for g := Grammeme(1); g < numGrammemes; g++ {
		info := grammemeTable[g]
		byName[info.name] = g
		if info.short != "" {
			if _, ok := byName[info.short]; !ok {
				byName[info.short] = g
			}
		}
	}
	return byName
}

func collectAncestors() (out [numGrammemes][]Grammeme) {
	for g := Grammeme(1); g < numGrammemes; g++ {
		for p := grammemeTable[g].parent; p != NoGrammeme; p = grammemeTable[p].parent {
			out[g] = append(out[g], p)
		}
	}
	return out
}

// ParseGrammeme находит граммему по внутреннему имени (NOUN, nomn)
// или по короткому русскому обозначению (СУЩ, им).
func ParseGrammeme(name string) (Grammeme, bool) {
	g, ok := grammemesByName[name]
	return g, ok
}

// String возвращает внутреннее имя граммемы.
func (g Grammeme) String() string {
	if g == NoGrammeme || g >= numGrammemes {
		return ""
	}
	return grammemeTable[g].name
}

// Short возвращает короткое русское обозначение.
func (g Grammeme) Short() string {
	if g >= numGrammemes {
		return ""
	}
	return grammemeTable[g].short
}

// Parent возвращает родительскую категорию или NoGrammeme.
func (g Grammeme) Parent() Grammeme {
	if g >= numGrammemes {
		return NoGrammeme
	}
	return grammemeTable[g].parent
}

// Ancestors возвращает всех предков граммемы.
func (g Grammeme) Ancestors() []Grammeme {
	if g >= numGrammemes {
		return nil
	}
	return ancestors[g]
}

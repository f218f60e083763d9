package dawg

// commonTypos - соседние клавиши раскладки ЙЦУКЕН (Windows и Apple).
// Замена буквы проверяется только по этой таблице.
var commonTypos = map[rune][]rune{
	'й': []rune("иёцыф"), 'ц': []rune("йфыву"), 'у': []rune("цывак"), 'к': []rune("увапе"),
	'е': []rune("эикапрн"), 'н': []rune("епрог"), 'г': []rune("нролш"), 'ш': []rune("жголдщ"),
	'щ': []rune("шлджз"), 'з': []rune("щджэх-"), 'х': []rune("зжэъ-"), 'ъ': []rune("ьхэ-ё"),
	'ф': []rune("йцычяё"), 'ы': []rune("иойцувсчяф"), 'в': []rune("фцукамсчы"), 'а': []rune("оукепимсв"),
	'п': []rune("кенртима"), 'р': []rune("енгоьтип"), 'о': []rune("ангшлбьтр"), 'л': []rune("гшщдюбьо"),
	'д': []rune("шщзжюбл"), 'ж': []rune("шщзхэюд"), 'э': []rune("езхъжё"),
	'ё': []rune("йфяъэ"), 'я': []rune("еёфыч"), 'ч': []rune("яфывс"), 'с': []rune("зчывам"),
	'м': []rune("свапи"), 'и': []rune("йяемапрт"), 'т': []rune("дипроь"), 'ь': []rune("ътролб"),
	'б': []rune("ьолдю"), 'ю': []rune("блдж"),
	'1': []rune("ёйц"), '2': []rune("йцу"), '3': []rune("цук"), '4': []rune("уке"), '5': []rune("кен"),
	'6': []rune("енг"), '7': []rune("нгш"), '8': []rune("гшщ"), '9': []rune("шщз"), '0': []rune("щзх-"),
	'-': []rune("зхъ"), '=': []rune("-хъ"), '\\': []rune("ъэ"), '.': []rune("южэ"),
}

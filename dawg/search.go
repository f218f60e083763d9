package dawg

// Match - один результат нечеткого поиска.
type Match struct {
	Word     string    // Исправленный ключ, найденный в автомате.
	Payloads []Payload // Значения ключа; для формата int - один кортеж из одного значения.
	Stutter  int       // Сколько «заиканий» было схлопнуто.
	Typos    int       // Сколько опечаток было исправлено.
}

// state - состояние обхода: построенный префикс, сколько символов входа
// поглощено, потраченные бюджеты и текущий узел автомата.
type state struct {
	prefix  string
	pos     int
	typos   int
	stutter int
	index   uint32
}

// Search находит все ключи, совпадающие с key с точностью до
//   - замен из replacements (например е -> ё), которые бюджет не тратят;
//   - «заиканий» (ннет -> нет, д-да -> да), не более maxStutter;
//   - опечаток (лишняя, пропущенная, соседняя по клавиатуре буква,
//     перестановка двух букв), не более maxTypos.
//
// Каждая ветка либо поглощает символ входа, либо увеличивает счетчик опечаток,
// поэтому обход конечен. Один и тот же ключ возвращается один раз, с наименьшим
// числом исправлений.
func (d *DAWG) Search(key string, replacements map[rune]rune, maxStutter, maxTypos int) []Match {
	runes := []rune(key)
	var results []Match
	seen := make(map[string]int)

	stack := []state{{index: Root}}
	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if st.pos == len(runes) {
			if st.typos < maxTypos && st.stutter <= maxStutter {
				// Пропущенные буквы в самом конце слова.
				stack = d.pushMissing(stack, st)
			}
			if m, ok := d.collect(st); ok {
				results = addMatch(results, seen, m)
			}
			continue
		}

		r := runes[st.pos]

		// Путь замены.
		if rep, ok := replacements[r]; ok {
			if c, ok := EncodeRune(rep); ok {
				if next, ok := d.Transition(st.index, c); ok {
					stack = append(stack, state{st.prefix + string(rep), st.pos + 1, st.typos, st.stutter, next})
				}
			}
		}

		// Пути опечаток.
		if st.typos < maxTypos && st.stutter <= maxStutter {
			// Лишняя буква: пропускаем символ входа.
			stack = append(stack, state{st.prefix, st.pos + 1, st.typos + 1, st.stutter, st.index})

			// Пропущенная буква: берем любой переход узла, не двигаясь по входу.
			stack = d.pushMissing(stack, st)

			// Соседняя клавиша.
			for _, alt := range commonTypos[r] {
				c, ok := EncodeRune(alt)
				if !ok {
					continue
				}
				if next, ok := d.Transition(st.index, c); ok {
					stack = append(stack, state{st.prefix + string(alt), st.pos + 1, st.typos + 1, st.stutter, next})
				}
			}

			// Перестановка двух соседних букв.
			if st.pos < len(runes)-1 {
				if next, ok := d.followRunes(st.index, runes[st.pos+1], runes[st.pos]); ok {
					stack = append(stack, state{st.prefix + string(runes[st.pos+1]) + string(r), st.pos + 2, st.typos + 1, st.stutter, next})
				}
			}
		}

		// Основной путь.
		c, ok := EncodeRune(r)
		if !ok {
			continue
		}
		next, ok := d.Transition(st.index, c)
		if !ok {
			continue
		}
		stack = append(stack, state{st.prefix + string(r), st.pos + 1, st.typos, st.stutter, next})

		// Заикания: схлопываем повтор (XX) или повтор через дефис (X-X).
		pos, stutter := st.pos, st.stutter
	collapse:
		for stutter < maxStutter && st.typos <= maxTypos && pos < len(runes)-1 {
			switch {
			case runes[pos] == runes[pos+1]:
				stack = append(stack, state{st.prefix + string(r), pos + 2, st.typos, stutter + 1, next})
				pos++
			case pos < len(runes)-2 && runes[pos+1] == '-' && runes[pos] == runes[pos+2]:
				stack = append(stack, state{st.prefix + string(r), pos + 3, st.typos, stutter + 1, next})
				pos += 2
			default:
				break collapse
			}
			stutter++
		}
	}
	return results
}

// pushMissing добавляет в стек все переходы узла, перечисленные в guide.
func (d *DAWG) pushMissing(stack []state, st state) []state {
	c := d.child(st.index)
	for c != 0 {
		next, ok := d.Transition(st.index, c)
		if !ok {
			break
		}
		if r, ok := DecodeByte(c); ok {
			stack = append(stack, state{st.prefix + string(r), st.pos, st.typos + 1, st.stutter, next})
		}
		c = d.sibling(next)
	}
	return stack
}

func (d *DAWG) followRunes(index uint32, rs ...rune) (uint32, bool) {
	for _, r := range rs {
		c, ok := EncodeRune(r)
		if !ok {
			return 0, false
		}
		if index, ok = d.Transition(index, c); !ok {
			return 0, false
		}
	}
	return index, true
}

// collect превращает конечное состояние в результат в зависимости от формата.
func (d *DAWG) collect(st state) (Match, bool) {
	m := Match{Word: st.prefix, Stutter: st.stutter, Typos: st.typos}
	switch d.format {
	case FormatInt:
		v, ok := d.Value(st.index)
		if !ok {
			return m, false
		}
		m.Payloads = []Payload{{v}}
	case FormatWords, FormatProbs:
		index, ok := d.Transition(st.index, Separator)
		if !ok {
			return m, false
		}
		m.Payloads = d.Enumerate(index)
	default:
		m.Payloads = d.Enumerate(st.index)
	}
	return m, len(m.Payloads) > 0
}

// addMatch оставляет для каждого слова вариант с наименьшим числом исправлений.
func addMatch(results []Match, seen map[string]int, m Match) []Match {
	i, ok := seen[m.Word]
	if !ok {
		seen[m.Word] = len(results)
		return append(results, m)
	}
	prev := results[i]
	if m.Typos < prev.Typos || (m.Typos == prev.Typos && m.Stutter < prev.Stutter) {
		results[i] = m
	}
	return results
}

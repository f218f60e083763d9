// Package dawg содержит компактный автомат (DAWG), упакованный в двойной массив.
// Автомат строится заранее, загружается один раз и после этого только читается,
// поэтому один экземпляр можно безопасно разделять между любым числом горутин.
//
// Массив units хранит по одной 32-битной записи на узел: смещение для
// XOR-адресации дочерних узлов, метку входящего перехода и флаг наличия значения.
// Массив guide хранит пары (метка первого потомка, метка следующего соседа)
// и нужен только для перебора поддеревьев.
package dawg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

// Root - индекс корневого узла.
const Root uint32 = 0

// Separator - байт, отделяющий ключ от закодированной полезной нагрузки
// в форматах words и probs.
const Separator byte = 1

// Биты записи unit.
const (
	hasLeafBit   = 1 << 8
	extensionBit = 1 << 9
	isLeafBit    = 1 << 31
)

// ErrMalformed возвращается, если массивы автомата повреждены или не согласованы.
var ErrMalformed = errors.New("повреждённый автомат")

// Format определяет, как декодируются значения листьев.
type Format uint8

const (
	// FormatInt - одно целое значение в листе.
	FormatInt Format = iota
	// FormatWords - пары (парадигма, форма) после разделителя.
	FormatWords
	// FormatProbs - тройки (частота, парадигма, форма) после разделителя.
	FormatProbs
	// FormatRaw - байты ключа, достигнутые при переборе.
	FormatRaw
)

// ParseFormat разбирает строковое имя формата.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "int":
		return FormatInt, nil
	case "words":
		return FormatWords, nil
	case "probs":
		return FormatProbs, nil
	case "raw":
		return FormatRaw, nil
	}
	return 0, fmt.Errorf("неизвестный формат автомата %q", s)
}

func (f Format) String() string {
	switch f {
	case FormatInt:
		return "int"
	case FormatWords:
		return "words"
	case FormatProbs:
		return "probs"
	case FormatRaw:
		return "raw"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// tupleLen - число компонент в кортеже полезной нагрузки.
func (f Format) tupleLen() int {
	switch f {
	case FormatWords:
		return 2
	case FormatProbs:
		return 3
	}
	return 0
}

// Payload - декодированный кортеж значений листа.
type Payload []int

// DAWG - неизменяемый автомат над байтовыми метками.
type DAWG struct {
	units  []uint32
	guide  []byte
	format Format
}

func offset(u uint32) uint32 {
	return (u >> 10) << ((u & extensionBit) >> 6)
}

// label включает бит листа, поэтому запись-значение никогда не совпадает с байтом.
func label(u uint32) uint32 {
	return u & (isLeafBit | 0xFF)
}

func hasLeaf(u uint32) bool {
	return u&hasLeafBit != 0
}

func valueOf(u uint32) uint32 {
	return u &^ isLeafBit
}

// New создает автомат из готовых массивов и проверяет их согласованность.
// Массивы не копируются и не должны изменяться после вызова.
func New(units []uint32, guide []byte, format Format) (*DAWG, error) {
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: пустой массив units", ErrMalformed)
	}
	if len(guide)%2 != 0 {
		return nil, fmt.Errorf("%w: нечетная длина guide (%d)", ErrMalformed, len(guide))
	}
	if len(guide)/2 > len(units) {
		return nil, fmt.Errorf("%w: guide (%d) длиннее units (%d)", ErrMalformed, len(guide)/2, len(units))
	}
	if format > FormatRaw {
		return nil, fmt.Errorf("%w: формат %d", ErrMalformed, format)
	}

	// Все базы XOR-адресации обязаны лежать внутри массива.
	n := uint32(len(units))
	for i, u := range units {
		if u&isLeafBit != 0 {
			continue
		}
		o := offset(u)
		if o == 0 {
			continue
		}
		if uint32(i)^o >= n {
			return nil, fmt.Errorf("%w: узел %d указывает за пределы массива (смещение %d)", ErrMalformed, i, o)
		}
	}

	return &DAWG{units: units, guide: guide, format: format}, nil
}

// FromBytes разбирает двоичный блоб автомата: unitsLength (u32), units (u32 каждый),
// guideLength (u32), 2*guideLength байт guide. Все числа в little-endian.
// Если данные выровнены, units не копируются, а ссылаются на data.
func FromBytes(data []byte, format Format) (*DAWG, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: блоб слишком мал (%d байт)", ErrMalformed, len(data))
	}
	unitsLen := int(binary.LittleEndian.Uint32(data))
	unitsEnd := 4 + unitsLen*4
	if unitsLen < 0 || unitsEnd+4 > len(data) || unitsEnd < 4 {
		return nil, fmt.Errorf("%w: обрезан массив units (%d записей)", ErrMalformed, unitsLen)
	}
	guideLen := int(binary.LittleEndian.Uint32(data[unitsEnd:]))
	guideStart := unitsEnd + 4
	guideEnd := guideStart + guideLen*2
	if guideEnd != len(data) || guideEnd < guideStart {
		return nil, fmt.Errorf("%w: длина guide %d не совпадает с размером блоба", ErrMalformed, guideLen)
	}

	return New(uint32View(data[4:unitsEnd]), data[guideStart:guideEnd], format)
}

// uint32View возвращает срез uint32 поверх байт без копирования, если это возможно.
func uint32View(b []byte) []uint32 {
	if len(b) == 0 {
		return nil
	}
	if littleEndianHost && uintptr(unsafe.Pointer(&b[0]))%unsafe.Alignof(uint32(0)) == 0 {
		return bytesToSlice[uint32](b)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

var littleEndianHost = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// bytesToSlice создает срез, указывающий на область байт, без копирования самих данных.
func bytesToSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var t T
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/int(unsafe.Sizeof(t)))
}

// Format возвращает формат значений автомата.
func (d *DAWG) Format() Format {
	return d.format
}

// Len возвращает число записей в массиве units.
func (d *DAWG) Len() int {
	return len(d.units)
}

// Transition выполняет переход из узла index по байту c.
// Дочерний адрес вычисляется как index ^ offset ^ c, после чего проверяется метка.
func (d *DAWG) Transition(index uint32, c byte) (uint32, bool) {
	if int(index) >= len(d.units) {
		return 0, false
	}
	next := index ^ offset(d.units[index]) ^ uint32(c)
	if int(next) >= len(d.units) {
		return 0, false
	}
	if label(d.units[next]) != uint32(c) {
		return 0, false
	}
	return next, true
}

// FollowBytes проходит по байтам от корня.
func (d *DAWG) FollowBytes(key []byte) (uint32, bool) {
	index := Root
	for _, c := range key {
		next, ok := d.Transition(index, c)
		if !ok {
			return 0, false
		}
		index = next
	}
	return index, true
}

// FollowKey проходит по строке от корня. Символ вне кодовой страницы
// считается обычным промахом.
func (d *DAWG) FollowKey(key string) (uint32, bool) {
	index := Root
	for _, r := range key {
		c, ok := EncodeRune(r)
		if !ok {
			return 0, false
		}
		next, ok := d.Transition(index, c)
		if !ok {
			return 0, false
		}
		index = next
	}
	return index, true
}

// HasValue сообщает, хранит ли узел значение.
func (d *DAWG) HasValue(index uint32) bool {
	if int(index) >= len(d.units) {
		return false
	}
	return hasLeaf(d.units[index])
}

// Value возвращает значение узла. Само значение лежит в записи index ^ offset.
func (d *DAWG) Value(index uint32) (int, bool) {
	if !d.HasValue(index) {
		return 0, false
	}
	valueIndex := index ^ offset(d.units[index])
	if int(valueIndex) >= len(d.units) {
		return 0, false
	}
	return int(valueOf(d.units[valueIndex])), true
}

// Find возвращает значение, сохраненное для ключа.
func (d *DAWG) Find(key string) (int, bool) {
	index, ok := d.FollowKey(key)
	if !ok {
		return 0, false
	}
	return d.Value(index)
}

func (d *DAWG) child(index uint32) byte {
	i := int(index) << 1
	if i >= len(d.guide) {
		return 0
	}
	return d.guide[i]
}

func (d *DAWG) sibling(index uint32) byte {
	i := int(index)<<1 + 1
	if i >= len(d.guide) {
		return 0
	}
	return d.guide[i]
}

// Enumerate перебирает все значения, достижимые из узла index, и декодирует их
// согласно формату. Обход идет в глубину по guide с явным стеком, без рекурсии.
func (d *DAWG) Enumerate(index uint32) []Payload {
	var results []Payload
	stack := []uint32{index}
	var key []byte
	first := true

	for {
		index = stack[len(stack)-1]

		if !first {
			if c := d.child(index); c != 0 {
				// 1. Спускаемся к первому потомку.
				next, ok := d.Transition(index, c)
				if !ok {
					return results
				}
				key = append(key, c)
				stack = append(stack, next)
				index = next
			} else {
				// 2. Потомков нет: поднимаемся, пока не найдется соседний узел.
				for {
					c := d.sibling(index)
					if len(key) > 0 {
						key = key[:len(key)-1]
					}
					stack = stack[:len(stack)-1]
					if len(stack) == 0 {
						return results
					}
					index = stack[len(stack)-1]
					if c != 0 {
						next, ok := d.Transition(index, c)
						if !ok {
							return results
						}
						key = append(key, c)
						stack = append(stack, next)
						index = next
						break
					}
				}
			}
		}
		first = false

		// 3. Спускаемся по первым потомкам до ближайшего узла со значением.
		for !d.HasValue(index) {
			c := d.child(index)
			if c == 0 {
				return results
			}
			next, ok := d.Transition(index, c)
			if !ok {
				return results
			}
			key = append(key, c)
			stack = append(stack, next)
			index = next
		}

		results = append(results, d.decode(key))
	}
}

// decode превращает байты пути в кортеж. Каждая компонента занимает два байта:
// ((b0 ^ 1) << 6) + (b1 >> 1).
func (d *DAWG) decode(key []byte) Payload {
	n := d.format.tupleLen()
	if n == 0 {
		p := make(Payload, len(key))
		for i, c := range key {
			p[i] = int(c)
		}
		return p
	}
	p := make(Payload, n)
	for i := 0; i < n && 2*i+1 < len(key); i++ {
		p[i] = int(key[2*i]^1)<<6 + int(key[2*i+1]>>1)
	}
	return p
}

package analyzer

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"unsafe"
)

// ErrMalformedParadigms возвращается, если таблица парадигм повреждена
// или ссылается на несуществующие суффиксы, теги и префиксы.
var ErrMalformedParadigms = errors.New("повреждённая таблица парадигм")

// paradigmPrefixes - префиксы форм: прилагательные в превосходной степени
// получают "наи", сравнительная степень на по- - "по".
var paradigmPrefixes = []string{"", "по", "наи"}

// ParseParadigms разбирает блоб paradigms.array: количество парадигм (u16),
// затем для каждой длина (u16) и сами значения (u16). Все числа little-endian.
// Парадигма состоит из трех равных блоков: суффиксы, теги, префиксы форм.
// Если данные выровнены, срезы ссылаются на data без копирования.
func ParseParadigms(data []byte) ([][]uint16, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: блоб слишком мал (%d байт)", ErrMalformedParadigms, len(data))
	}
	count := int(binary.LittleEndian.Uint16(data))
	paradigms := make([][]uint16, count)
	pos := 2
	for i := range paradigms {
		if pos+2 > len(data) {
			return nil, fmt.Errorf("%w: обрезана длина парадигмы %d", ErrMalformedParadigms, i)
		}
		size := int(binary.LittleEndian.Uint16(data[pos:]))
		pos += 2
		end := pos + size*2
		if end > len(data) {
			return nil, fmt.Errorf("%w: обрезана парадигма %d (%d значений)", ErrMalformedParadigms, i, size)
		}
		if size%3 != 0 {
			return nil, fmt.Errorf("%w: длина парадигмы %d (%d) не делится на 3", ErrMalformedParadigms, i, size)
		}
		paradigms[i] = uint16View(data[pos:end])
		pos = end
	}
	if pos != len(data) {
		return nil, fmt.Errorf("%w: %d лишних байт в конце", ErrMalformedParadigms, len(data)-pos)
	}
	return paradigms, nil
}

var littleEndianHost = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

func uint16View(b []byte) []uint16 {
	if len(b) == 0 {
		return nil
	}
	if littleEndianHost && uintptr(unsafe.Pointer(&b[0]))%unsafe.Alignof(uint16(0)) == 0 {
		return unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), len(b)/2)
	}
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return out
}

// ParseSuffixes разбирает suffixes.json - массив строк.
func ParseSuffixes(data []byte) ([]string, error) {
	var suffixes []string
	if err := json.Unmarshal(data, &suffixes); err != nil {
		return nil, fmt.Errorf("ошибка разбора таблицы суффиксов: %w", err)
	}
	return suffixes, nil
}

// ParseTagTable строит таблицу тегов из двух параллельных JSON-массивов:
// внутренней нотации (NOUN,inan ...) и внешней (СУЩ,неод ...).
func ParseTagTable(internal, external []byte) ([]*Tag, error) {
	var intTags, extTags []string
	if err := json.Unmarshal(internal, &intTags); err != nil {
		return nil, fmt.Errorf("ошибка разбора таблицы тегов: %w", err)
	}
	if err := json.Unmarshal(external, &extTags); err != nil {
		return nil, fmt.Errorf("ошибка разбора внешней таблицы тегов: %w", err)
	}
	if len(intTags) != len(extTags) {
		return nil, fmt.Errorf("%w: таблицы тегов разной длины (%d и %d)", ErrMalformedParadigms, len(intTags), len(extTags))
	}
	tags := make([]*Tag, len(intTags))
	for i := range intTags {
		tags[i] = MakeTag(intTags[i], extTags[i])
	}
	return tags, nil
}

// EncodeParadigms - обратная операция к ParseParadigms.
func EncodeParadigms(paradigms [][]uint16) ([]byte, error) {
	if len(paradigms) > 0xFFFF {
		return nil, fmt.Errorf("%w: слишком много парадигм (%d)", ErrMalformedParadigms, len(paradigms))
	}
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(paradigms)))
	for i, p := range paradigms {
		if len(p) > 0xFFFF || len(p)%3 != 0 {
			return nil, fmt.Errorf("%w: недопустимая длина парадигмы %d (%d)", ErrMalformedParadigms, i, len(p))
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(len(p)))
		for _, v := range p {
			out = binary.LittleEndian.AppendUint16(out, v)
		}
	}
	return out, nil
}

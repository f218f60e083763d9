package dawg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrUnencodable возвращается построителем для ключей и значений,
// которые нельзя представить в двоичном формате автомата.
var ErrUnencodable = errors.New("значение невозможно закодировать")

const (
	maxPlainOffset    = 1 << 21
	maxExtendedOffset = 1 << 29
	maxComponent      = 1 << 14
	blockSize         = 256
)

// Builder строит автомат в формате двойного массива из набора ключей.
// Получается префиксное дерево без минимизации: формат чтения от этого не меняется.
type Builder struct {
	format Format
	root   *buildNode
}

type buildNode struct {
	labels   []byte
	children []*buildNode
	terminal bool
	value    uint32
}

// NewBuilder создает построитель для заданного формата.
func NewBuilder(format Format) *Builder {
	return &Builder{format: format, root: &buildNode{}}
}

// Add добавляет ключ со значением (форматы int и raw).
func (b *Builder) Add(key string, value uint32) error {
	encoded, ok := Encode(key)
	if !ok {
		return fmt.Errorf("%w: ключ %q вне кодовой страницы", ErrUnencodable, key)
	}
	return b.AddBytes(encoded, value)
}

// AddBytes добавляет ключ из байт кодовой страницы.
func (b *Builder) AddBytes(key []byte, value uint32) error {
	if value&isLeafBit != 0 {
		return fmt.Errorf("%w: значение %d больше 31 бита", ErrUnencodable, value)
	}
	n := b.root
	for _, c := range key {
		if c == 0 {
			return fmt.Errorf("%w: нулевой байт в ключе", ErrUnencodable)
		}
		n = n.child(c)
	}
	n.terminal = true
	n.value = value
	return nil
}

// AddPayload добавляет ключ с кортежем (форматы words и probs):
// ключ, разделитель и по два байта на компоненту.
func (b *Builder) AddPayload(key string, p Payload) error {
	n := b.format.tupleLen()
	if n == 0 {
		return fmt.Errorf("%w: формат %s не хранит кортежи", ErrUnencodable, b.format)
	}
	if len(p) != n {
		return fmt.Errorf("%w: ожидалось %d компонент, получено %d", ErrUnencodable, n, len(p))
	}
	encoded, ok := Encode(key)
	if !ok {
		return fmt.Errorf("%w: ключ %q вне кодовой страницы", ErrUnencodable, key)
	}
	encoded = append(encoded, Separator)
	for _, v := range p {
		hi, lo, err := encodeComponent(v)
		if err != nil {
			return err
		}
		encoded = append(encoded, hi, lo)
	}
	return b.AddBytes(encoded, 0)
}

// encodeComponent - обратная операция к decode. Старший байт не может быть
// нулем, поэтому значения 64..127 непредставимы.
func encodeComponent(v int) (byte, byte, error) {
	if v < 0 || v >= maxComponent {
		return 0, 0, fmt.Errorf("%w: компонента %d вне диапазона", ErrUnencodable, v)
	}
	hi := byte(v>>6) ^ 1
	if hi == 0 {
		return 0, 0, fmt.Errorf("%w: компонента %d дает нулевую метку", ErrUnencodable, v)
	}
	return hi, byte(v&63)<<1 | 1, nil
}

func (n *buildNode) child(c byte) *buildNode {
	i := sort.Search(len(n.labels), func(i int) bool { return n.labels[i] >= c })
	if i < len(n.labels) && n.labels[i] == c {
		return n.children[i]
	}
	child := &buildNode{}
	n.labels = append(n.labels, 0)
	n.children = append(n.children, nil)
	copy(n.labels[i+1:], n.labels[i:])
	copy(n.children[i+1:], n.children[i:])
	n.labels[i] = c
	n.children[i] = child
	return child
}

// layout раскладывает дерево по двойному массиву.
type layout struct {
	units     []uint32
	guide     []byte
	used      []bool
	usedBases map[uint32]bool
	nextFree  uint32
}

func (l *layout) grow(index uint32) {
	if int(index) < len(l.units) {
		return
	}
	size := (int(index)/blockSize + 1) * blockSize
	l.units = append(l.units, make([]uint32, size-len(l.units))...)
	l.used = append(l.used, make([]bool, size-len(l.used))...)
	l.guide = append(l.guide, make([]byte, 2*size-len(l.guide))...)
}

func (l *layout) free(index uint32) bool {
	return index != Root && (int(index) >= len(l.used) || !l.used[index])
}

func encodeOffset(o uint32) (uint32, bool) {
	switch {
	case o < maxPlainOffset:
		return o << 10, true
	case o&0xFF == 0 && o < maxExtendedOffset:
		return (o>>8)<<10 | extensionBit, true
	}
	return 0, false
}

// findBase ищет свободную базу: все слоты base ^ label должны быть свободны,
// а сама база не должна использоваться другим узлом.
func (l *layout) findBase(index uint32, labels []byte) (uint32, uint32, error) {
	for l.nextFree < uint32(len(l.used)) && l.used[l.nextFree] {
		l.nextFree++
	}
	for base := l.nextFree ^ uint32(labels[0]); ; base++ {
		o := index ^ base
		if o == 0 || l.usedBases[base] {
			continue
		}
		enc, ok := encodeOffset(o)
		if !ok {
			if o >= maxExtendedOffset {
				return 0, 0, fmt.Errorf("%w: автомат слишком велик", ErrUnencodable)
			}
			continue
		}
		fits := true
		for _, c := range labels {
			if !l.free(base ^ uint32(c)) {
				fits = false
				break
			}
		}
		if fits {
			return base, enc, nil
		}
	}
}

// Build раскладывает добавленные ключи в двойной массив.
func (b *Builder) Build() (*DAWG, error) {
	l := &layout{usedBases: make(map[uint32]bool)}
	l.grow(Root)
	l.used[Root] = true

	type item struct {
		node  *buildNode
		index uint32
	}
	queue := []item{{b.root, Root}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		n := it.node

		labels := n.labels
		if n.terminal {
			labels = append([]byte{0}, n.labels...)
		}
		if len(labels) == 0 {
			continue
		}

		base, enc, err := l.findBase(it.index, labels)
		if err != nil {
			return nil, err
		}
		l.grow(base | 0xFF)
		l.usedBases[base] = true
		l.units[it.index] |= enc

		if n.terminal {
			l.units[it.index] |= hasLeafBit
			l.units[base] = n.value | isLeafBit
			l.used[base] = true
		}

		for i, c := range n.labels {
			childIndex := base ^ uint32(c)
			l.units[childIndex] = uint32(c)
			l.used[childIndex] = true
			if i == 0 {
				l.guide[it.index<<1] = c
			}
			if i+1 < len(n.labels) {
				l.guide[childIndex<<1+1] = n.labels[i+1]
			}
			queue = append(queue, item{n.children[i], childIndex})
		}
	}

	return New(l.units, l.guide, b.format)
}

// WriteTo сериализует автомат в двоичный блоб, который читает FromBytes.
func (d *DAWG) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 0, 8+len(d.units)*4+len(d.guide))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(d.units)))
	for _, u := range d.units {
		buf = binary.LittleEndian.AppendUint32(buf, u)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(d.guide)/2))
	buf = append(buf, d.guide...)
	n, err := w.Write(buf)
	return int64(n), err
}

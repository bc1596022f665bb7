// Package keyval 提供保序的 key=value 映射与命令行参数解析。
//
// profile 中的每个分区 (settings、options、conf、env ...) 都是一个 [Map]。
// 写出时按插入顺序输出，保证生成文件的确定性。
package keyval

import (
	"fmt"
	"iter"
	"strings"
)

// Map 保序的字符串映射。
//
// 重复 Set 同一个 key 会覆盖值，但保留首次插入的位置。
// 零值可直接使用。
type Map struct {
	keys   []string
	values map[string]string
}

// New 创建 Map，可选地按 key/value 成对初始化。
//
// 参数个数为奇数时最后一个 key 的值为空字符串。
func New(pairs ...string) *Map {
	m := &Map{}
	for i := 0; i < len(pairs); i += 2 {
		val := ""
		if i+1 < len(pairs) {
			val = pairs[i+1]
		}
		m.Set(pairs[i], val)
	}

	return m
}

// Set 写入 key。
func (m *Map) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get 读取 key，第二个返回值表示是否存在。
func (m *Map) Get(key string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[key]

	return v, ok
}

// Has 判断 key 是否存在。
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete 删除 key，不存在时为空操作。
func (m *Map) Delete(key string) {
	if !m.Has(key) {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)

			break
		}
	}
}

// Len 返回 key 数量。
func (m *Map) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Keys 按插入顺序返回 key 的副本。
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)

	return out
}

// All 按插入顺序遍历。
func (m *Map) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone 返回深拷贝，nil 接收者返回空 Map。
func (m *Map) Clone() *Map {
	out := &Map{}
	for k, v := range m.All() {
		out.Set(k, v)
	}

	return out
}

// Equal 判断两个 Map 的内容与顺序是否一致。
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if other.keys[i] != k || other.values[k] != m.values[k] {
			return false
		}
	}

	return true
}

// String 以 "k=v, k=v" 形式输出，便于日志。
func (m *Map) String() string {
	parts := make([]string, 0, m.Len())
	for k, v := range m.All() {
		parts = append(parts, k+"="+v)
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// ParseError 表示无法解析的 key=value 参数。
type ParseError struct {
	Arg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid argument %q: expected key=value", e.Arg)
}

// Parse 将重复的 key=value 参数解析为 Map。
//
// 以第一个 "=" 分割，因此值中可以包含 "="；key 与值两侧的空白都会被去除。
// 后出现的同名 key 覆盖先前的值。
func Parse(args []string) (*Map, error) {
	m := &Map{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" {
			return nil, &ParseError{Arg: arg}
		}
		m.Set(key, value)
	}

	return m, nil
}
